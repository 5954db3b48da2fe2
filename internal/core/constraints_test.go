package core

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/plenum/internal/driver"
)

func TestConstraintsCoverEveryNaturalKey(t *testing.T) {
	var stmts []string
	for _, c := range Constraints(false) {
		stmts = append(stmts, c.Statement())
	}

	assert.Equal(t, []string{
		"CREATE CONSTRAINT partido_sigla IF NOT EXISTS FOR (n:Partido) REQUIRE n.sigla IS UNIQUE",
		"CREATE CONSTRAINT legislatura_id IF NOT EXISTS FOR (n:Legislatura) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT deputado_id IF NOT EXISTS FOR (n:Deputado) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT frente_id IF NOT EXISTS FOR (n:Frente) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT orgao_sigla IF NOT EXISTS FOR (n:Orgao) REQUIRE n.sigla IS UNIQUE",
		"CREATE CONSTRAINT proposicao_id IF NOT EXISTS FOR (n:Proposicao) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT votacao_id IF NOT EXISTS FOR (n:Votacao) REQUIRE n.id IS UNIQUE",
	}, stmts)
}

func TestConstraintsSecondary(t *testing.T) {
	all := Constraints(true)
	require.Len(t, all, 9)
	assert.Equal(t, "partido_id", all[7].Name())
	assert.Equal(t, "orgao_id", all[8].Name())
}

func TestRegisterConstraints(t *testing.T) {
	mock := &driver.MockDriver{}
	n, err := RegisterConstraints(context.Background(), mock, true)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Len(t, mock.CallsMatching("IF NOT EXISTS"), 9)
}

func TestRegisterConstraintsStopsOnError(t *testing.T) {
	mock := &driver.MockDriver{
		OnQuery: func(q string, _ map[string]interface{}) (neo4j.EagerResult, error) {
			if q == (Constraint{Label: "Frente", Property: "id"}).Statement() {
				return neo4j.EagerResult{}, errors.New("denied")
			}
			return neo4j.EagerResult{}, nil
		},
	}
	_, err := RegisterConstraints(context.Background(), mock, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frente_id")
	assert.Len(t, mock.Calls(), 4)
}
