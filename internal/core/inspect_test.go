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

func TestDump(t *testing.T) {
	party := neo4j.Node{ElementId: "4:p", Labels: []string{"Partido"}, Props: map[string]any{"sigla": "AAA"}}
	deputy := neo4j.Node{ElementId: "4:d", Labels: []string{"Deputado"}, Props: map[string]any{"id": int64(10)}}
	rel := neo4j.Relationship{ElementId: "5:r", Type: "PERTENCE_A", StartElementId: "4:d", EndElementId: "4:p"}

	mock := &driver.MockDriver{
		OnQuery: func(q string, _ map[string]interface{}) (neo4j.EagerResult, error) {
			return neo4j.EagerResult{
				Keys: []string{"n", "r", "m"},
				Records: []*neo4j.Record{
					{Keys: []string{"n", "r", "m"}, Values: []any{deputy, rel, party}},
					{Keys: []string{"n", "r", "m"}, Values: []any{nil, nil, nil}},
				},
			}, nil
		},
	}

	triples, err := NewInspector(mock).Dump(context.Background())
	require.NoError(t, err)
	require.Len(t, triples, 1)

	assert.Equal(t, []string{"Deputado"}, triples[0].Source.Labels)
	assert.Equal(t, "PERTENCE_A", triples[0].Relation.Type)
	assert.Equal(t, "AAA", triples[0].Target.Props["sigla"])

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Read)
	assert.Equal(t, driver.DumpGraphQuery, calls[0].Query)
}

func TestCounts(t *testing.T) {
	mock := &driver.MockDriver{
		OnQuery: func(q string, _ map[string]interface{}) (neo4j.EagerResult, error) {
			switch q {
			case driver.CountNodesQuery:
				return neo4j.EagerResult{Records: []*neo4j.Record{
					{Keys: []string{"label", "count"}, Values: []any{"Partido", int64(2)}},
					{Keys: []string{"label", "count"}, Values: []any{"Deputado", int64(3)}},
				}}, nil
			case driver.CountRelationshipsQuery:
				return neo4j.EagerResult{Records: []*neo4j.Record{
					{Keys: []string{"type", "count"}, Values: []any{"PERTENCE_A", int64(3)}},
				}}, nil
			}
			return neo4j.EagerResult{}, nil
		},
	}

	stats, err := NewInspector(mock).Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Partido": 2, "Deputado": 3}, stats.Nodes)
	assert.Equal(t, map[string]int64{"PERTENCE_A": 3}, stats.Relationships)
	assert.Equal(t, int64(5), stats.TotalNodes())
	assert.Equal(t, int64(3), stats.TotalRelationships())
}

func TestCountsError(t *testing.T) {
	mock := &driver.MockDriver{
		OnQuery: func(string, map[string]interface{}) (neo4j.EagerResult, error) {
			return neo4j.EagerResult{}, errors.New("offline")
		},
	}
	_, err := NewInspector(mock).Counts(context.Background())
	assert.ErrorContains(t, err, "failed to count nodes")
}
