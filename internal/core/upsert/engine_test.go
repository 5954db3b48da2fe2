package upsert

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/plenum/internal/core/model"
	"github.com/agenthands/plenum/internal/driver"
)

func TestUpsertSendsOneStatementPerBatch(t *testing.T) {
	mock := &driver.MockDriver{}
	e := NewEngine(mock, nil)
	e.BatchSize = 2

	records := []model.Record{
		{"sigla": "A"}, {"sigla": "B"}, {"sigla": "C"}, {"sigla": "D"}, {"sigla": "E"},
	}
	res, err := e.Upsert(context.Background(), model.MustLookup(model.Party), records)
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Params["rows"], 2)
	assert.Len(t, calls[1].Params["rows"], 2)
	assert.Len(t, calls[2].Params["rows"], 1)
	assert.Equal(t, 5, res.Rows)
	assert.Equal(t, 3, res.Batches)
}

func TestUpsertEmptyBatchIsNoop(t *testing.T) {
	mock := &driver.MockDriver{}
	res, err := NewEngine(mock, nil).Upsert(context.Background(), model.MustLookup(model.Bill), nil)
	require.NoError(t, err)
	assert.Empty(t, mock.Calls())
	assert.Zero(t, res.Rows)
}

func TestUpsertMissingKeyFailsWholeBatch(t *testing.T) {
	mock := &driver.MockDriver{}
	records := []model.Record{{"id": int64(1)}, {"nome": "no id"}}

	_, err := NewEngine(mock, nil).Upsert(context.Background(), model.MustLookup(model.Deputy), records)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingKey)
	assert.Empty(t, mock.Calls(), "nothing may be written when a record is malformed")
}

func TestUpsertStopsAtFailingBatch(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	mock := &driver.MockDriver{
		OnQuery: func(string, map[string]interface{}) (neo4j.EagerResult, error) {
			n++
			if n == 2 {
				return neo4j.EagerResult{}, boom
			}
			return neo4j.EagerResult{}, nil
		},
	}
	e := NewEngine(mock, nil)
	e.BatchSize = 1

	res, err := e.Upsert(context.Background(), model.MustLookup(model.Body),
		[]model.Record{{"sigla": "A"}, {"sigla": "B"}, {"sigla": "C"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Orgao rows 1-1")
	assert.Len(t, mock.Calls(), 2)
	assert.Equal(t, 1, res.Rows)
}

func TestUpsertAppliesNullPolicy(t *testing.T) {
	mock := &driver.MockDriver{}
	e := NewEngine(mock, nil)
	e.NullPolicy = model.NullPolicySkip

	_, err := e.Upsert(context.Background(), model.MustLookup(model.Party),
		[]model.Record{{"sigla": "AAA", "nome": nil, "id": int64(1)}})
	require.NoError(t, err)

	row := mock.Calls()[0].Params["rows"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, map[string]any{"id": int64(1)}, row["props"])
}
