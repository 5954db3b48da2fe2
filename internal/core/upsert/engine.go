// Package upsert writes record batches as nodes matched by natural key and
// attaches them to parent nodes already present in the graph.
package upsert

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/plenum/internal/core/model"
	"github.com/agenthands/plenum/internal/driver"
)

// DefaultBatchSize is the number of rows sent per statement when the engine
// is not configured otherwise.
const DefaultBatchSize = 1000

// Result summarizes one Upsert call.
type Result struct {
	Rows                 int `json:"rows"`
	Batches              int `json:"batches"`
	NodesCreated         int `json:"nodes_created"`
	PropertiesSet        int `json:"properties_set"`
	RelationshipsCreated int `json:"relationships_created"`
}

func (r *Result) add(o Result) {
	r.Rows += o.Rows
	r.Batches += o.Batches
	r.NodesCreated += o.NodesCreated
	r.PropertiesSet += o.PropertiesSet
	r.RelationshipsCreated += o.RelationshipsCreated
}

type Engine struct {
	Driver     driver.GraphDriver
	Logger     *zap.Logger
	BatchSize  int
	NullPolicy model.NullPolicy
}

func NewEngine(d driver.GraphDriver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Driver:    d,
		Logger:    logger,
		BatchSize: DefaultBatchSize,
	}
}

// Upsert writes records as nodes of entity e. Records are validated up front:
// one record without a natural key fails the batch before anything is sent.
//
// Each chunk of BatchSize rows is one statement and therefore one
// transaction. Chunks are applied in order; if a later chunk fails, earlier
// chunks stay applied. Re-running the call converges because every write is
// a MERGE.
func (e *Engine) Upsert(ctx context.Context, ent model.Entity, records []model.Record) (Result, error) {
	var total Result
	if len(records) == 0 {
		return total, nil
	}
	if err := model.Validate(ent, records); err != nil {
		return total, err
	}

	query := BuildQuery(ent)
	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunk := records[start:end]

		began := time.Now()
		res, err := e.Driver.ExecuteQuery(ctx, query, map[string]interface{}{
			"rows": BuildRows(ent, chunk, e.NullPolicy),
		})
		if err != nil {
			return total, fmt.Errorf("failed to upsert %s rows %d-%d: %w", ent.Label, start, end-1, err)
		}

		part := summarize(res)
		part.Rows = len(chunk)
		part.Batches = 1
		total.add(part)

		e.Logger.Debug("upserted batch",
			zap.String("label", ent.Label),
			zap.Int("from", start),
			zap.Int("rows", len(chunk)),
			zap.Int("nodes_created", part.NodesCreated),
			zap.Int("relationships_created", part.RelationshipsCreated),
			zap.Duration("took", time.Since(began)),
		)
	}

	return total, nil
}

func summarize(res neo4j.EagerResult) Result {
	if res.Summary == nil {
		return Result{}
	}
	c := res.Summary.Counters()
	if c == nil {
		return Result{}
	}
	return Result{
		NodesCreated:         c.NodesCreated(),
		PropertiesSet:        c.PropertiesSet(),
		RelationshipsCreated: c.RelationshipsCreated(),
	}
}
