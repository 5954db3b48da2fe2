package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/plenum/internal/core/legislature"
	"github.com/agenthands/plenum/internal/core/model"
	"github.com/agenthands/plenum/internal/core/upsert"
	"github.com/agenthands/plenum/internal/driver"
)

// Stage names that are not entity types.
const (
	StageConstraints = "constraints"
	StageInference   = "legislature_inference"
)

// StageError reports the stage that aborted an import.
type StageError struct {
	Stage    string
	Records  int
	Attempts int
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed (%d records, %d attempt(s)): %v", e.Stage, e.Records, e.Attempts, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Options struct {
	BatchSize            int
	NullPolicy           model.NullPolicy
	SecondaryConstraints bool
	// RetryAttempts is the total number of tries per stage for transient
	// store errors. Values below 1 mean a single try.
	RetryAttempts int
	// RetryBackoff is multiplied by the attempt number between tries.
	RetryBackoff time.Duration
	// Parallel runs stages with no dependency between them concurrently.
	Parallel bool
}

// DefaultOptions retries each stage once and runs stages sequentially.
func DefaultOptions() Options {
	return Options{
		BatchSize:            upsert.DefaultBatchSize,
		SecondaryConstraints: true,
		RetryAttempts:        2,
		RetryBackoff:         time.Second,
	}
}

type StageReport struct {
	Stage    string        `json:"stage"`
	Records  int           `json:"records"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	upsert.Result
}

type Report struct {
	RunID        string        `json:"run_id"`
	Constraints  int           `json:"constraints"`
	Legislatures int           `json:"legislatures"`
	Stages       []StageReport `json:"stages"`
	Duration     time.Duration `json:"duration"`
}

type Importer struct {
	Driver  driver.GraphDriver
	Engine  *upsert.Engine
	Logger  *zap.Logger
	Options Options

	UUIDGenerator func() string
	IsTransient   func(error) bool
}

func NewImporter(d driver.GraphDriver, logger *zap.Logger, opts Options) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := upsert.NewEngine(d, logger)
	engine.BatchSize = opts.BatchSize
	engine.NullPolicy = opts.NullPolicy

	return &Importer{
		Driver:        d,
		Engine:        engine,
		Logger:        logger,
		Options:       opts,
		UUIDGenerator: func() string { return uuid.New().String() },
		IsTransient:   driver.IsTransient,
	}
}

type stage struct {
	entity  model.Entity
	records []model.Record
}

// Run imports ds: constraints first, then one upsert stage per entity type
// in dependency order. The first failing stage aborts the run; stages that
// already completed are not rolled back. The returned report covers the
// completed stages even when an error is returned.
func (imp *Importer) Run(ctx context.Context, ds model.Dataset) (*Report, error) {
	began := time.Now()
	report := &Report{RunID: imp.UUIDGenerator()}
	log := imp.Logger.With(zap.String("run_id", report.RunID))

	log.Info("starting import",
		zap.Int("partidos", len(ds.Parties)),
		zap.Int("deputados", len(ds.Deputies)),
		zap.Int("frentes", len(ds.Caucuses)),
		zap.Int("orgaos", len(ds.Bodies)),
		zap.Int("proposicoes", len(ds.Bills)),
		zap.Int("votacoes", len(ds.Votes)),
	)

	constraints := Constraints(imp.Options.SecondaryConstraints)
	attempts, err := imp.retry(ctx, log, StageConstraints, func() error {
		_, err := RegisterConstraints(ctx, imp.Driver, imp.Options.SecondaryConstraints)
		return err
	})
	if err != nil {
		return report, &StageError{Stage: StageConstraints, Records: len(constraints), Attempts: attempts, Err: err}
	}
	report.Constraints = len(constraints)
	log.Info("constraints registered", zap.Int("count", report.Constraints))

	ids, err := legislature.Infer(ds.Deputies, ds.Caucuses)
	if err != nil {
		return report, &StageError{
			Stage:    StageInference,
			Records:  len(ds.Deputies) + len(ds.Caucuses),
			Attempts: 1,
			Err:      err,
		}
	}
	report.Legislatures = len(ids)
	log.Info("legislatures inferred", zap.Int("count", len(ids)))

	stages := make([]stage, 0, len(model.ImportOrder))
	for _, t := range model.ImportOrder {
		records := ds.Records(t)
		if t == model.Legislature {
			records = legislature.Records(ids)
		}
		stages = append(stages, stage{entity: model.MustLookup(t), records: records})
	}

	if imp.Options.Parallel {
		err = imp.runWaves(ctx, log, stages, report)
	} else {
		err = imp.runSequential(ctx, log, stages, report)
	}
	report.Duration = time.Since(began)
	if err != nil {
		log.Error("import aborted", zap.Error(err), zap.Duration("took", report.Duration))
		return report, err
	}

	log.Info("import finished", zap.Duration("took", report.Duration))
	return report, nil
}

func (imp *Importer) runSequential(ctx context.Context, log *zap.Logger, stages []stage, report *Report) error {
	for _, st := range stages {
		sr, err := imp.runStage(ctx, log, st)
		if err != nil {
			return err
		}
		report.Stages = append(report.Stages, sr)
	}
	return nil
}

// runWaves groups stages by dependency depth and runs each group
// concurrently. A group starts only after the previous one has completed.
func (imp *Importer) runWaves(ctx context.Context, log *zap.Logger, stages []stage, report *Report) error {
	for _, wave := range planWaves(stages) {
		results := make([]*StageReport, len(wave))
		g, gctx := errgroup.WithContext(ctx)
		for i, st := range wave {
			g.Go(func() error {
				sr, err := imp.runStage(gctx, log, st)
				if err != nil {
					return err
				}
				results[i] = &sr
				return nil
			})
		}
		err := g.Wait()
		for _, sr := range results {
			if sr != nil {
				report.Stages = append(report.Stages, *sr)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// planWaves partitions stages so that every stage comes after all stages
// whose nodes it attaches to. Order within a wave follows the input order.
func planWaves(stages []stage) [][]stage {
	depth := make(map[string]int, len(stages))
	var waves [][]stage
	for _, st := range stages {
		d := 0
		for _, a := range st.entity.Attachments {
			if pd, ok := depth[a.Parent]; ok && pd+1 > d {
				d = pd + 1
			}
		}
		depth[st.entity.Label] = d
		for len(waves) <= d {
			waves = append(waves, nil)
		}
		waves[d] = append(waves[d], st)
	}
	return waves
}

func (imp *Importer) runStage(ctx context.Context, log *zap.Logger, st stage) (StageReport, error) {
	name := string(st.entity.Type)
	sr := StageReport{Stage: name, Records: len(st.records)}
	began := time.Now()

	var res upsert.Result
	attempts, err := imp.retry(ctx, log, name, func() error {
		var err error
		res, err = imp.Engine.Upsert(ctx, st.entity, st.records)
		return err
	})
	sr.Attempts = attempts
	sr.Duration = time.Since(began)
	if err != nil {
		return sr, &StageError{Stage: name, Records: len(st.records), Attempts: attempts, Err: err}
	}
	sr.Result = res

	log.Info("stage imported",
		zap.String("stage", name),
		zap.Int("records", sr.Records),
		zap.Int("nodes_created", res.NodesCreated),
		zap.Int("relationships_created", res.RelationshipsCreated),
		zap.Int("properties_set", res.PropertiesSet),
		zap.Int("attempts", attempts),
		zap.Duration("took", sr.Duration),
	)
	return sr, nil
}

// retry calls fn until it succeeds, fails with a non-transient error or the
// attempt budget is spent. It returns the number of attempts made.
func (imp *Importer) retry(ctx context.Context, log *zap.Logger, name string, fn func() error) (int, error) {
	limit := imp.Options.RetryAttempts
	if limit < 1 {
		limit = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return attempt, nil
		}
		if attempt >= limit || errors.Is(err, model.ErrMissingKey) || !imp.transient(err) {
			return attempt, err
		}

		wait := imp.Options.RetryBackoff * time.Duration(attempt)
		log.Warn("transient store error, retrying",
			zap.String("stage", name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (imp *Importer) transient(err error) bool {
	if imp.IsTransient == nil {
		return false
	}
	return imp.IsTransient(err)
}
