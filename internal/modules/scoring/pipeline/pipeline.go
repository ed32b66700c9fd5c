package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/gateway"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/signals"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/steps"
	"github.com/yungbote/themescore-backend/internal/observability"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type Deps struct {
	Log        *logger.Logger
	Repos      repos.Set
	Embedder   oracle.Embedder
	Classifier oracle.SentimentClassifier
	Gateway    gateway.Gateway
	Metrics    *observability.Metrics
	// Now overrides the clock for scored_at; nil means time.Now.
	Now func() time.Time
}

type Options struct {
	Weights    signals.Weights
	FetchBatch int
	SubBatch   int
	// Pipelined overlaps scoring of batch n+1 with persisting batch n.
	Pipelined bool
	// Depth bounds how many scored batches may wait for persistence.
	Depth int
	// StartAfter skips every sentence up to and including this key.
	StartAfter types.Cursor
}

type Summary struct {
	RunID      uuid.UUID
	DryRun     bool
	Themes     int
	Batches    int
	Sentences  int
	Rows       int
	NewestDate *time.Time
	// LastCursor is the key of the last committed sentence; pass it as
	// StartAfter to continue after an interruption.
	LastCursor types.Cursor
	Elapsed    time.Duration
}

type scored struct {
	index  int
	rows   []*types.SentenceThemeScore
	n      int
	cursor types.Cursor
	took   time.Duration
}

// Run scores the whole corpus and refreshes the company aggregate once at
// the end. Batches are committed strictly in reader order, so an interrupted
// run leaves a prefix of the corpus scored.
func Run(ctx context.Context, deps Deps, opts Options) (Summary, error) {
	sum := Summary{}
	if deps.Log == nil || deps.Embedder == nil || deps.Classifier == nil || deps.Gateway == nil {
		return sum, fmt.Errorf("pipeline: missing deps")
	}
	if opts.FetchBatch <= 0 || opts.SubBatch <= 0 {
		return sum, apperr.Config("pipeline", fmt.Errorf("batch sizes must be positive: fetch=%d sub=%d", opts.FetchBatch, opts.SubBatch))
	}
	if opts.Depth <= 0 {
		opts.Depth = 1
	}
	sum.DryRun = deps.Gateway.DryRun()
	log := deps.Log.With("component", "ScoringRun", "dry_run", sum.DryRun, "pipelined", opts.Pipelined)

	ctx, span := observability.Tracer().Start(ctx, "scoring.run")
	defer span.End()

	started := time.Now()
	run, err := steps.PrepareRun(ctx, steps.PrepareRunDeps{
		Log:       log,
		Themes:    deps.Repos.Themes,
		Documents: deps.Repos.Documents,
		Embedder:  deps.Embedder,
	}, opts.Weights, opts.SubBatch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prepare failed")
		return sum, err
	}
	sum.Themes = len(run.Themes)
	sum.NewestDate = run.NewestDate
	sum.LastCursor = opts.StartAfter

	var record *types.ScoringRun
	if !sum.DryRun {
		record, err = startRecord(ctx, deps, opts, &run)
		if err != nil {
			return sum, err
		}
		sum.RunID = record.ID
		log = log.With("run_id", record.ID.String())
	}
	span.SetAttributes(attribute.Int("themes", sum.Themes), attribute.Bool("dry_run", sum.DryRun))

	total, err := deps.Repos.Sentences.Count(dbctx.Context{Ctx: ctx})
	if err != nil {
		log.Warn("sentence count unavailable; progress will not show totals", "error", err)
		total = 0
	}
	log.Info("scoring started",
		"themes", sum.Themes,
		"sentences_total", total,
		"fetch_batch", opts.FetchBatch,
		"sub_batch", opts.SubBatch,
	)

	reader, err := repos.NewBatchReader(deps.Repos.Sentences, opts.FetchBatch, opts.StartAfter)
	if err != nil {
		return sum, apperr.Config("pipeline", err)
	}

	commit := func(ctx context.Context, s scored) error {
		t0 := time.Now()
		if err := deps.Gateway.UpsertScores(ctx, s.rows); err != nil {
			deps.Metrics.ObserveBatch("persist", "error", s.n, 0, time.Since(t0))
			return err
		}
		deps.Metrics.ObserveBatch("persist", "ok", s.n, len(s.rows), time.Since(t0))
		sum.Batches++
		sum.Sentences += s.n
		sum.Rows += len(s.rows)
		sum.LastCursor = s.cursor
		log.Info("batch committed",
			"batch", s.index,
			"sentences", s.n,
			"rows", len(s.rows),
			"progress", fmt.Sprintf("%d/%d", sum.Sentences, total),
			"score_elapsed", s.took.String(),
			"persist_elapsed", time.Since(t0).String(),
		)
		return nil
	}

	if opts.Pipelined {
		err = runPipelined(ctx, deps, &run, reader, opts.Depth, commit)
	} else {
		err = runSequential(ctx, deps, &run, reader, commit)
	}
	if err == nil {
		err = deps.Gateway.RefreshAggregates(ctx)
	}
	sum.Elapsed = time.Since(started)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		deps.Metrics.IncRun("failed")
		finishRecord(deps, log, record, sum, err)
		log.Error("scoring failed",
			"error", err,
			"batches_committed", sum.Batches,
			"last_doc_id", sum.LastCursor.DocID,
			"last_sentence_id", sum.LastCursor.SentenceID,
		)
		return sum, err
	}

	deps.Metrics.IncRun("succeeded")
	finishRecord(deps, log, record, sum, nil)
	span.SetAttributes(attribute.Int("batches", sum.Batches), attribute.Int("rows", sum.Rows))
	log.Info("scoring finished",
		"batches", sum.Batches,
		"sentences", sum.Sentences,
		"rows", sum.Rows,
		"elapsed", sum.Elapsed.String(),
	)
	return sum, nil
}

func scoreNext(ctx context.Context, deps Deps, run *steps.RunContext, reader *repos.BatchReader) (scored, bool, error) {
	batch, ok, err := reader.Next(ctx)
	if err != nil {
		return scored{}, false, apperr.Persistence("read sentences", err)
	}
	if !ok {
		return scored{}, false, nil
	}
	t0 := time.Now()
	out, err := steps.ScoreBatch(ctx, steps.ScoreBatchDeps{
		Embedder:   deps.Embedder,
		Classifier: deps.Classifier,
		Metrics:    deps.Metrics,
		Now:        deps.Now,
	}, steps.ScoreBatchInput{Run: run, Batch: batch, Index: reader.Index()})
	took := time.Since(t0)
	if err != nil {
		deps.Metrics.ObserveBatch("score", "error", len(batch), 0, took)
		return scored{}, false, err
	}
	deps.Metrics.ObserveBatch("score", "ok", len(batch), len(out.Rows), took)
	return scored{index: reader.Index(), rows: out.Rows, n: out.Sentences, cursor: reader.Cursor(), took: took}, true, nil
}

func runSequential(ctx context.Context, deps Deps, run *steps.RunContext, reader *repos.BatchReader, commit func(context.Context, scored) error) error {
	for {
		s, ok, err := scoreNext(ctx, deps, run, reader)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := commit(ctx, s); err != nil {
			return err
		}
	}
}

// runPipelined reads and scores in one goroutine and commits in another. The
// channel bounds memory to depth scored batches plus the one being committed;
// commits stay in reader order because there is a single consumer. Batches
// scored before a scoring failure are still committed.
func runPipelined(ctx context.Context, deps Deps, run *steps.RunContext, reader *repos.BatchReader, depth int, commit func(context.Context, scored) error) error {
	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan scored, depth)

	g.Go(func() error {
		defer close(queue)
		for {
			s, ok, err := scoreNext(gctx, deps, run, reader)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			select {
			case queue <- s:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for s := range queue {
			if err := commit(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

func startRecord(ctx context.Context, deps Deps, opts Options, run *steps.RunContext) (*types.ScoringRun, error) {
	params, err := json.Marshal(types.RunParams{
		EmbedModel:     deps.Embedder.Model(),
		SentimentModel: deps.Classifier.Model(),
		Alpha:          opts.Weights.Alpha,
		Beta:           opts.Weights.Beta,
		WRecent:        opts.Weights.WRecent,
		WOld:           opts.Weights.WOld,
		FetchBatch:     opts.FetchBatch,
		PipeBatch:      opts.SubBatch,
		Pipelined:      opts.Pipelined,
	})
	if err != nil {
		return nil, err
	}
	rec := &types.ScoringRun{
		ID:            uuid.New(),
		Status:        types.RunStatusRunning,
		StartedAt:     time.Now().UTC(),
		Themes:        len(run.Themes),
		NewestDocDate: run.NewestDate,
		Params:        datatypes.JSON(params),
	}
	if err := deps.Repos.Runs.Create(dbctx.Context{Ctx: ctx}, rec); err != nil {
		return nil, apperr.Persistence("create scoring run", err)
	}
	return rec, nil
}

// finishRecord is best effort: the run outcome stands even if bookkeeping fails.
func finishRecord(deps Deps, log *logger.Logger, rec *types.ScoringRun, sum Summary, runErr error) {
	if rec == nil {
		return
	}
	status := types.RunStatusSucceeded
	msg := ""
	if runErr != nil {
		status = types.RunStatusFailed
		msg = runErr.Error()
	}
	// The run context may already be canceled; bookkeeping gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := deps.Repos.Runs.UpdateFields(dbctx.Context{Ctx: ctx}, rec.ID, map[string]interface{}{
		"status":       status,
		"finished_at":  time.Now().UTC(),
		"batches":      sum.Batches,
		"sentences":    sum.Sentences,
		"rows_written": sum.Rows,
		"error":        msg,
	})
	if err != nil {
		log.Warn("failed to record run outcome", "error", err, "status", status)
	}
}
