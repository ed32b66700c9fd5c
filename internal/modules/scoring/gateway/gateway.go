package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/observability"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// Gateway is where scored rows go.
type Gateway interface {
	// UpsertScores writes one batch atomically; a failure leaves none of the
	// batch's rows behind.
	UpsertScores(ctx context.Context, rows []*types.SentenceThemeScore) error
	// RefreshAggregates rebuilds the company rollup from all sentence rows.
	RefreshAggregates(ctx context.Context) error
	DryRun() bool
}

type RefreshStats struct {
	Upserted int64
	Pruned   int64
}

type gormGateway struct {
	db      *gorm.DB
	log     *logger.Logger
	scores  repos.SentenceThemeScoreRepo
	agg     repos.CompanyThemeScoreRepo
	metrics *observability.Metrics
}

func New(db *gorm.DB, log *logger.Logger, scores repos.SentenceThemeScoreRepo, agg repos.CompanyThemeScoreRepo, metrics *observability.Metrics) Gateway {
	return &gormGateway{
		db:      db,
		log:     log.With("component", "PersistenceGateway"),
		scores:  scores,
		agg:     agg,
		metrics: metrics,
	}
}

func (g *gormGateway) DryRun() bool { return false }

func (g *gormGateway) UpsertScores(ctx context.Context, rows []*types.SentenceThemeScore) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, span := observability.Tracer().Start(ctx, "scoring.upsert_scores")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(rows)))

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return g.scores.Upsert(dbctx.Context{Ctx: ctx, Tx: tx}, rows)
	})
	if err != nil {
		span.RecordError(err)
		return apperr.Persistence("upsert sentence scores", fmt.Errorf("%d rows: %w", len(rows), err))
	}
	return nil
}

func (g *gormGateway) RefreshAggregates(ctx context.Context) error {
	ctx, span := observability.Tracer().Start(ctx, "scoring.refresh_aggregates")
	defer span.End()

	start := time.Now()
	var stats RefreshStats
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		up, pruned, err := g.agg.Refresh(dbctx.Context{Ctx: ctx, Tx: tx})
		stats = RefreshStats{Upserted: up, Pruned: pruned}
		return err
	})
	g.metrics.ObserveRefresh(time.Since(start))
	if err != nil {
		span.RecordError(err)
		return apperr.Persistence("refresh company aggregates", err)
	}
	span.SetAttributes(attribute.Int64("groups.upserted", stats.Upserted), attribute.Int64("groups.pruned", stats.Pruned))
	g.log.Info("company aggregates refreshed",
		"groups", stats.Upserted,
		"pruned", stats.Pruned,
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// DryRunGateway accepts everything and writes nothing.
type DryRunGateway struct {
	log  *logger.Logger
	rows atomic.Int64
}

func NewDryRun(log *logger.Logger) *DryRunGateway {
	return &DryRunGateway{log: log.With("component", "DryRunGateway")}
}

func (g *DryRunGateway) DryRun() bool { return true }

func (g *DryRunGateway) UpsertScores(ctx context.Context, rows []*types.SentenceThemeScore) error {
	g.rows.Add(int64(len(rows)))
	return nil
}

func (g *DryRunGateway) RefreshAggregates(ctx context.Context) error {
	g.log.Info("dry-run: skipping aggregate refresh", "rows_not_written", g.rows.Load())
	return nil
}

// Rows is the number of rows that would have been written.
func (g *DryRunGateway) Rows() int64 { return g.rows.Load() }
