package app

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/catalog"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/gateway"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/pipeline"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/signals"
)

const shutdownTimeout = 5 * time.Second

type RunFlags struct {
	DryRun    bool
	Pipelined bool
	// StartAfter resumes after the given sentence key; zero scores everything.
	StartAfter types.Cursor
}

// Score runs the scoring pipeline with the configured oracles.
func (a *App) Score(ctx context.Context, flags RunFlags) (pipeline.Summary, error) {
	embedder, err := oracle.NewEmbedder(a.Cfg, a.Log, a.embedCache(flags.DryRun))
	if err != nil {
		return pipeline.Summary{}, err
	}
	classifier, err := oracle.NewSentimentClassifier(a.Cfg, a.Log)
	if err != nil {
		return pipeline.Summary{}, err
	}

	var gw gateway.Gateway
	if flags.DryRun {
		gw = gateway.NewDryRun(a.Log)
	} else {
		gw = gateway.New(a.DB, a.Log, a.Repos.SentenceScores, a.Repos.CompanyScores, a.Metrics)
	}

	s := a.Cfg.Scoring
	return pipeline.Run(ctx, pipeline.Deps{
		Log:        a.Log,
		Repos:      a.Repos,
		Embedder:   embedder,
		Classifier: classifier,
		Gateway:    gw,
		Metrics:    a.Metrics,
	}, pipeline.Options{
		Weights:    signals.Weights{Alpha: s.Alpha, Beta: s.Beta, WRecent: s.WRecent, WOld: s.WOld},
		FetchBatch: s.FetchBatch,
		SubBatch:   s.PipeBatch,
		Pipelined:  flags.Pipelined,
		Depth:      s.PipelineDepth,
		StartAfter: flags.StartAfter,
	})
}

// SeedThemes upserts the theme catalog from a YAML file.
func (a *App) SeedThemes(ctx context.Context, path string) (int, error) {
	n, err := catalog.SeedFile(ctx, a.Repos.Themes, path)
	if err != nil {
		return 0, err
	}
	a.Log.Info("themes seeded", "path", path, "themes", n)
	return n, nil
}

// embedCache is the embedding cache for a run, or nil. Dry runs never touch
// it since the read-through cache writes on every miss. Returning the
// interface nil avoids handing the factory a typed nil client.
func (a *App) embedCache(dryRun bool) goredis.UniversalClient {
	if dryRun || a.Redis == nil {
		return nil
	}
	return a.Redis
}
