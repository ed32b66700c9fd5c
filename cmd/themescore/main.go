package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yungbote/themescore-backend/internal/app"
	types "github.com/yungbote/themescore-backend/internal/domain"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/shutdown"
)

func main() {
	var (
		dryRun     bool
		pipelined  bool
		migrate    bool
		noScore    bool
		seedThemes string
		startAfter string
	)
	flag.BoolVar(&dryRun, "dry-run", false, "compute every score but write nothing")
	flag.BoolVar(&pipelined, "pipelined", false, "overlap scoring of the next batch with persisting the current one")
	flag.BoolVar(&migrate, "migrate", true, "create or extend tables before running")
	flag.BoolVar(&noScore, "no-score", false, "stop after migration/seeding")
	flag.StringVar(&seedThemes, "seed-themes", "", "upsert themes from a YAML file before scoring")
	flag.StringVar(&startAfter, "start-after", "", "resume after doc_id:sentence_id")
	flag.Parse()

	_ = godotenv.Load()
	os.Exit(run(dryRun, pipelined, migrate, noScore, seedThemes, startAfter))
}

func run(dryRun, pipelined, migrate, noScore bool, seedThemes, startAfter string) int {
	cursor, err := types.ParseCursor(startAfter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "--start-after: %v\n", err)
		return apperr.ExitCode(apperr.Config("flags", err))
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, app.Options{ServiceName: "themescore", Migrate: migrate && !dryRun})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		return apperr.ExitCode(err)
	}
	defer a.Close()
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)

	if strings.TrimSpace(seedThemes) != "" {
		if dryRun {
			a.Log.Warn("--seed-themes ignored in dry run", "path", seedThemes)
		} else if _, err := a.SeedThemes(ctx, seedThemes); err != nil {
			a.Log.Error("seeding themes failed", "error", err)
			return apperr.ExitCode(err)
		}
	}
	if noScore {
		return 0
	}

	sum, err := a.Score(ctx, app.RunFlags{DryRun: dryRun, Pipelined: pipelined, StartAfter: cursor})
	totals := a.Metrics.Totals()
	if err != nil {
		fields := []interface{}{
			"error", err,
			"batches_committed", sum.Batches,
			"sentences_committed", totals.Sentences,
		}
		if sum.Batches > 0 {
			fields = append(fields, "resume_with", "--start-after="+sum.LastCursor.String())
		}
		if errors.Is(err, context.Canceled) {
			a.Log.Warn("run interrupted", fields...)
			return 130
		}
		if apperr.IsPersistenceFailure(err) && apperr.Retryable(err) {
			fields = append(fields, "hint", "transient store error; rerunning is safe")
		}
		a.Log.Error("run failed", fields...)
		return apperr.ExitCode(err)
	}
	a.Log.Info("run complete",
		"run_id", sum.RunID.String(),
		"dry_run", sum.DryRun,
		"themes", sum.Themes,
		"batches", sum.Batches,
		"sentences", sum.Sentences,
		"rows", sum.Rows,
		"elapsed", sum.Elapsed.String(),
	)
	return 0
}
