package steps

import (
	"context"
	"time"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/catalog"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/signals"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// RunContext is the state computed once per run and threaded through every
// batch. It is read-only after construction.
type RunContext struct {
	Themes []types.ThemeVector
	// NewestDate is nil when no document carries a date; every sentence then
	// gets the WOld weight.
	NewestDate *time.Time
	Weights    signals.Weights
	// SubBatch is the sentiment classifier call size.
	SubBatch int
}

type PrepareRunDeps struct {
	Log       *logger.Logger
	Themes    repos.ThemeRepo
	Documents repos.DocumentRepo
	Embedder  oracle.Embedder
}

// PrepareRun loads the theme catalog and the newest document date.
func PrepareRun(ctx context.Context, deps PrepareRunDeps, weights signals.Weights, subBatch int) (RunContext, error) {
	themes, err := catalog.Load(ctx, deps.Themes, deps.Embedder, deps.Log)
	if err != nil {
		return RunContext{}, err
	}
	newest, err := deps.Documents.NewestDate(dbctx.Context{Ctx: ctx})
	if err != nil {
		return RunContext{}, apperr.Persistence("newest document date", err)
	}
	if deps.Log != nil {
		if newest == nil {
			deps.Log.Warn("no dated documents; every sentence gets the old-document weight", "w_old", weights.WOld)
		} else {
			deps.Log.Info("newest document date", "date", newest.Format(time.DateOnly))
		}
	}
	return RunContext{Themes: themes, NewestDate: newest, Weights: weights, SubBatch: subBatch}, nil
}
