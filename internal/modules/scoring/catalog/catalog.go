package catalog

import (
	"context"
	"fmt"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// Load reads every theme, ordered by theme id, and embeds each theme text
// once with the same embedder used for sentences. An empty catalog is a
// configuration error.
func Load(ctx context.Context, themes repos.ThemeRepo, embedder oracle.Embedder, log *logger.Logger) ([]types.ThemeVector, error) {
	rows, err := themes.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, apperr.Persistence("load themes", err)
	}
	if len(rows) == 0 {
		return nil, apperr.Config("load themes", apperr.ErrEmptyCatalog)
	}

	texts := make([]string, len(rows))
	for i, t := range rows {
		texts[i] = t.ThemeText()
	}
	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, apperr.Oracle("embed themes", err)
	}
	if len(vecs) != len(rows) {
		return nil, apperr.Oracle("embed themes", fmt.Errorf("got %d vectors for %d themes", len(vecs), len(rows)))
	}

	out := make([]types.ThemeVector, len(rows))
	for i, t := range rows {
		out[i] = types.ThemeVector{
			ThemeID:   t.ThemeID,
			ThemeText: t.ThemeText(),
			KwText:    t.KwText(),
			Vector:    oracle.Normalize(vecs[i]),
		}
	}
	if log != nil {
		log.Info("theme catalog loaded", "themes", len(out), "embed_model", embedder.Model())
	}
	return out, nil
}
