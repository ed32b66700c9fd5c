package gateway

import (
	"context"
	"testing"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	"github.com/yungbote/themescore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/themescore-backend/internal/domain"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
)

func row(doc string, sid int, theme, company string, final float64) *types.SentenceThemeScore {
	return &types.SentenceThemeScore{
		DocID: doc, SentenceID: sid, ThemeID: theme, CompanyID: company,
		Alpha: 0.8, Beta: 0.2, RawBase: final / 100, ThemeScore: final / 100,
		TimeWeight: 1, FinalScore100: final,
	}
}

func TestGatewayUpsertAndRefresh(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	g := New(db, log, set.SentenceScores, set.CompanyScores, nil)

	batch1 := []*types.SentenceThemeScore{row("D", 1, "T", "C", 10), row("D", 2, "T", "C", 30)}
	batch2 := []*types.SentenceThemeScore{row("E", 1, "T", "C", 50)}
	for _, b := range [][]*types.SentenceThemeScore{batch1, batch2, batch1} {
		if err := g.UpsertScores(ctx, b); err != nil {
			t.Fatalf("UpsertScores: %v", err)
		}
	}
	if err := g.RefreshAggregates(ctx); err != nil {
		t.Fatalf("RefreshAggregates: %v", err)
	}
	agg, err := set.CompanyScores.Get(dbctx.Context{Ctx: ctx}, "C", "T")
	if err != nil || agg == nil {
		t.Fatalf("Get: %v %v", agg, err)
	}
	n, _ := set.SentenceScores.CountByCompanyTheme(dbctx.Context{Ctx: ctx}, "C", "T")
	if int64(agg.NSentences) != n || n != 3 || agg.AvgFinal100 != 30 {
		t.Fatalf("aggregate: %+v count=%d", agg, n)
	}
}

func TestGatewayFailureIsPersistenceError(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	g := New(db, log, set.SentenceScores, set.CompanyScores, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.UpsertScores(ctx, []*types.SentenceThemeScore{row("D", 1, "T", "C", 1)})
	if !apperr.IsPersistenceFailure(err) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	g := NewDryRun(testutil.Logger(t))
	if !g.DryRun() {
		t.Fatalf("DryRun() should be true")
	}
	if err := g.UpsertScores(ctx, []*types.SentenceThemeScore{row("D", 1, "T", "C", 1)}); err != nil {
		t.Fatalf("UpsertScores: %v", err)
	}
	if err := g.RefreshAggregates(ctx); err != nil {
		t.Fatalf("RefreshAggregates: %v", err)
	}
	var n int64
	db.Model(&types.SentenceThemeScore{}).Count(&n)
	if n != 0 || g.Rows() != 1 {
		t.Fatalf("dry run wrote rows: n=%d counted=%d", n, g.Rows())
	}
}
