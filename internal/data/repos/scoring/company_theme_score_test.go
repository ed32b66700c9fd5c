package scoring

import (
	"context"
	"math"
	"testing"

	"github.com/yungbote/themescore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
)

func scoreRow(doc string, sid int, theme, company string, raw, final float64) *types.SentenceThemeScore {
	return &types.SentenceThemeScore{
		DocID:         doc,
		SentenceID:    sid,
		ThemeID:       theme,
		CompanyID:     company,
		Alpha:         0.8,
		Beta:          0.2,
		RawBase:       raw,
		ThemeScore:    raw,
		TimeWeight:    1,
		FinalScore100: final,
	}
}

func TestSentenceThemeScoreUpsertIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewSentenceThemeScoreRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	rows := []*types.SentenceThemeScore{
		scoreRow("D", 1, "T1", "C", 0.5, 50),
		scoreRow("D", 1, "T2", "C", -0.2, -20),
		scoreRow("D", 2, "T1", "C", 0.1, 10),
	}
	for i := 0; i < 2; i++ {
		if err := repo.Upsert(dbc, rows); err != nil {
			t.Fatalf("Upsert #%d: %v", i, err)
		}
	}
	got, err := repo.ListByDoc(dbc, "D", "")
	if err != nil || len(got) != 3 {
		t.Fatalf("ListByDoc: len=%d err=%v", len(got), err)
	}

	updated := scoreRow("D", 1, "T1", "C", 0.9, 90)
	if err := repo.Upsert(dbc, []*types.SentenceThemeScore{updated}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, _ = repo.ListByDoc(dbc, "D", "T1")
	if len(got) != 2 || got[0].FinalScore100 != 90 {
		t.Fatalf("Upsert update: %+v", got)
	}
	if n, err := repo.CountByCompanyTheme(dbc, "C", "T1"); err != nil || n != 2 {
		t.Fatalf("CountByCompanyTheme: n=%d err=%v", n, err)
	}
}

func TestCompanyThemeScoreRefresh(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	set := NewSet(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	rows := []*types.SentenceThemeScore{
		scoreRow("D1", 1, "T1", "C1", 0.4, 40),
		scoreRow("D1", 2, "T1", "C1", 0.2, 20),
		scoreRow("D1", 1, "T2", "C1", -0.6, -60),
		scoreRow("D2", 1, "T1", "C2", 1.0, 100),
	}
	if err := set.SentenceScores.Upsert(dbc, rows); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, _, err := set.CompanyScores.Refresh(dbc); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	agg, err := set.CompanyScores.Get(dbc, "C1", "T1")
	if err != nil || agg == nil {
		t.Fatalf("Get: agg=%v err=%v", agg, err)
	}
	if agg.NSentences != 2 || math.Abs(agg.AvgScore-0.3) > 1e-9 || math.Abs(agg.AvgFinal100-30) > 1e-9 {
		t.Fatalf("C1/T1 aggregate: %+v", agg)
	}

	// A second refresh over unchanged rows produces the same aggregates.
	if _, _, err := set.CompanyScores.Refresh(dbc); err != nil {
		t.Fatalf("Refresh again: %v", err)
	}
	list, err := set.CompanyScores.ListByCompany(dbc, "C1")
	if err != nil || len(list) != 2 || list[0].ThemeID != "T1" || list[1].AvgFinal100 != -60 {
		t.Fatalf("ListByCompany: %+v err=%v", list, err)
	}

	top, err := set.CompanyScores.TopByTheme(dbc, "T1", 1)
	if err != nil || len(top) != 1 || top[0].CompanyID != "C2" {
		t.Fatalf("TopByTheme: %+v err=%v", top, err)
	}

	// Groups whose sentence rows disappear are pruned.
	if err := db.Where("company_id = ?", "C2").Delete(&types.SentenceThemeScore{}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, pruned, err := set.CompanyScores.Refresh(dbc)
	if err != nil || pruned != 1 {
		t.Fatalf("Refresh prune: pruned=%d err=%v", pruned, err)
	}
	if agg, _ := set.CompanyScores.Get(dbc, "C2", "T1"); agg != nil {
		t.Fatalf("expected C2/T1 to be pruned, got %+v", agg)
	}
}
