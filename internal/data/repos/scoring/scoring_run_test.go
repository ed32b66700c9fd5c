package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/themescore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
)

func TestScoringRunRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewScoringRunRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	if got, err := repo.Latest(dbc); err != nil || got != nil {
		t.Fatalf("Latest empty: got=%v err=%v", got, err)
	}

	older := &types.ScoringRun{Status: types.RunStatusSucceeded, StartedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &types.ScoringRun{Status: types.RunStatusRunning, StartedAt: time.Now().UTC()}
	for _, r := range []*types.ScoringRun{older, newer} {
		if err := repo.Create(dbc, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.UpdateFields(dbc, newer.ID, map[string]interface{}{
		"status":       types.RunStatusSucceeded,
		"rows_written": 42,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.Latest(dbc)
	if err != nil || got == nil || got.ID != newer.ID {
		t.Fatalf("Latest: got=%v err=%v", got, err)
	}
	if got.Status != types.RunStatusSucceeded || got.Rows != 42 {
		t.Fatalf("Latest fields: %+v", got)
	}
}
