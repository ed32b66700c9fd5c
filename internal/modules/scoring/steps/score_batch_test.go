package steps

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/signals"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
)

type countingEmbedder struct {
	*oracle.MockEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	return c.MockEmbedder.Embed(ctx, texts)
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testRun(t *testing.T, emb oracle.Embedder) *RunContext {
	t.Helper()
	themeTexts := []string{"supply chain resilience", "artificial intelligence adoption"}
	vecs, err := emb.Embed(context.Background(), themeTexts)
	if err != nil {
		t.Fatalf("embed themes: %v", err)
	}
	return &RunContext{
		Themes: []types.ThemeVector{
			{ThemeID: "SC", ThemeText: themeTexts[0], KwText: "logistics", Vector: vecs[0]},
			{ThemeID: "AI", ThemeText: themeTexts[1], KwText: "", Vector: vecs[1]},
		},
		NewestDate: day(2024, 3, 1),
		Weights:    signals.Weights{Alpha: 0.8, Beta: 0.2, WRecent: 1, WOld: 0.6},
		SubBatch:   2,
	}
}

func testBatch() []types.SentenceRecord {
	return []types.SentenceRecord{
		{DocID: "D1", SentenceID: 1, Text: "Our logistics network faced disruption this quarter.", CompanyID: "ACME", DocDate: day(2024, 3, 1)},
		{DocID: "D1", SentenceID: 2, Text: "Strong growth in supply chain resilience.", CompanyID: "ACME", DocDate: day(2024, 3, 1)},
		{DocID: "D0", SentenceID: 1, Text: "The board met twice.", CompanyID: "ACME", DocDate: day(2023, 3, 1)},
	}
}

func TestScoreBatchRowsAndInvariants(t *testing.T) {
	emb := &countingEmbedder{MockEmbedder: oracle.NewMockEmbedder(64)}
	run := testRun(t, emb)
	emb.calls = 0
	clf := oracle.NewMockClassifier()

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	deps := ScoreBatchDeps{Embedder: emb, Classifier: clf, Now: func() time.Time { return fixed }}
	out, err := ScoreBatch(context.Background(), deps, ScoreBatchInput{Run: run, Batch: testBatch(), Index: 1})
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("sentences must be embedded once per batch, calls=%d", emb.calls)
	}
	if calls := clf.Calls(); len(calls) != 2 {
		t.Fatalf("sentiment sub-batches: %v", calls)
	}
	if len(out.Rows) != 6 || out.Sentences != 3 {
		t.Fatalf("rows=%d sentences=%d", len(out.Rows), out.Sentences)
	}

	for _, r := range out.Rows {
		if r.SemanticSim < 0 || r.SemanticSim > 1 {
			t.Fatalf("semantic out of range: %+v", r)
		}
		if r.FinalScore100 < -100 || r.FinalScore100 > 100 {
			t.Fatalf("final out of range: %+v", r)
		}
		if r.ThemeScore != r.RawBase {
			t.Fatalf("theme_score != raw_base: %+v", r)
		}
		if r.ThemeID == "AI" && r.PhoneticSim != 0 {
			t.Fatalf("empty keywords must give phonetic 0: %+v", r)
		}
		if !r.ScoredAt.Equal(fixed) {
			t.Fatalf("scored_at: %v", r.ScoredAt)
		}
	}

	first := out.Rows[0]
	if first.ThemeID != "SC" || first.DocID != "D1" || first.SentenceID != 1 {
		t.Fatalf("row order: %+v", first)
	}
	if first.Polarity != -1 || first.RawBase >= 0 || first.FinalScore100 >= 0 {
		t.Fatalf("negative sentence should score negative: %+v", first)
	}
	if first.TimeWeight != 1 || out.Rows[2].TimeWeight != 0.6 {
		t.Fatalf("time weights: %v %v", first.TimeWeight, out.Rows[2].TimeWeight)
	}
	if out.Rows[1].Polarity != 1 || out.Rows[2].Polarity != 0 || out.Rows[2].RawBase < 0 {
		t.Fatalf("zero polarity must count as positive: %+v", out.Rows[2])
	}
}

func TestScoreBatchIsDeterministic(t *testing.T) {
	emb := oracle.NewMockEmbedder(64)
	run := testRun(t, emb)
	fixed := time.Unix(0, 0).UTC()
	deps := ScoreBatchDeps{Embedder: emb, Classifier: oracle.NewMockClassifier(), Now: func() time.Time { return fixed }}

	a, err := ScoreBatch(context.Background(), deps, ScoreBatchInput{Run: run, Batch: testBatch()})
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	b, err := ScoreBatch(context.Background(), deps, ScoreBatchInput{Run: run, Batch: testBatch()})
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Fatalf("two scorings of the same batch differ")
	}
}

func TestScoreBatchNoNewestDateUsesOldWeight(t *testing.T) {
	emb := oracle.NewMockEmbedder(16)
	run := testRun(t, emb)
	run.NewestDate = nil
	out, err := ScoreBatch(context.Background(), ScoreBatchDeps{Embedder: emb, Classifier: oracle.NewMockClassifier()}, ScoreBatchInput{Run: run, Batch: testBatch()})
	if err != nil {
		t.Fatalf("ScoreBatch: %v", err)
	}
	for _, r := range out.Rows {
		if r.TimeWeight != 0.6 {
			t.Fatalf("expected W_OLD everywhere, got %v", r.TimeWeight)
		}
	}
}

func TestScoreBatchOracleFailures(t *testing.T) {
	emb := oracle.NewMockEmbedder(16)
	run := testRun(t, emb)

	badEmb := oracle.NewMockEmbedder(16)
	badEmb.Err = errors.New("embed 500")
	_, err := ScoreBatch(context.Background(), ScoreBatchDeps{Embedder: badEmb, Classifier: oracle.NewMockClassifier()}, ScoreBatchInput{Run: run, Batch: testBatch()})
	if !apperr.IsOracleFailure(err) {
		t.Fatalf("embed failure: got %v", err)
	}

	badClf := oracle.NewMockClassifier()
	badClf.Err = errors.New("sentiment 503")
	_, err = ScoreBatch(context.Background(), ScoreBatchDeps{Embedder: emb, Classifier: badClf}, ScoreBatchInput{Run: run, Batch: testBatch()})
	if !apperr.IsOracleFailure(err) {
		t.Fatalf("sentiment failure: got %v", err)
	}
}

func TestScoreBatchEmpty(t *testing.T) {
	emb := oracle.NewMockEmbedder(16)
	out, err := ScoreBatch(context.Background(), ScoreBatchDeps{Embedder: emb, Classifier: oracle.NewMockClassifier()}, ScoreBatchInput{Run: testRun(t, emb)})
	if err != nil || len(out.Rows) != 0 {
		t.Fatalf("empty batch: rows=%d err=%v", len(out.Rows), err)
	}
}
