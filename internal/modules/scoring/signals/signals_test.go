package signals

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
)

func TestSemanticSimilarityFloorsNegatives(t *testing.T) {
	theme := []float32{1, 0}
	sents := [][]float32{
		{1, 0},
		{-1, 0},
		{float32(math.Sqrt2 / 2), float32(math.Sqrt2 / 2)},
		{0, 1},
		{1, 0, 0},
	}
	got := SemanticSimilarity(sents, theme)
	if len(got) != len(sents) {
		t.Fatalf("len: got=%d want=%d", len(got), len(sents))
	}
	want := []float64{1, 0, math.Sqrt2 / 2, 0, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("sim[%d]: got=%v want=%v", i, got[i], want[i])
		}
		if got[i] < 0 || got[i] > 1 {
			t.Fatalf("sim[%d] out of range: %v", i, got[i])
		}
	}
}

func TestMetaphone(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"123":       "",
		"Thomas":    "0MS",
		"knight":    "NT",
		"logistics": "LJSTKS",
		"phone":     "FN",
		"supply":    "SPL",
		"chain":     "XN",
		"quarter.":  "KRTR",
	}
	for in, want := range cases {
		if got := Metaphone(in); got != want {
			t.Fatalf("Metaphone(%q): got=%q want=%q", in, got, want)
		}
	}
	texts := map[string]string{
		"supply  chain":            "SPL XN",
		"2024 logistics":           "LJSTKS",
		"logistics costs 2024":     "LJSTKS KSTS",
		"2023: supply 10% chain !": "SPL  XN",
	}
	for in, want := range texts {
		if got := MetaphoneText(in); got != want {
			t.Fatalf("MetaphoneText(%q): got=%q want=%q", in, got, want)
		}
	}
}

func TestPhoneticSimilarity(t *testing.T) {
	if got := PhoneticSimilarity("anything at all", ""); got != 0 {
		t.Fatalf("empty keywords: %v", got)
	}
	if got := PhoneticSimilarity("123 456", "logistics"); got != 0 {
		t.Fatalf("unencodable sentence: %v", got)
	}
	if got := PhoneticSimilarity("Logistics", "logistics"); got != 1 {
		t.Fatalf("identical: %v", got)
	}
	for _, s := range []string{"2024 logistics", "logistics 2024.", "(2) logistics ..."} {
		if got := PhoneticSimilarity(s, "logistics"); got != 1 {
			t.Fatalf("unencodable edge tokens must not count as edits: %q -> %v", s, got)
		}
	}
	near := PhoneticSimilarity("logistix", "logistics")
	far := PhoneticSimilarity("weather report", "logistics")
	if !(near > far) || near <= 0 || near > 1 || far < 0 {
		t.Fatalf("ordering: near=%v far=%v", near, far)
	}

	all := PhoneticSimilarities([]string{"a b c", "logistics"}, "   ")
	for i, v := range all {
		if v != 0 {
			t.Fatalf("blank keywords [%d]: %v", i, v)
		}
	}
}

func TestLabelPolarity(t *testing.T) {
	cases := []struct {
		label string
		conf  float64
		want  float64
	}{
		{"POSITIVE", 0.9, 0.9},
		{"negative", 0.8, -0.8},
		{"LABEL_NEG", 0.5, -0.5},
		{"neutral", 0.7, 0},
		{"POSITIVE", 1.5, 1},
	}
	for _, tc := range cases {
		got := LabelPolarity(tc.label, tc.conf)
		if got.Value != tc.want {
			t.Fatalf("LabelPolarity(%q,%v): got=%v want=%v", tc.label, tc.conf, got.Value, tc.want)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", got.Confidence)
		}
	}
}

func TestPolarityAndConfidencePreservesOrderAcrossSubBatches(t *testing.T) {
	clf := oracle.NewMockClassifier()
	texts := []string{
		"strong growth",
		"losses",
		"neutral words",
		"record profit",
		"adverse litigation",
	}
	got, err := PolarityAndConfidence(context.Background(), clf, texts, 2)
	if err != nil {
		t.Fatalf("PolarityAndConfidence: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("len: %d", len(got))
	}
	wantSign := []int{1, -1, 0, 1, -1}
	for i, w := range wantSign {
		if Direction(got[i].Value) != w {
			t.Fatalf("polarity[%d]: got=%v want sign %d", i, got[i].Value, w)
		}
	}
	if calls := clf.Calls(); len(calls) != 3 || calls[0] != 2 || calls[2] != 1 {
		t.Fatalf("sub-batches: %v", calls)
	}
}

func TestPolarityAndConfidencePropagatesErrors(t *testing.T) {
	clf := oracle.NewMockClassifier()
	clf.Err = errors.New("503")
	if _, err := PolarityAndConfidence(context.Background(), clf, []string{"x"}, 8); err == nil {
		t.Fatalf("expected classifier error")
	}
}

func TestSign(t *testing.T) {
	if Sign(0) != 1 || Sign(0.3) != 1 || Sign(-0.01) != -1 {
		t.Fatalf("Sign tie-break broken")
	}
}

func TestComposeClampsAndKeepsThemeScore(t *testing.T) {
	w := Weights{Alpha: 50, Beta: 50, WRecent: 3, WOld: 0.6}
	c := Compose(w, 1, 1, 0.5, 3)
	if c.FinalScore100 != 100 {
		t.Fatalf("clamp high: %v", c.FinalScore100)
	}
	c = Compose(w, 1, 1, -0.5, 3)
	if c.FinalScore100 != -100 {
		t.Fatalf("clamp low: %v", c.FinalScore100)
	}
	if c.ThemeScore != c.RawBase {
		t.Fatalf("theme_score must equal raw_base")
	}
}

func TestSupplyChainScenario(t *testing.T) {
	w := Weights{Alpha: 0.8, Beta: 0.2, WRecent: 1, WOld: 0.6}
	sentence := "Our logistics network faced disruption this quarter."
	pho := PhoneticSimilarity(sentence, "logistics")
	if pho <= 0 {
		t.Fatalf("expected some phonetic overlap, got %v", pho)
	}
	c := Compose(w, 0.42, pho, -0.9, 1)
	if c.RawBase >= 0 {
		t.Fatalf("raw_base should be negative: %v", c.RawBase)
	}
	if c.FinalScore100 >= 0 || c.FinalScore100 < -100 {
		t.Fatalf("final out of range: %v", c.FinalScore100)
	}
}

func TestTimeWeight(t *testing.T) {
	w := Weights{WRecent: 1, WOld: 0.6}
	newest := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	same := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	if w.TimeWeight(&same, &newest) != 1 {
		t.Fatalf("newest doc should get W_RECENT")
	}
	if w.TimeWeight(&older, &newest) != 0.6 {
		t.Fatalf("older doc should get W_OLD")
	}
	if w.TimeWeight(&same, nil) != 0.6 || w.TimeWeight(nil, &newest) != 0.6 {
		t.Fatalf("unknown dates should get W_OLD")
	}
}
