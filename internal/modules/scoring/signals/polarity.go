package signals

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
)

// Polarity is one classifier verdict: Value is the signed confidence
// (+conf positive, -conf negative, 0 otherwise) and Confidence the raw score.
type Polarity struct {
	Value      float64
	Confidence float64
}

// LabelPolarity maps a classifier label to a signed confidence. Labels are
// matched case-insensitively by substring, so "POSITIVE", "LABEL_POS" and
// "pos" all count as positive.
func LabelPolarity(label string, confidence float64) Polarity {
	conf := clamp(confidence, 0, 1)
	l := strings.ToUpper(label)
	switch {
	case strings.Contains(l, "POS"):
		return Polarity{Value: conf, Confidence: conf}
	case strings.Contains(l, "NEG"):
		return Polarity{Value: -conf, Confidence: conf}
	default:
		return Polarity{Value: 0, Confidence: conf}
	}
}

// PolarityAndConfidence classifies texts in sub-batches of subBatch and
// returns one verdict per input in input order. Any classifier error, or a
// response of the wrong length, fails the whole call.
func PolarityAndConfidence(ctx context.Context, clf oracle.SentimentClassifier, texts []string, subBatch int) ([]Polarity, error) {
	if clf == nil {
		return nil, fmt.Errorf("polarity: nil classifier")
	}
	if subBatch <= 0 {
		subBatch = len(texts)
	}
	out := make([]Polarity, 0, len(texts))
	for start := 0; start < len(texts); start += subBatch {
		end := start + subBatch
		if end > len(texts) {
			end = len(texts)
		}
		res, err := clf.Classify(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("classify [%d:%d]: %w", start, end, err)
		}
		if len(res) != end-start {
			return nil, fmt.Errorf("classify [%d:%d]: got %d results for %d inputs", start, end, len(res), end-start)
		}
		for _, r := range res {
			out = append(out, LabelPolarity(r.Label, r.Score))
		}
	}
	return out, nil
}

// Sign is the multiplier applied to the composite score. Zero counts as positive.
func Sign(polarity float64) float64 {
	if polarity < 0 {
		return -1
	}
	return 1
}

// Direction is the stored polarity: -1, 0 or +1.
func Direction(polarity float64) int {
	switch {
	case polarity > 0:
		return 1
	case polarity < 0:
		return -1
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
