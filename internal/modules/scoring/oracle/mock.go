package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"sync"
	"unicode"
)

// MockEmbedder is a deterministic bag-of-words embedder: each lowercased
// token is hashed into a signed bucket, so texts sharing words are similar.
type MockEmbedder struct {
	Dims      int
	ModelName string
	// Err, when set, is returned from every call.
	Err error
}

func NewMockEmbedder(dims int) *MockEmbedder {
	if dims <= 0 {
		dims = 64
	}
	return &MockEmbedder{Dims: dims, ModelName: "mock-embed"}
}

func (e *MockEmbedder) Model() string { return e.ModelName }

func (e *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, s := range texts {
		vec := make([]float32, e.Dims)
		for _, tok := range tokenize(s) {
			h := sha256.Sum256([]byte(tok))
			bucket := binary.LittleEndian.Uint32(h[0:4]) % uint32(e.Dims)
			sign := float32(1)
			if h[4]&1 == 1 {
				sign = -1
			}
			vec[bucket] += sign
		}
		out[i] = Normalize(vec)
	}
	return out, nil
}

var (
	mockPositive = []string{"growth", "increase", "increased", "improved", "strong", "record", "gain", "gains", "profit", "exceeded", "success", "benefit"}
	mockNegative = []string{"decline", "declined", "decrease", "loss", "losses", "risk", "disruption", "weak", "impairment", "litigation", "shortage", "adverse", "faced"}
)

// MockClassifier labels by counting a small finance lexicon.
type MockClassifier struct {
	ModelName string
	Err       error

	mu    sync.Mutex
	calls []int
}

func NewMockClassifier() *MockClassifier {
	return &MockClassifier{ModelName: "mock-sentiment"}
}

func (c *MockClassifier) Model() string { return c.ModelName }

func (c *MockClassifier) Classify(ctx context.Context, texts []string) ([]Sentiment, error) {
	c.mu.Lock()
	c.calls = append(c.calls, len(texts))
	c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Sentiment, len(texts))
	for i, s := range texts {
		pos, neg := 0, 0
		for _, tok := range tokenize(s) {
			pos += count(mockPositive, tok)
			neg += count(mockNegative, tok)
		}
		switch {
		case pos > neg:
			out[i] = Sentiment{Label: "POSITIVE", Score: confidence(pos - neg)}
		case neg > pos:
			out[i] = Sentiment{Label: "NEGATIVE", Score: confidence(neg - pos)}
		default:
			out[i] = Sentiment{Label: "NEUTRAL", Score: 0.5}
		}
	}
	return out, nil
}

// Calls returns the input size of every Classify call so far.
func (c *MockClassifier) Calls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.calls...)
}

func confidence(margin int) float64 {
	return 1 - 0.5/float64(margin+1)
}

func count(words []string, tok string) int {
	for _, w := range words {
		if w == tok {
			return 1
		}
	}
	return 0
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
