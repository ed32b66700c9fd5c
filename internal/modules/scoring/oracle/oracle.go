package oracle

import (
	"context"
	"math"
)

// Embedder maps texts to fixed-length vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Sentiment is a single classifier verdict.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentClassifier labels texts, one verdict per input, in input order.
type SentimentClassifier interface {
	Classify(ctx context.Context, texts []string) ([]Sentiment, error)
	Model() string
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

type normalizing struct {
	Embedder
}

// Normalized wraps e so every returned vector has unit length.
func Normalized(e Embedder) Embedder {
	if _, ok := e.(normalizing); ok {
		return e
	}
	return normalizing{Embedder: e}
}

func (n normalizing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := n.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range vecs {
		Normalize(vecs[i])
	}
	return vecs, nil
}
