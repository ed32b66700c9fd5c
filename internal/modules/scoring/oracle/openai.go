package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/themescore-backend/internal/platform/openai"
)

type openAIEmbedder struct {
	client openai.Client
}

// NewOpenAIEmbedder embeds through the /v1/embeddings endpoint.
func NewOpenAIEmbedder(client openai.Client) Embedder {
	return &openAIEmbedder{client: client}
}

func (e *openAIEmbedder) Model() string { return e.client.Model() }

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(vecs), len(texts))
	}
	return vecs, nil
}

const llmSentimentSystem = `You are a financial sentiment classifier for sentences from corporate filings.
For every numbered sentence return its label (POSITIVE, NEGATIVE or NEUTRAL) and a confidence between 0 and 1.
Return exactly one result per sentence, in the same order, with the matching index.`

var llmSentimentSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"results"},
	"properties": map[string]any{
		"results": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"index", "label", "score"},
				"properties": map[string]any{
					"index": map[string]any{"type": "integer"},
					"label": map[string]any{"type": "string", "enum": []string{"POSITIVE", "NEGATIVE", "NEUTRAL"}},
					"score": map[string]any{"type": "number"},
				},
			},
		},
	},
}

type llmClassifier struct {
	client openai.Client
}

// NewLLMClassifier classifies sentiment with a structured-output chat model.
func NewLLMClassifier(client openai.Client) SentimentClassifier {
	return &llmClassifier{client: client}
}

func (c *llmClassifier) Model() string { return c.client.Model() }

func (c *llmClassifier) Classify(ctx context.Context, texts []string) ([]Sentiment, error) {
	if len(texts) == 0 {
		return []Sentiment{}, nil
	}
	var user strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&user, "%d. %s\n", i, strings.ReplaceAll(strings.TrimSpace(t), "\n", " "))
	}
	obj, err := c.client.GenerateJSON(ctx, llmSentimentSystem, user.String(), "sentence_sentiment", llmSentimentSchema)
	if err != nil {
		return nil, err
	}
	items, _ := obj["results"].([]any)
	out := make([]Sentiment, len(texts))
	seen := make([]bool, len(texts))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		idx, ok := m["index"].(float64)
		if !ok || int(idx) < 0 || int(idx) >= len(texts) {
			continue
		}
		label, _ := m["label"].(string)
		score, _ := m["score"].(float64)
		out[int(idx)] = Sentiment{Label: label, Score: score}
		seen[int(idx)] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("sentiment: model omitted result for sentence %d of %d", i, len(texts))
		}
	}
	return out, nil
}
