package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/themescore-backend/internal/platform/httpx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type HTTPClassifierConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RPS        float64
}

type httpClassifier struct {
	log     *logger.Logger
	model   string
	http    *httpx.JSONClient
	limiter *rate.Limiter
}

// NewHTTPClassifier posts {"inputs": [...]} to BaseURL, the full endpoint of a
// text-classification inference server, and reads one verdict per input.
func NewHTTPClassifier(log *logger.Logger, cfg HTTPClassifierConfig) (SentimentClassifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing SENT_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &httpClassifier{
		log:   log.With("service", "SentimentHTTP", "model", cfg.Model),
		model: cfg.Model,
	}
	c.http = &httpx.JSONClient{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		HTTP:       &http.Client{Timeout: timeout},
		MaxRetries: cfg.MaxRetries,
		OnRetry: func(path string, attempt int, sleep time.Duration, err error) {
			c.log.Warn("sentiment request retrying", "attempt", attempt, "sleep", sleep.String(), "error", err)
		},
	}
	if cfg.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, int(cfg.RPS)))
	}
	return c, nil
}

func (c *httpClassifier) Model() string { return c.model }

type classifyRequest struct {
	Inputs []string `json:"inputs"`
}

func (c *httpClassifier) Classify(ctx context.Context, texts []string) ([]Sentiment, error) {
	if len(texts) == 0 {
		return []Sentiment{}, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var raw json.RawMessage
	if err := c.http.Do(ctx, http.MethodPost, "", classifyRequest{Inputs: texts}, &raw); err != nil {
		return nil, err
	}
	out, err := decodeClassifications(raw)
	if err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("sentiment: got %d results for %d inputs", len(out), len(texts))
	}
	return out, nil
}

// decodeClassifications accepts either one top label per input
// ([{label,score}, ...]) or all labels per input ([[{label,score}, ...], ...]),
// keeping the highest-scoring label in the latter case.
func decodeClassifications(raw json.RawMessage) ([]Sentiment, error) {
	var nested [][]Sentiment
	if err := json.Unmarshal(raw, &nested); err == nil {
		out := make([]Sentiment, len(nested))
		for i, labels := range nested {
			if len(labels) == 0 {
				return nil, fmt.Errorf("sentiment: empty label list for input %d", i)
			}
			best := labels[0]
			for _, l := range labels[1:] {
				if l.Score > best.Score {
					best = l
				}
			}
			out[i] = best
		}
		return out, nil
	}
	var flat []Sentiment
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("sentiment: decode response: %w", err)
	}
	return flat, nil
}
