package oracle

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/themescore-backend/internal/config"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
	"github.com/yungbote/themescore-backend/internal/platform/openai"
)

// NewEmbedder builds the configured embedder. Vectors are always returned
// unit-normalized; rdb, when non-nil, adds a read-through cache.
func NewEmbedder(cfg config.Config, log *logger.Logger, rdb goredis.UniversalClient) (Embedder, error) {
	var e Embedder
	switch cfg.Embedder.Backend {
	case config.BackendOpenAI:
		c, err := openai.NewClient(log, openai.Config{
			BaseURL:    cfg.Embedder.BaseURL,
			APIKey:     cfg.Embedder.APIKey,
			Model:      cfg.Embedder.Model,
			Timeout:    cfg.Embedder.Timeout,
			MaxRetries: cfg.Embedder.MaxRetries,
			RPS:        cfg.Embedder.RPS,
		})
		if err != nil {
			return nil, apperr.Config("embedder", err)
		}
		e = NewOpenAIEmbedder(c)
	case config.BackendMock:
		m := NewMockEmbedder(64)
		m.ModelName = cfg.Embedder.Model
		e = m
	default:
		return nil, apperr.Config("embedder", fmt.Errorf("unknown EMBED_BACKEND %q", cfg.Embedder.Backend))
	}
	e = Normalized(e)
	if rdb != nil {
		e = NewCachedEmbedder(e, rdb, cfg.EmbedCacheTTL, log)
	}
	return e, nil
}

// NewSentimentClassifier builds the configured sentiment classifier.
func NewSentimentClassifier(cfg config.Config, log *logger.Logger) (SentimentClassifier, error) {
	s := cfg.Sentiment
	switch s.Backend {
	case config.BackendHTTP:
		c, err := NewHTTPClassifier(log, HTTPClassifierConfig{
			BaseURL:    s.BaseURL,
			APIKey:     s.APIKey,
			Model:      s.Model,
			Timeout:    s.Timeout,
			MaxRetries: s.MaxRetries,
			RPS:        s.RPS,
		})
		if err != nil {
			return nil, apperr.Config("sentiment classifier", err)
		}
		return c, nil
	case config.BackendOpenAI:
		c, err := openai.NewClient(log, openai.Config{
			BaseURL:    s.BaseURL,
			APIKey:     s.APIKey,
			Model:      s.Model,
			Timeout:    s.Timeout,
			MaxRetries: s.MaxRetries,
			RPS:        s.RPS,
		})
		if err != nil {
			return nil, apperr.Config("sentiment classifier", err)
		}
		return NewLLMClassifier(c), nil
	case config.BackendMock:
		m := NewMockClassifier()
		m.ModelName = s.Model
		return m, nil
	default:
		return nil, apperr.Config("sentiment classifier", fmt.Errorf("unknown SENT_BACKEND %q", s.Backend))
	}
}
