package config

import (
	"net/url"
	"testing"

	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

func setMockEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMBED_BACKEND", "mock")
	t.Setenv("SENT_BACKEND", "mock")
	t.Setenv("DB_DRIVER", "sqlite")
}

func TestLoadDefaults(t *testing.T) {
	setMockEnv(t)
	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Scoring
	if s.Alpha != 0.8 || s.Beta != 0.2 || s.WRecent != 1.0 || s.WOld != 0.6 {
		t.Fatalf("unexpected weights: %+v", s)
	}
	if s.FetchBatch != 3000 || s.PipeBatch != 128 {
		t.Fatalf("unexpected batch sizes: %+v", s)
	}
}

func TestLoadOverrides(t *testing.T) {
	setMockEnv(t)
	t.Setenv("ALPHA", "1.5")
	t.Setenv("BETA", "3")
	t.Setenv("W_OLD", "0")
	t.Setenv("SENT_FETCH_BATCH", "10")
	t.Setenv("SENT_PIPE_BATCH", "4")

	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoring.Alpha != 1.5 || cfg.Scoring.Beta != 3 {
		t.Fatalf("weights need not sum to one: %+v", cfg.Scoring)
	}
	if cfg.Scoring.WOld != 0 || cfg.Scoring.FetchBatch != 10 || cfg.Scoring.PipeBatch != 4 {
		t.Fatalf("unexpected overrides: %+v", cfg.Scoring)
	}
}

func TestLoadRejectsMalformedWeights(t *testing.T) {
	cases := map[string]string{
		"ALPHA":             "abc",
		"BETA":              "-0.1",
		"W_RECENT":          "NaN",
		"SENT_FETCH_BATCH":  "0",
		"SENT_PIPE_BATCH":   "12x",
		"PIPELINE_DEPTH":    "two",
		"EMBED_MAX_RETRIES": "3.5",
		"EMBED_BACKEND":     "word2vec",
	}
	for name, val := range cases {
		t.Run(name, func(t *testing.T) {
			setMockEnv(t)
			t.Setenv(name, val)
			_, err := Load(logger.Nop())
			if err == nil {
				t.Fatalf("expected error for %s=%s", name, val)
			}
			if !apperr.IsConfigurationError(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestOpenAIBackendRequiresKey(t *testing.T) {
	setMockEnv(t)
	t.Setenv("EMBED_BACKEND", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(logger.Nop()); err == nil {
		t.Fatalf("expected missing key to fail")
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if _, err := Load(logger.Nop()); err != nil {
		t.Fatalf("Load with key: %v", err)
	}
}

func TestCORSOrigins(t *testing.T) {
	setMockEnv(t)
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSOrigins: %q", cfg.CORSOrigins)
	}
}

func TestDSN(t *testing.T) {
	c := DBConfig{User: "u", Password: "p", Host: "h", Port: "1", Name: "db", SSLMode: "disable"}
	if got := c.DSN(); got != "postgres://u:p@h:1/db?sslmode=disable" {
		t.Fatalf("DSN: %q", got)
	}
}

func TestDSNEscapesCredentials(t *testing.T) {
	c := DBConfig{User: "svc@corp", Password: "p@ss/w:rd?#", Host: "db.internal", Port: "5432", Name: "theme_project", SSLMode: "require"}
	u, err := url.Parse(c.DSN())
	if err != nil {
		t.Fatalf("parse DSN %q: %v", c.DSN(), err)
	}
	pw, _ := u.User.Password()
	if u.User.Username() != c.User || pw != c.Password {
		t.Fatalf("credentials: user=%q password=%q", u.User.Username(), pw)
	}
	if u.Host != "db.internal:5432" || u.Path != "/theme_project" || u.Query().Get("sslmode") != "require" {
		t.Fatalf("DSN parts: %+v", u)
	}
}
