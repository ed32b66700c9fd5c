package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/envutil"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

const (
	BackendOpenAI = "openai"
	BackendHTTP   = "http"
	BackendMock   = "mock"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type OracleConfig struct {
	Backend    string
	Model      string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// RPS caps request rate against the oracle; 0 disables limiting.
	RPS float64
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	SQLitePath string
}

// DSN renders the Postgres connection URL with credentials escaped.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type ScoringConfig struct {
	Alpha   float64
	Beta    float64
	WRecent float64
	WOld    float64

	FetchBatch int
	PipeBatch  int
	// PipelineDepth is the bounded queue size between the score and persist
	// stages when running pipelined.
	PipelineDepth int
}

type Config struct {
	LogMode   string
	Embedder  OracleConfig
	Sentiment OracleConfig
	Scoring   ScoringConfig
	DB        DBConfig

	RedisAddr     string
	EmbedCacheTTL time.Duration

	MetricsAddr  string
	ScoreAPIAddr string
	CORSOrigins  []string
}

func Default() Config {
	return Config{
		LogMode: "development",
		Embedder: OracleConfig{
			Backend:    BackendOpenAI,
			Model:      "text-embedding-3-small",
			BaseURL:    "https://api.openai.com",
			Timeout:    60 * time.Second,
			MaxRetries: 4,
		},
		Sentiment: OracleConfig{
			Backend:    BackendHTTP,
			Model:      "distilbert-base-uncased-finetuned-sst-2-english",
			BaseURL:    "http://localhost:8081",
			Timeout:    60 * time.Second,
			MaxRetries: 4,
		},
		Scoring: ScoringConfig{
			Alpha:         0.8,
			Beta:          0.2,
			WRecent:       1.0,
			WOld:          0.6,
			FetchBatch:    3000,
			PipeBatch:     128,
			PipelineDepth: 1,
		},
		DB: DBConfig{
			Driver:     DriverPostgres,
			Host:       "localhost",
			Port:       "5432",
			Name:       "theme_project",
			User:       "postgres",
			SSLMode:    "disable",
			SQLitePath: "themescore.db",
		},
		EmbedCacheTTL: 30 * 24 * time.Hour,
		ScoreAPIAddr:  ":8080",
	}
}

// Load reads the configuration surface from the environment and validates it.
// Any problem is a ConfigurationError; the run must not start.
func Load(log *logger.Logger) (Config, error) {
	cfg := Default()
	var problems []error

	floatVar := func(name string, dst *float64) {
		v, ok := envutil.Float(name, *dst)
		if !ok {
			problems = append(problems, fmt.Errorf("%s: not a number", name))
			return
		}
		*dst = v
	}

	intVar := func(name string, dst *int) {
		v, ok := envutil.Int(name, *dst)
		if !ok {
			problems = append(problems, fmt.Errorf("%s: not an integer", name))
			return
		}
		*dst = v
	}

	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.Embedder.Backend = strings.ToLower(envutil.String("EMBED_BACKEND", cfg.Embedder.Backend))
	cfg.Embedder.Model = envutil.String("EMBED_MODEL", cfg.Embedder.Model)
	cfg.Embedder.BaseURL = strings.TrimRight(envutil.String("OPENAI_BASE_URL", cfg.Embedder.BaseURL), "/")
	cfg.Embedder.APIKey = envutil.String("OPENAI_API_KEY", "")
	cfg.Embedder.Timeout = envutil.Duration("EMBED_TIMEOUT", cfg.Embedder.Timeout)
	intVar("EMBED_MAX_RETRIES", &cfg.Embedder.MaxRetries)

	cfg.Sentiment.Backend = strings.ToLower(envutil.String("SENT_BACKEND", cfg.Sentiment.Backend))
	cfg.Sentiment.Model = envutil.String("SENT_MODEL", cfg.Sentiment.Model)
	cfg.Sentiment.BaseURL = strings.TrimRight(envutil.String("SENT_URL", cfg.Sentiment.BaseURL), "/")
	cfg.Sentiment.APIKey = envutil.String("SENT_API_KEY", "")
	cfg.Sentiment.Timeout = envutil.Duration("SENT_TIMEOUT", cfg.Sentiment.Timeout)
	intVar("SENT_MAX_RETRIES", &cfg.Sentiment.MaxRetries)
	if cfg.Sentiment.Backend == BackendOpenAI {
		if cfg.Sentiment.APIKey == "" {
			cfg.Sentiment.APIKey = cfg.Embedder.APIKey
		}
		if envutil.String("SENT_URL", "") == "" {
			cfg.Sentiment.BaseURL = cfg.Embedder.BaseURL
		}
	}

	var rps float64
	floatVar("ORACLE_RPS", &rps)
	cfg.Embedder.RPS = rps
	cfg.Sentiment.RPS = rps

	floatVar("ALPHA", &cfg.Scoring.Alpha)
	floatVar("BETA", &cfg.Scoring.Beta)
	floatVar("W_RECENT", &cfg.Scoring.WRecent)
	floatVar("W_OLD", &cfg.Scoring.WOld)
	intVar("SENT_FETCH_BATCH", &cfg.Scoring.FetchBatch)
	intVar("SENT_PIPE_BATCH", &cfg.Scoring.PipeBatch)
	intVar("PIPELINE_DEPTH", &cfg.Scoring.PipelineDepth)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Host = envutil.String("PGHOST", cfg.DB.Host)
	cfg.DB.Port = envutil.String("PGPORT", cfg.DB.Port)
	cfg.DB.Name = envutil.String("PGDATABASE", cfg.DB.Name)
	cfg.DB.User = envutil.String("PGUSER", cfg.DB.User)
	cfg.DB.Password = envutil.String("PGPASSWORD", cfg.DB.Password)
	cfg.DB.SSLMode = envutil.String("PGSSLMODE", cfg.DB.SSLMode)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.RedisAddr = envutil.String("REDIS_ADDR", "")
	cfg.EmbedCacheTTL = envutil.Duration("EMBED_CACHE_TTL", cfg.EmbedCacheTTL)
	cfg.MetricsAddr = envutil.String("METRICS_ADDR", "")
	cfg.ScoreAPIAddr = envutil.String("SCOREAPI_ADDR", cfg.ScoreAPIAddr)
	cfg.CORSOrigins = splitList(envutil.String("CORS_ALLOW_ORIGINS", ""))

	if err := cfg.Validate(); err != nil {
		problems = append(problems, err)
	}
	if len(problems) > 0 {
		return cfg, apperr.Config("load config", errors.Join(problems...))
	}

	if log != nil {
		log.Info("configuration loaded",
			"embed_backend", cfg.Embedder.Backend,
			"embed_model", cfg.Embedder.Model,
			"sent_backend", cfg.Sentiment.Backend,
			"sent_model", cfg.Sentiment.Model,
			"alpha", cfg.Scoring.Alpha,
			"beta", cfg.Scoring.Beta,
			"w_recent", cfg.Scoring.WRecent,
			"w_old", cfg.Scoring.WOld,
			"fetch_batch", cfg.Scoring.FetchBatch,
			"pipe_batch", cfg.Scoring.PipeBatch,
			"db_driver", cfg.DB.Driver,
		)
	}
	return cfg, nil
}

// Validate checks weights and sizes. ALPHA and BETA need not sum to one.
func (c Config) Validate() error {
	var problems []error
	weights := []struct {
		name string
		v    float64
	}{
		{"ALPHA", c.Scoring.Alpha},
		{"BETA", c.Scoring.Beta},
		{"W_RECENT", c.Scoring.WRecent},
		{"W_OLD", c.Scoring.WOld},
	}
	for _, w := range weights {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) || w.v < 0 {
			problems = append(problems, fmt.Errorf("%s must be a finite non-negative number, got %v", w.name, w.v))
		}
	}
	if c.Scoring.FetchBatch <= 0 {
		problems = append(problems, fmt.Errorf("SENT_FETCH_BATCH must be positive, got %d", c.Scoring.FetchBatch))
	}
	if c.Scoring.PipeBatch <= 0 {
		problems = append(problems, fmt.Errorf("SENT_PIPE_BATCH must be positive, got %d", c.Scoring.PipeBatch))
	}
	if c.Scoring.PipelineDepth <= 0 {
		problems = append(problems, fmt.Errorf("PIPELINE_DEPTH must be positive, got %d", c.Scoring.PipelineDepth))
	}
	if c.Embedder.RPS < 0 || c.Sentiment.RPS < 0 {
		problems = append(problems, errors.New("ORACLE_RPS must be non-negative"))
	}
	switch c.Embedder.Backend {
	case BackendOpenAI:
		if strings.TrimSpace(c.Embedder.APIKey) == "" {
			problems = append(problems, errors.New("EMBED_BACKEND=openai requires OPENAI_API_KEY"))
		}
	case BackendMock:
	default:
		problems = append(problems, fmt.Errorf("unknown EMBED_BACKEND %q", c.Embedder.Backend))
	}
	switch c.Sentiment.Backend {
	case BackendHTTP:
		if strings.TrimSpace(c.Sentiment.BaseURL) == "" {
			problems = append(problems, errors.New("SENT_BACKEND=http requires SENT_URL"))
		}
	case BackendOpenAI:
		if strings.TrimSpace(c.Sentiment.APIKey) == "" {
			problems = append(problems, errors.New("SENT_BACKEND=openai requires SENT_API_KEY or OPENAI_API_KEY"))
		}
	case BackendMock:
	default:
		problems = append(problems, fmt.Errorf("unknown SENT_BACKEND %q", c.Sentiment.Backend))
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}
	return errors.Join(problems...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
