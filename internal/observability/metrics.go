package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// Metrics holds the scoring run and API counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	batches        *CounterVec
	sentences      *Counter
	rows           *Counter
	batchLatency   *HistogramVec
	oracleCalls    *CounterVec
	oracleLatency  *HistogramVec
	refreshLatency *HistogramVec
	runs           *CounterVec
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		batches:   NewCounterVec("themescore_batches_total", "Batches processed by outcome.", []string{"status"}),
		sentences: NewCounter("themescore_sentences_total", "Sentences scored."),
		rows:      NewCounter("themescore_rows_total", "Sentence-theme rows produced."),
		batchLatency: NewHistogramVec(
			"themescore_batch_duration_seconds",
			"Wall time per batch by stage.",
			[]string{"stage"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		oracleCalls: NewCounterVec("themescore_oracle_requests_total", "Oracle calls by oracle and outcome.", []string{"oracle", "status"}),
		oracleLatency: NewHistogramVec(
			"themescore_oracle_duration_seconds",
			"Oracle call latency by oracle.",
			[]string{"oracle"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		refreshLatency: NewHistogramVec("themescore_refresh_duration_seconds", "Company aggregate refresh time.", nil, nil),
		runs:           NewCounterVec("themescore_runs_total", "Runs by outcome.", []string{"status"}),
		apiRequests:    NewCounterVec("themescore_api_requests_total", "Score API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"themescore_api_request_duration_seconds",
			"Score API latency by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
	}
}

func (m *Metrics) ObserveBatch(stage, status string, sentences, rows int, dur time.Duration) {
	if m == nil {
		return
	}
	m.batchLatency.Observe(dur.Seconds(), stage)
	if stage != "persist" {
		return
	}
	m.batches.Inc(status)
	if status == "ok" {
		m.sentences.Add(float64(sentences))
		m.rows.Add(float64(rows))
	}
}

func (m *Metrics) ObserveOracle(oracle string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.oracleCalls.Inc(oracle, status)
	m.oracleLatency.Observe(dur.Seconds(), oracle)
}

func (m *Metrics) ObserveRefresh(dur time.Duration) {
	if m == nil {
		return
	}
	m.refreshLatency.Observe(dur.Seconds())
}

func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.runs.Inc(status)
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

// Totals is a snapshot used for the end-of-run log line.
type Totals struct {
	Sentences float64
	Rows      float64
}

func (m *Metrics) Totals() Totals {
	if m == nil {
		return Totals{}
	}
	return Totals{Sentences: m.sentences.Value(), Rows: m.rows.Value()}
}

// StartServer serves the Prometheus text format on addr until ctx ends.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.batches,
		m.sentences,
		m.rows,
		m.batchLatency,
		m.oracleCalls,
		m.oracleLatency,
		m.refreshLatency,
		m.runs,
		m.apiRequests,
		m.apiLatency,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
