package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

func TestEmbedOrdersByIndexAndRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req embeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "embed-test" || len(req.Input) != 2 {
			t.Errorf("bad request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "sk-test", Model: "embed-test", MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	vecs, err := c.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Fatalf("Embed order: %v", vecs)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, calls=%d", calls.Load())
	}
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k", Model: "m", MaxRetries: 3})
	if _, err := c.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("400 must not be retried, calls=%d", calls.Load())
	}
}

func TestGenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"ok\":true}"}]}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "s", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["ok"] != true {
		t.Fatalf("GenerateJSON: %v", obj)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{Model: "m"}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
