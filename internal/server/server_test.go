package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/querygate/querygate/internal/config"
	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/index"
	apperrors "github.com/querygate/querygate/internal/errors"
	"github.com/querygate/querygate/internal/server/handlers"
)

func newTestServer(t *testing.T, maxRequests int) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Limiter: config.LimiterConfig{
			MaxRequests: maxRequests,
			Window:      15 * time.Second,
		},
		Suggest: config.SuggestConfig{
			Debounce:       50 * time.Millisecond,
			MinQueryLength: 2,
			Limit:          10,
		},
	}

	idx := index.New()
	idx.Build([]core.Record{
		{ID: "a", Name: "alpha", Weight: 5},
		{ID: "b", Name: "alps", Weight: 2},
		{ID: "c", Name: "beta", Weight: 1},
	})

	search := func(ctx context.Context, query string) ([]core.Record, error) {
		return []core.Record{{ID: "a", Name: "alpha", Weight: 5}}, nil
	}

	service := NewQueryService(cfg, idx, search)
	t.Cleanup(service.Close)

	return New(cfg.Server, service)
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(t, 2)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestSearchEndpointEnforcesAdmissionBudget(t *testing.T) {
	srv := newTestServer(t, 2)

	// First two searches fit the budget.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/search?q=alpha", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rec.Code)
		}
	}

	// Third inside the same window is rejected.
	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=alpha", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on 429")
	}

	// The limit endpoint reflects the closed gate.
	limitReq := httptest.NewRequest(http.MethodGet, "/v1/limit", nil)
	limitRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(limitRec, limitReq)

	var limit handlers.LimitResponse
	if err := json.NewDecoder(limitRec.Body).Decode(&limit); err != nil {
		t.Fatalf("failed to decode limit response: %v", err)
	}
	if !limit.Limited || limit.RemainingSeconds < 1 {
		t.Fatalf("expected limited state with remaining >= 1, got %+v", limit)
	}
}

func TestSuggestEndpointIsNotRateLimited(t *testing.T) {
	srv := newTestServer(t, 1)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/suggest?q=al", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rec.Code)
		}

		var resp handlers.SuggestResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Count != 2 {
			t.Fatalf("expected 2 suggestions for al, got %d", resp.Count)
		}
		if resp.Records[0].Name != "alpha" {
			t.Fatalf("expected alpha ranked first, got %s", resp.Records[0].Name)
		}
	}
}

func TestSearchEndpointRejectsShortQuery(t *testing.T) {
	srv := newTestServer(t, 2)

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=a", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	// A rejected short query must not consume admission budget.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/search?q=alpha", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rec.Code)
		}
	}
}
