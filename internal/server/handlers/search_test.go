package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/querygate/querygate/internal/core"
	"github.com/querygate/querygate/internal/core/engine"
	"github.com/querygate/querygate/internal/core/gate"
	apperrors "github.com/querygate/querygate/internal/errors"
)

type stubBackend struct {
	suggestRecords []core.Record
	suggestErr     error
	admission      gate.Admission
	searchErr      error
	state          gate.ErrorState
	maxRequests    int
	window         time.Duration
}

func (s *stubBackend) Suggest(ctx context.Context, query string, limit int) ([]core.Record, error) {
	return s.suggestRecords, s.suggestErr
}

func (s *stubBackend) Search(ctx context.Context, query string) (gate.Admission, error) {
	return s.admission, s.searchErr
}

func (s *stubBackend) LimitState() gate.ErrorState {
	return s.state
}

func (s *stubBackend) Limits() (int, time.Duration) {
	return s.maxRequests, s.window
}

func TestSearchHandlerReturnsRecords(t *testing.T) {
	SetQueryBackend(&stubBackend{
		admission: gate.Admission{
			Admitted: true,
			Records:  []core.Record{{ID: "a", Name: "alpha"}},
		},
		maxRequests: 2,
		window:      15 * time.Second,
	})
	defer SetQueryBackend(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=alpha", nil)
	rec := httptest.NewRecorder()

	SearchHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Records) != 1 {
		t.Fatalf("expected one record, got count=%d len=%d", resp.Count, len(resp.Records))
	}
	if resp.Records[0].Name != "alpha" {
		t.Fatalf("expected record alpha, got %s", resp.Records[0].Name)
	}
}

func TestSearchHandlerRejectionMapsTo429(t *testing.T) {
	SetQueryBackend(&stubBackend{
		admission:   gate.Admission{Admitted: false},
		state:       gate.ErrorState{Limited: true, RemainingSeconds: 9},
		maxRequests: 2,
		window:      15 * time.Second,
	})
	defer SetQueryBackend(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=alpha", nil)
	rec := httptest.NewRecorder()

	SearchHandler(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "9" {
		t.Fatalf("expected Retry-After 9, got %q", got)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected error code RATE_LIMITED, got %s", body.Error.Code)
	}
}

func TestSearchHandlerShortQueryMapsTo400(t *testing.T) {
	SetQueryBackend(&stubBackend{searchErr: engine.ErrQueryTooShort})
	defer SetQueryBackend(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=a", nil)
	rec := httptest.NewRecorder()

	SearchHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Error.Code != "INVALID_INPUT" {
		t.Fatalf("expected error code INVALID_INPUT, got %s", body.Error.Code)
	}
}

func TestSearchHandlerRequiresQuery(t *testing.T) {
	SetQueryBackend(&stubBackend{})
	defer SetQueryBackend(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	rec := httptest.NewRecorder()

	SearchHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
