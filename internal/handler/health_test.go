package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeChecker struct {
	err error
}

func (f *fakeChecker) Ping(ctx context.Context) error {
	return f.err
}

func TestHealthHandler_Healthz(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.Healthz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Status = %q, want ok", response.Status)
	}
}

func TestHealthHandler_Readyz_AllHealthy(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&fakeChecker{}, &fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	h.Readyz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if response.Checks["postgres"] != "ok" {
		t.Errorf("postgres check = %q, want ok", response.Checks["postgres"])
	}
	if response.Checks["redis"] != "ok" {
		t.Errorf("redis check = %q, want ok", response.Checks["redis"])
	}
}

func TestHealthHandler_Readyz_DatabaseUnhealthy(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&fakeChecker{err: errors.New("connection refused")}, &fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	h.Readyz(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if response.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", response.Status)
	}
}

func TestHealthHandler_Readyz_NoDependencies(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	h.Readyz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", w.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if response.Checks["postgres"] != "not configured" {
		t.Errorf("postgres check = %q, want not configured", response.Checks["postgres"])
	}
}
