package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	RequestID(next).ServeHTTP(w, req)

	if captured == "" {
		t.Error("Request ID should be generated when absent")
	}
	if got := w.Header().Get("X-Request-ID"); got != captured {
		t.Errorf("Response header = %q, want %q", got, captured)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	t.Parallel()

	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "incoming-id-123")
	w := httptest.NewRecorder()
	RequestID(next).ServeHTTP(w, req)

	if captured != "incoming-id-123" {
		t.Errorf("Request ID = %q, want incoming-id-123", captured)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID without middleware = %q, want empty", got)
	}
}
