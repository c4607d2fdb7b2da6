package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mailgate/mailgate/internal/auth"
)

// minAuthDuration is the minimum time to spend on auth to prevent
// timing attacks.
const minAuthDuration = 200 * time.Millisecond

// AdminAuthConfig holds configuration for the admin auth middleware.
type AdminAuthConfig struct {
	Logger *slog.Logger
	// KeyHash is the Argon2id hash of the single admin key. Empty
	// disables all guarded routes.
	KeyHash string
}

// AdminAuth returns a middleware that authenticates the statistics
// endpoint against the configured admin key hash.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			if cfg.KeyHash == "" {
				writeAuthError(w, http.StatusNotFound, "resource not found")
				return
			}

			key := extractAdminKey(r)
			if key == "" {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "missing_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if err := auth.ValidateKeyFormat(key); err != nil {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "invalid_format"),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			match, err := auth.VerifyKey(key, cfg.KeyHash)
			if err != nil || !match {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "invalid_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractAdminKey pulls the key from the Authorization header.
// Expected form: "Bearer ak_...".
func extractAdminKey(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

// writeAuthError writes a JSON auth error response.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
