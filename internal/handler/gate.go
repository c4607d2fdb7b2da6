package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mailgate/mailgate/internal/service"
	"github.com/mailgate/mailgate/internal/token"
)

// GateHandler serves the entry URL and the access request form.
//
// The entry URL is a three-state machine: no token renders the request
// form, a valid token renders a success notice with a delayed client-side
// redirect, and an invalid token renders the specific error and stops
// there (the form is not re-shown in the same response).
type GateHandler struct {
	svc           *service.AccessService
	logger        *slog.Logger
	downstreamURL string
	redirectDelay time.Duration
}

// NewGateHandler creates a new GateHandler.
func NewGateHandler(svc *service.AccessService, logger *slog.Logger, downstreamURL string, redirectDelay time.Duration) *GateHandler {
	return &GateHandler{
		svc:           svc,
		logger:        logger,
		downstreamURL: downstreamURL,
		redirectDelay: redirectDelay,
	}
}

// Entry handles GET / with an optional token query parameter.
func (h *GateHandler) Entry(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.renderPage(w, http.StatusOK, pageData{ShowForm: true})
		return
	}

	if _, err := h.svc.VerifyAccess(r.Context(), tokenString); err != nil {
		h.handleVerifyError(w, r, err)
		return
	}

	h.logger.Info("redirecting verified user",
		"request_id", requestIDFrom(r),
	)

	h.renderPage(w, http.StatusOK, pageData{
		Notice:       "Verification succeeded. Redirecting you to the portal.",
		NoticeClass:  "ok",
		RefreshURL:   h.downstreamURL,
		RefreshDelay: int(h.redirectDelay.Seconds()),
	})
}

// Request handles POST /request with a form-encoded email field.
func (h *GateHandler) Request(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, http.StatusBadRequest, pageData{
			ShowForm:    true,
			Notice:      "The request could not be read. Please try again.",
			NoticeClass: "err",
		})
		return
	}

	email := r.PostFormValue("email")

	err := h.svc.RequestAccess(r.Context(), email)
	switch {
	case err == nil:
		h.renderPage(w, http.StatusOK, pageData{
			Notice:      "An access link has been sent to your email.",
			NoticeClass: "ok",
		})

	case errors.Is(err, service.ErrInvalidEmail):
		// Recoverable: re-prompt with the form.
		h.renderPage(w, http.StatusUnprocessableEntity, pageData{
			ShowForm:    true,
			Notice:      "Invalid email address. Please use your corporate email.",
			NoticeClass: "err",
		})

	case errors.Is(err, service.ErrRateLimited):
		h.renderPage(w, http.StatusTooManyRequests, pageData{
			Notice:      "Too many requests for this address. Please try again later.",
			NoticeClass: "err",
		})

	case errors.Is(err, service.ErrDeliveryFailed):
		h.renderPage(w, http.StatusBadGateway, pageData{
			Notice:      "The access link could not be delivered. Please try again later.",
			NoticeClass: "err",
		})

	default:
		h.logger.Error("access request failed",
			"error", err,
			"request_id", requestIDFrom(r),
		)
		h.renderPage(w, http.StatusInternalServerError, pageData{
			Notice:      "An internal error occurred. Please try again later.",
			NoticeClass: "err",
		})
	}
}

// handleVerifyError renders the specific validation error. The expired
// and invalid cases read differently for the user, but an invalid token
// reveals nothing about why it failed.
func (h *GateHandler) handleVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, token.ErrExpired):
		h.logger.Info("token expired",
			"request_id", requestIDFrom(r),
		)
		h.renderPage(w, http.StatusGone, pageData{
			Notice:      "This access link has expired. Request a new one from the gate page.",
			NoticeClass: "err",
		})

	case errors.Is(err, token.ErrInvalid):
		h.logger.Warn("token invalid",
			"request_id", requestIDFrom(r),
		)
		h.renderPage(w, http.StatusUnauthorized, pageData{
			Notice:      "This access link is not valid.",
			NoticeClass: "err",
		})

	default:
		h.logger.Error("token verification error",
			"error", err,
			"request_id", requestIDFrom(r),
		)
		h.renderPage(w, http.StatusInternalServerError, pageData{
			Notice:      "An internal error occurred. Please try again later.",
			NoticeClass: "err",
		})
	}
}

// renderPage writes the gate page with security headers.
func (h *GateHandler) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "private, max-age=0")
	w.WriteHeader(status)

	if err := gateTemplate.Execute(w, data); err != nil {
		h.logger.Error("render gate page", "error", err)
	}
}
