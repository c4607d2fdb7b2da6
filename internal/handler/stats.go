package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mailgate/mailgate/internal/model"
)

// StatsRepository defines the queries the statistics endpoint needs.
type StatsRepository interface {
	CountUniqueIdentities(ctx context.Context) (int64, error)
	ListDailyStats(ctx context.Context, limit int) ([]*model.DailyStat, error)
}

// StatsHandler serves aggregated access log statistics.
type StatsHandler struct {
	repo   StatsRepository
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(repo StatsRepository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		repo:   repo,
		logger: logger,
	}
}

// DailyStatResponse is one per-day row in the stats response.
type DailyStatResponse struct {
	Date             string `json:"date"`
	UniqueRequesters int64  `json:"unique_requesters"`
	TotalRequests    int64  `json:"total_requests"`
	TotalAccesses    int64  `json:"total_accesses"`
}

// StatsResponse is the statistics payload.
type StatsResponse struct {
	AllTimeUniqueIdentities int64               `json:"all_time_unique_identities"`
	Daily                   []DailyStatResponse `json:"daily"`
}

// Stats handles GET /api/v1/stats.
// Accepts an optional days query parameter bounding the per-day rows.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "days must be a positive integer",
			})
			return
		}
		days = parsed
	}

	unique, err := h.repo.CountUniqueIdentities(r.Context())
	if err != nil {
		h.logger.Error("count unique identities",
			"error", err,
			"request_id", requestIDFrom(r),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "an internal error occurred",
		})
		return
	}

	daily, err := h.repo.ListDailyStats(r.Context(), days)
	if err != nil {
		h.logger.Error("list daily stats",
			"error", err,
			"request_id", requestIDFrom(r),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "an internal error occurred",
		})
		return
	}

	response := StatsResponse{
		AllTimeUniqueIdentities: unique,
		Daily:                   make([]DailyStatResponse, 0, len(daily)),
	}
	for _, stat := range daily {
		response.Daily = append(response.Daily, DailyStatResponse{
			Date:             stat.Date.UTC().Format(time.DateOnly),
			UniqueRequesters: stat.UniqueRequesters,
			TotalRequests:    stat.TotalRequests,
			TotalAccesses:    stat.TotalAccesses,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
