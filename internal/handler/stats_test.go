package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mailgate/mailgate/internal/model"
)

type fakeStatsRepo struct {
	unique    int64
	daily     []*model.DailyStat
	err       error
	lastLimit int
}

func (f *fakeStatsRepo) CountUniqueIdentities(ctx context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.unique, nil
}

func (f *fakeStatsRepo) ListDailyStats(ctx context.Context, limit int) ([]*model.DailyStat, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.daily, nil
}

func newStatsFixture(repo *fakeStatsRepo) *StatsHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStatsHandler(repo, logger)
}

func TestStatsHandler_Stats(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{
		unique: 42,
		daily: []*model.DailyStat{
			{
				Date:             time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				UniqueRequesters: 7,
				TotalRequests:    19,
				TotalAccesses:    11,
			},
		},
	}
	h := newStatsFixture(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var response StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if response.AllTimeUniqueIdentities != 42 {
		t.Errorf("AllTimeUniqueIdentities = %d, want 42", response.AllTimeUniqueIdentities)
	}
	if len(response.Daily) != 1 {
		t.Fatalf("Daily rows = %d, want 1", len(response.Daily))
	}
	row := response.Daily[0]
	if row.Date != "2026-03-01" {
		t.Errorf("Date = %q, want 2026-03-01", row.Date)
	}
	if row.UniqueRequesters != 7 || row.TotalRequests != 19 || row.TotalAccesses != 11 {
		t.Errorf("Row = %+v, want 7/19/11", row)
	}
}

func TestStatsHandler_Stats_DaysParam(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{}
	h := newStatsFixture(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats?days=90", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}
	if repo.lastLimit != 90 {
		t.Errorf("Limit passed to repo = %d, want 90", repo.lastLimit)
	}
}

func TestStatsHandler_Stats_InvalidDays(t *testing.T) {
	t.Parallel()

	h := newStatsFixture(&fakeStatsRepo{})

	for _, days := range []string{"0", "-3", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats?days="+days, nil)
		w := httptest.NewRecorder()
		h.Stats(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("days=%s status = %d, want 400", days, w.Code)
		}
	}
}

func TestStatsHandler_Stats_RepoError(t *testing.T) {
	t.Parallel()

	h := newStatsFixture(&fakeStatsRepo{err: errors.New("connection reset")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}
}
