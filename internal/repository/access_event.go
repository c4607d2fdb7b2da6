package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mailgate/mailgate/internal/model"
)

// AccessEventRepository provides database access for the append-only
// access log. Entries are inserted and read back for statistics, never
// updated or deleted.
type AccessEventRepository struct {
	repo *Repository
}

// NewAccessEventRepository creates a new AccessEventRepository.
func NewAccessEventRepository(repo *Repository) *AccessEventRepository {
	return &AccessEventRepository{repo: repo}
}

// BulkInsert inserts multiple access events with idempotency via
// ON CONFLICT DO NOTHING on the event ID.
func (r *AccessEventRepository) BulkInsert(ctx context.Context, events []*model.AccessEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO access_events (
			id, event_id, identity_hash, kind, occurred_at, created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.IdentityHash,
			string(event.Kind),
			event.OccurredAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// UpdateDailyStats recalculates daily_access_stats for every day touched
// by the given events. Recalculating from the log keeps the aggregate
// consistent with duplicate-suppressed inserts.
func (r *AccessEventRepository) UpdateDailyStats(ctx context.Context, events []*model.AccessEvent) error {
	if len(events) == 0 {
		return nil
	}

	for _, day := range uniqueDays(events) {
		stat, err := r.recalculateDailyStat(ctx, day)
		if err != nil {
			return fmt.Errorf("recalculate daily stat %s: %w", day.Format("2006-01-02"), err)
		}
		if err := r.upsertDailyStat(ctx, stat); err != nil {
			return fmt.Errorf("upsert daily stat %s: %w", day.Format("2006-01-02"), err)
		}
	}

	return nil
}

// uniqueDays returns the distinct UTC days covered by the events.
func uniqueDays(events []*model.AccessEvent) []time.Time {
	seen := make(map[string]time.Time)
	for _, event := range events {
		day := event.Day()
		seen[day.Format("2006-01-02")] = day
	}

	days := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}
	return days
}

func (r *AccessEventRepository) recalculateDailyStat(ctx context.Context, day time.Time) (*model.DailyStat, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT
			COUNT(DISTINCT identity_hash) FILTER (WHERE kind = 'requested'),
			COUNT(*) FILTER (WHERE kind = 'requested'),
			COUNT(*) FILTER (WHERE kind = 'accessed')
		FROM access_events
		WHERE occurred_at >= $1 AND occurred_at < $2
	`

	stat := &model.DailyStat{Date: start}
	err := r.repo.pool.QueryRow(ctx, query, start, end).Scan(
		&stat.UniqueRequesters,
		&stat.TotalRequests,
		&stat.TotalAccesses,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate day: %w", err)
	}

	return stat, nil
}

func (r *AccessEventRepository) upsertDailyStat(ctx context.Context, stat *model.DailyStat) error {
	query := `
		INSERT INTO daily_access_stats (
			date, unique_requesters, total_requests, total_accesses, updated_at
		) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (date) DO UPDATE SET
			unique_requesters = EXCLUDED.unique_requesters,
			total_requests = EXCLUDED.total_requests,
			total_accesses = EXCLUDED.total_accesses,
			updated_at = NOW()
	`

	_, err := r.repo.pool.Exec(ctx, query,
		stat.Date,
		stat.UniqueRequesters,
		stat.TotalRequests,
		stat.TotalAccesses,
	)
	if err != nil {
		return fmt.Errorf("upsert stat: %w", err)
	}

	return nil
}

// CountUniqueIdentities returns the all-time count of distinct identities
// that requested access.
func (r *AccessEventRepository) CountUniqueIdentities(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT identity_hash)
		FROM access_events
		WHERE kind = 'requested'
	`

	var count int64
	if err := r.repo.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unique identities: %w", err)
	}

	return count, nil
}

// ListDailyStats returns up to limit daily stats, most recent first.
func (r *AccessEventRepository) ListDailyStats(ctx context.Context, limit int) ([]*model.DailyStat, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}

	query := `
		SELECT date, unique_requesters, total_requests, total_accesses
		FROM daily_access_stats
		ORDER BY date DESC
		LIMIT $1
	`

	rows, err := r.repo.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list daily stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.DailyStat
	for rows.Next() {
		stat := &model.DailyStat{}
		if err := rows.Scan(
			&stat.Date,
			&stat.UniqueRequesters,
			&stat.TotalRequests,
			&stat.TotalAccesses,
		); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily stats: %w", err)
	}

	return stats, nil
}
