package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mailgate/mailgate/internal/model"
	"github.com/mailgate/mailgate/internal/testutil"
)

func setupAccessRepo(t *testing.T) (context.Context, *AccessEventRepository, *Repository) {
	t.Helper()

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetAccessSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset access schema: %v", err)
	}

	return ctx, NewAccessEventRepository(repo), repo
}

func TestAccessEventRepository_BulkInsertIdempotent(t *testing.T) {
	ctx, eventRepo, repo := setupAccessRepo(t)

	event := testutil.NewTestAccessEvent(t, model.EventRequested)

	if err := eventRepo.BulkInsert(ctx, []*model.AccessEvent{event}); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}

	// Re-delivery of the same stream message must not duplicate the row.
	duplicate := *event
	duplicate.ID = testutil.UniqueID("evt")
	if err := eventRepo.BulkInsert(ctx, []*model.AccessEvent{&duplicate}); err != nil {
		t.Fatalf("BulkInsert duplicate failed: %v", err)
	}

	var count int64
	err := repo.Pool().QueryRow(ctx,
		"SELECT COUNT(*) FROM access_events WHERE event_id = $1", event.EventID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Rows for event_id = %d, want 1", count)
	}
}

func TestAccessEventRepository_DailyStats(t *testing.T) {
	ctx, eventRepo, _ := setupAccessRepo(t)

	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	alice := testutil.TestIdentityHash("alice@corp.example")
	bob := testutil.TestIdentityHash("bob@corp.example")

	events := []*model.AccessEvent{
		testutil.NewTestAccessEventAt(t, model.EventRequested, day),
		testutil.NewTestAccessEventAt(t, model.EventRequested, day.Add(time.Hour)),
		testutil.NewTestAccessEventAt(t, model.EventRequested, day.Add(2*time.Hour)),
		testutil.NewTestAccessEventAt(t, model.EventAccessed, day.Add(3*time.Hour)),
	}
	events[0].IdentityHash = alice
	events[1].IdentityHash = alice
	events[2].IdentityHash = bob
	events[3].IdentityHash = alice
	for _, event := range events {
		event.ID = testutil.UniqueID("evt")
		event.EventID = testutil.UniqueID("stream")
	}

	if err := eventRepo.BulkInsert(ctx, events); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}
	if err := eventRepo.UpdateDailyStats(ctx, events); err != nil {
		t.Fatalf("UpdateDailyStats failed: %v", err)
	}

	stats, err := eventRepo.ListDailyStats(ctx, 10)
	if err != nil {
		t.Fatalf("ListDailyStats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Daily stats rows = %d, want 1", len(stats))
	}

	stat := stats[0]
	if stat.UniqueRequesters != 2 {
		t.Errorf("UniqueRequesters = %d, want 2", stat.UniqueRequesters)
	}
	if stat.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", stat.TotalRequests)
	}
	if stat.TotalAccesses != 1 {
		t.Errorf("TotalAccesses = %d, want 1", stat.TotalAccesses)
	}

	unique, err := eventRepo.CountUniqueIdentities(ctx)
	if err != nil {
		t.Fatalf("CountUniqueIdentities failed: %v", err)
	}
	if unique != 2 {
		t.Errorf("CountUniqueIdentities = %d, want 2", unique)
	}
}

func TestAccessEventRepository_StatsRecalculation(t *testing.T) {
	ctx, eventRepo, _ := setupAccessRepo(t)

	day := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	first := testutil.NewTestAccessEventAt(t, model.EventRequested, day)
	first.ID = testutil.UniqueID("evt")
	first.EventID = testutil.UniqueID("stream")

	if err := eventRepo.BulkInsert(ctx, []*model.AccessEvent{first}); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}
	if err := eventRepo.UpdateDailyStats(ctx, []*model.AccessEvent{first}); err != nil {
		t.Fatalf("UpdateDailyStats failed: %v", err)
	}

	// A second batch for the same day replaces, not doubles, the aggregate.
	second := testutil.NewTestAccessEventAt(t, model.EventRequested, day.Add(time.Hour))
	second.ID = testutil.UniqueID("evt")
	second.EventID = testutil.UniqueID("stream")

	if err := eventRepo.BulkInsert(ctx, []*model.AccessEvent{second}); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}
	if err := eventRepo.UpdateDailyStats(ctx, []*model.AccessEvent{second}); err != nil {
		t.Fatalf("UpdateDailyStats failed: %v", err)
	}

	stats, err := eventRepo.ListDailyStats(ctx, 10)
	if err != nil {
		t.Fatalf("ListDailyStats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Daily stats rows = %d, want 1", len(stats))
	}
	if stats[0].TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", stats[0].TotalRequests)
	}
}
