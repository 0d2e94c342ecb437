package stores

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRun(id string, started time.Time) *Run {
	return &Run{
		ID:        id,
		Program:   "loop.yaml",
		Strategy:  "astar2",
		Status:    RunStatusRunning,
		StartedAt: started,
	}
}

func floatPtr(v float64) *float64 { return &v }

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.HealthCheck(ctx); err == nil {
		t.Error("expected health check to fail before Init")
	}

	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, table := range []string{"runs", "steps"} {
		var count int
		err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}

	// A second migration is a no-op.
	if err := store.Migrate(ctx); err != nil {
		t.Errorf("repeated migration failed: %v", err)
	}
}

func TestMigrateBeforeInit(t *testing.T) {
	store, err := NewSQLiteStore(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Migrate(context.Background()); err == nil {
		t.Fatal("expected error when migrating before Init")
	}
}

// TestRunCRUD tests Run CRUD operations
func TestRunCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	// Create
	run := newRun("run-001", now)
	run.DistanceFile = "loop.dist"
	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	// Read
	retrieved, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if retrieved.Program != run.Program || retrieved.Strategy != run.Strategy {
		t.Errorf("expected %s/%s, got %s/%s", run.Program, run.Strategy, retrieved.Program, retrieved.Strategy)
	}
	if retrieved.DistanceFile != "loop.dist" {
		t.Errorf("expected distance file loop.dist, got %s", retrieved.DistanceFile)
	}
	if retrieved.Status != RunStatusRunning {
		t.Errorf("expected Status %s, got %s", RunStatusRunning, retrieved.Status)
	}
	if !retrieved.StartedAt.Equal(now) {
		t.Errorf("expected StartedAt %v, got %v", now, retrieved.StartedAt)
	}
	if retrieved.TargetReached() || retrieved.CompletedAt != nil {
		t.Error("fresh run should have no target step or completion time")
	}

	// Complete
	target := 12
	run.Status = RunStatusCompleted
	run.Outcome = "target_reached"
	run.Steps = 12
	run.TargetStep = &target
	run.PeakFrontier = 5
	if err := store.CompleteRun(ctx, run); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	updated, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get updated run: %v", err)
	}
	if updated.Status != RunStatusCompleted || updated.Outcome != "target_reached" {
		t.Errorf("unexpected status %s/%s", updated.Status, updated.Outcome)
	}
	if !updated.TargetReached() || *updated.TargetStep != 12 {
		t.Errorf("expected target step 12, got %v", updated.TargetStep)
	}
	if updated.Steps != 12 || updated.PeakFrontier != 5 {
		t.Errorf("unexpected summary: steps=%d peak=%d", updated.Steps, updated.PeakFrontier)
	}
	if updated.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	// Delete
	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}

	_, err = store.GetRun(ctx, run.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted run, got %v", err)
	}
}

func TestRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"get", func() error { _, err := store.GetRun(ctx, "missing"); return err }},
		{"complete", func() error { return store.CompleteRun(ctx, &Run{ID: "missing"}) }},
		{"delete", func() error { return store.DeleteRun(ctx, "missing") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		run := newRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := store.CreateRun(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-4" || runs[1].ID != "run-3" {
		t.Fatalf("expected newest runs first, got %v", runIDs(runs))
	}

	runs, err = store.ListRuns(ctx, 10, 3)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-1" {
		t.Errorf("unexpected second page: %v", runIDs(runs))
	}
}

func runIDs(runs []*Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

func TestSteps(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := newRun("run-steps", time.Now().UTC())
	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	steps := []*Step{
		{RunID: run.ID, Index: 0, StateID: 0, Location: 1, Priority: floatPtr(4), Forks: 1, FrontierSize: 2},
		{RunID: run.ID, Index: 1, StateID: 1, Location: 3, Priority: nil, Terminated: 1, FrontierSize: 1},
		{RunID: run.ID, Index: 2, StateID: 0, Location: 9, Priority: floatPtr(0.5), FrontierSize: 0, ReachedTarget: true},
	}
	if err := store.AppendSteps(ctx, steps); err != nil {
		t.Fatalf("failed to append steps: %v", err)
	}
	if err := store.AppendSteps(ctx, nil); err != nil {
		t.Fatalf("empty append failed: %v", err)
	}

	got, err := store.ListSteps(ctx, run.ID, 100, 0)
	if err != nil {
		t.Fatalf("failed to list steps: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(got))
	}
	if got[0].Priority == nil || *got[0].Priority != 4 || got[0].Forks != 1 {
		t.Errorf("unexpected first step: %+v", got[0])
	}
	if got[1].Priority != nil || got[1].Terminated != 1 {
		t.Errorf("unreachable step should have no priority: %+v", got[1])
	}
	if !got[2].ReachedTarget || got[2].Location != 9 {
		t.Errorf("unexpected last step: %+v", got[2])
	}

	// Duplicate indexes abort the whole batch.
	dup := []*Step{
		{RunID: run.ID, Index: 3, FrontierSize: 1},
		{RunID: run.ID, Index: 0, FrontierSize: 1},
	}
	if err := store.AppendSteps(ctx, dup); err == nil {
		t.Fatal("expected error for duplicate step index")
	}
	got, _ = store.ListSteps(ctx, run.ID, 100, 0)
	if len(got) != 3 {
		t.Errorf("failed batch left %d steps, want 3", len(got))
	}

	// Steps of an unknown run violate the foreign key.
	if err := store.AppendSteps(ctx, []*Step{{RunID: "nope", Index: 0}}); err == nil {
		t.Error("expected foreign key violation")
	}

	// Deleting the run cascades to its steps.
	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	got, err = store.ListSteps(ctx, run.ID, 100, 0)
	if err != nil {
		t.Fatalf("failed to list steps: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected steps to be deleted with their run, got %d", len(got))
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	open := func() *SQLiteStore {
		store, err := NewSQLiteStore(Config{Path: path})
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		if err := store.Init(ctx); err != nil {
			t.Fatalf("failed to initialize store: %v", err)
		}
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to migrate store: %v", err)
		}
		return store
	}

	store := open()
	if err := store.CreateRun(ctx, newRun("persisted", time.Now().UTC())); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	store = open()
	defer store.Close()
	if _, err := store.GetRun(ctx, "persisted"); err != nil {
		t.Errorf("run did not survive reopening: %v", err)
	}
}
