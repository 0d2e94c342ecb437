package stores_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kleereach/reachsched/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path: ":memory:", // Use in-memory database for example
	})
	if err != nil {
		log.Fatal(err)
	}

	// Initialize the database connection
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_AppendSteps demonstrates recording the selection history
// of a run.
func ExampleSQLiteStore_AppendSteps() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	run := &stores.Run{
		ID:        "run-001",
		Program:   "diamond.yaml",
		Strategy:  "astar",
		Status:    stores.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := store.CreateRun(ctx, run); err != nil {
		log.Fatal(err)
	}

	prio := 3.0
	err := store.AppendSteps(ctx, []*stores.Step{
		{RunID: run.ID, Index: 0, StateID: 0, Location: 1, Priority: &prio, Forks: 1, FrontierSize: 2},
		{RunID: run.ID, Index: 1, StateID: 1, Location: 4, Terminated: 1, FrontierSize: 1},
	})
	if err != nil {
		log.Fatal(err)
	}

	steps, _ := store.ListSteps(ctx, run.ID, 10, 0)
	for _, s := range steps {
		fmt.Printf("step %d: state %d at l%d\n", s.Index, s.StateID, s.Location)
	}
	// Output:
	// step 0: state 0 at l1
	// step 1: state 1 at l4
}
