package stores

import (
	"context"
	"time"
)

// RunStatus represents the status of an exploration run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run represents one exploration of a program
type Run struct {
	ID           string     `json:"id"`
	Program      string     `json:"program"`
	Strategy     string     `json:"strategy"`
	DistanceFile string     `json:"distance_file"`
	Status       RunStatus  `json:"status"`
	Outcome      string     `json:"outcome"` // exhausted, target_reached, step_limit
	Steps        int        `json:"steps"`
	TargetStep   *int       `json:"target_step,omitempty"`
	PeakFrontier int        `json:"peak_frontier"`
	Error        *string    `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TargetReached reports whether some state of the run reached the target.
func (r *Run) TargetReached() bool {
	return r.TargetStep != nil
}

// Step represents a single selection within a run
type Step struct {
	RunID         string   `json:"run_id"`
	Index         int      `json:"index"`
	StateID       uint64   `json:"state_id"`
	Location      int      `json:"location"`
	Priority      *float64 `json:"priority,omitempty"` // nil when the target is unreachable
	Forks         int      `json:"forks"`
	Terminated    int      `json:"terminated"`
	FrontierSize  int      `json:"frontier_size"`
	ReachedTarget bool     `json:"reached_target"`
}

// Store persists exploration runs and their selection history
type Store interface {
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	CompleteRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	AppendSteps(ctx context.Context, steps []*Step) error
	ListSteps(ctx context.Context, runID string, limit, offset int) ([]*Step, error)

	HealthCheck(ctx context.Context) error
}
