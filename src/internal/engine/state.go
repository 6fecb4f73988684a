package engine

import (
	"fmt"
	"time"

	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// State is the lifecycle position of one entity during a run.
type State string

const (
	StatePending  State = "pending"
	StateProbed   State = "probed"
	StateCreating State = "creating"
	StateUpdating State = "updating"
	StateApplied  State = "applied"
	StateFailed   State = "failed"
	StateSkipped  State = "skipped_dependency_failed"
)

// IsFinal reports whether no further transition can follow s.
func (s State) IsFinal() bool {
	return s == StateApplied || s == StateFailed || s == StateSkipped
}

// Outcome is the final result of one entity.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Action tells what an applied entity required.
type Action string

const (
	ActionNone      Action = ""
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionConfirmed Action = "confirmed"
)

// Transition is one recorded state change.
type Transition struct {
	Seq  uint64
	Time time.Time
	Type remote.EntityType
	Key  remote.Key
	From State
	To   State
}

// DependencySkippedError explains why an entity was not attempted: either a
// dependency did not apply, or the run was halted before it started.
type DependencySkippedError struct {
	DependencyType remote.EntityType
	DependencyKey  remote.Key
	// Halted is set when the run stopped; Cause holds the reason.
	Halted bool
	Cause  error
}

func (e *DependencySkippedError) Error() string {
	if e.Halted {
		if e.Cause != nil {
			return fmt.Sprintf("not started: run halted: %v", e.Cause)
		}
		return "not started: run halted"
	}
	return fmt.Sprintf("dependency %s %s did not apply", e.DependencyType, e.DependencyKey)
}

func (e *DependencySkippedError) Unwrap() error {
	return e.Cause
}
