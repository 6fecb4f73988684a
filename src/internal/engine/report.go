package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// Entry is the record of one planned entity.
type Entry struct {
	Type     remote.EntityType
	Key      remote.Key
	State    State
	Outcome  Outcome
	Action   Action
	Err      error
	Started  time.Time
	Finished time.Time
}

// Report is the result of one Apply run. Entries are in plan order.
type Report struct {
	RunID       string
	Checksum    string
	Started     time.Time
	Finished    time.Time
	Entries     []*Entry
	Transitions []Transition

	mu           sync.Mutex
	seq          uint64
	clock        func() time.Time
	onTransition func(Transition)
}

func newReport(runID, checksum string, p *plan, clock func() time.Time, onTransition func(Transition)) *Report {
	r := &Report{
		RunID:        runID,
		Checksum:     checksum,
		Started:      clock(),
		Entries:      make([]*Entry, len(p.nodes)),
		clock:        clock,
		onTransition: onTransition,
	}
	for i, n := range p.nodes {
		r.Entries[i] = &Entry{
			Type:  n.entity.Type(),
			Key:   n.entity.Key(),
			State: StatePending,
		}
	}
	return r
}

// transition moves entry i to state to and records it.
func (r *Report) transition(i int, to State) {
	r.mu.Lock()
	e := r.Entries[i]
	now := r.clock()
	if e.Started.IsZero() {
		e.Started = now
	}
	r.seq++
	t := Transition{Seq: r.seq, Time: now, Type: e.Type, Key: e.Key, From: e.State, To: to}
	e.State = to
	if to.IsFinal() {
		e.Finished = now
	}
	r.Transitions = append(r.Transitions, t)
	callback := r.onTransition
	r.mu.Unlock()

	if callback != nil {
		callback(t)
	}
}

func (r *Report) applied(i int, action Action) {
	r.mu.Lock()
	r.Entries[i].Outcome = OutcomeApplied
	r.Entries[i].Action = action
	r.mu.Unlock()
	r.transition(i, StateApplied)
}

func (r *Report) failed(i int, err error) {
	r.mu.Lock()
	r.Entries[i].Outcome = OutcomeFailed
	r.Entries[i].Err = err
	r.mu.Unlock()
	r.transition(i, StateFailed)
}

func (r *Report) skipped(i int, err error) {
	r.mu.Lock()
	r.Entries[i].Outcome = OutcomeSkipped
	r.Entries[i].Err = err
	r.mu.Unlock()
	r.transition(i, StateSkipped)
}

func (r *Report) state(i int) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Entries[i].State
}

func (r *Report) finish() {
	r.mu.Lock()
	r.Finished = r.clock()
	r.mu.Unlock()
}

// Failed returns the entries whose upsert failed.
func (r *Report) Failed() []*Entry {
	return r.withOutcome(OutcomeFailed)
}

// Skipped returns the entries that were never attempted.
func (r *Report) Skipped() []*Entry {
	return r.withOutcome(OutcomeSkipped)
}

func (r *Report) withOutcome(o Outcome) []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Entry
	for _, e := range r.Entries {
		if e.Outcome == o {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of entries per outcome.
func (r *Report) Counts() map[Outcome]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[Outcome]int{OutcomeApplied: 0, OutcomeFailed: 0, OutcomeSkipped: 0}
	for _, e := range r.Entries {
		counts[e.Outcome]++
	}
	return counts
}

// Err returns nil when every entity applied, otherwise a REMOTE_ERROR
// summarizing the failures.
func (r *Report) Err() error {
	failed := r.Failed()
	skipped := r.Skipped()
	if len(failed) == 0 && len(skipped) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, e := range failed {
		sb.WriteString(fmt.Sprintf("\n  %s %s: %v", e.Type, e.Key, e.Err))
	}
	var cause error
	if sb.Len() > 0 {
		cause = fmt.Errorf("failures:%s", sb.String())
	}
	return apperrors.NewRemoteError(
		fmt.Sprintf("apply finished with %d failed and %d skipped entities", len(failed), len(skipped)),
		cause,
	)
}

// Write renders the report as a table.
func (r *Report) Write(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TYPE\tKEY\tOUTCOME\tACTION\tDETAIL\n")
	counts := make(map[Outcome]int)
	for _, e := range r.Entries {
		counts[e.Outcome]++
		detail := ""
		if e.Err != nil {
			detail = e.Err.Error()
		}
		action := string(e.Action)
		if action == "" {
			action = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Type, e.Key, e.Outcome, action, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nrun %s: %d applied, %d failed, %d skipped (%s)\n",
		r.RunID, counts[OutcomeApplied], counts[OutcomeFailed], counts[OutcomeSkipped],
		r.Finished.Sub(r.Started).Round(time.Millisecond))
	return err
}
