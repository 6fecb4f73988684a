package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/maksimkurb/apimanctl/src/internal/declaration"
	apperrors "github.com/maksimkurb/apimanctl/src/internal/errors"
	"github.com/maksimkurb/apimanctl/src/internal/log"
	"github.com/maksimkurb/apimanctl/src/internal/remote"
)

// Options tune an Engine.
type Options struct {
	// Workers bounds concurrent remote calls. Values <= 1 select the
	// sequential traversal.
	Workers int
	// Clock defaults to time.Now.
	Clock func() time.Time
	// OnTransition, if set, receives every state change as it happens.
	// It may be called from several goroutines.
	OnTransition func(Transition)
}

// Engine applies declarations through a fixed set of capabilities.
type Engine struct {
	caps remote.Capabilities
	opts Options
}

// New creates an engine. It fails if any entity type lacks a capability.
func New(caps remote.Capabilities, opts Options) (*Engine, error) {
	if missing := caps.Missing(); len(missing) > 0 {
		return nil, apperrors.NewInternalError("incomplete remote capabilities", fmt.Errorf("missing %v", missing))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	resolved := make(remote.Capabilities, len(caps))
	for t, c := range caps {
		resolved[t] = c
	}
	return &Engine{caps: resolved, opts: opts}, nil
}

// run carries the mutable state of one Apply call.
type run struct {
	report *Report

	mu   sync.Mutex
	halt error
}

// stop halts the run: calls in flight finish, nothing new starts.
func (rn *run) stop(err error) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	if rn.halt == nil {
		rn.halt = err
		log.Warnf("Halting run: %v", err)
	}
}

func (rn *run) haltReason(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.halt
}

// Apply reconciles the remote server with d and reports every entity.
func (e *Engine) Apply(ctx context.Context, d *declaration.Declaration) *Report {
	p := buildPlan(d)
	checksum := ""
	if d != nil {
		checksum = d.Checksum()
	}
	rn := &run{report: newReport(uuid.NewString(), checksum, p, e.opts.Clock, e.opts.OnTransition)}

	log.Infof("Applying %d entities (run %s, workers %d)", len(p.nodes), rn.report.RunID, max(e.opts.Workers, 1))

	if e.opts.Workers <= 1 {
		for _, n := range p.nodes {
			e.visit(ctx, n, rn)
			close(n.done)
		}
	} else {
		e.applyConcurrently(ctx, p, rn)
	}

	rn.report.finish()
	counts := rn.report.Counts()
	log.Infof("Run %s finished: %d applied, %d failed, %d skipped",
		rn.report.RunID, counts[OutcomeApplied], counts[OutcomeFailed], counts[OutcomeSkipped])
	return rn.report
}

// applyConcurrently starts one goroutine per node. A node waits for its
// predecessors without holding a worker slot.
func (e *Engine) applyConcurrently(ctx context.Context, p *plan, rn *run) {
	sem := semaphore.NewWeighted(int64(e.opts.Workers))
	var g errgroup.Group

	for _, n := range p.nodes {
		g.Go(func() error {
			defer close(n.done)
			for _, d := range n.deps {
				<-d.done
			}
			for _, a := range n.after {
				<-a.done
			}

			if dep := rn.failedDependency(n); dep != nil {
				rn.skipDependency(n, dep)
				return nil
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				rn.report.skipped(n.index, apperrors.NewDependencySkippedError("not started", &DependencySkippedError{Halted: true, Cause: err}))
				return nil
			}
			defer sem.Release(1)

			e.visit(ctx, n, rn)
			return nil
		})
	}

	_ = g.Wait()
}

func (rn *run) failedDependency(n *node) *node {
	for _, d := range n.deps {
		if rn.report.state(d.index) != StateApplied {
			return d
		}
	}
	return nil
}

func (rn *run) skipDependency(n, dep *node) {
	cause := &DependencySkippedError{DependencyType: dep.entity.Type(), DependencyKey: dep.entity.Key()}
	rn.report.skipped(n.index, apperrors.NewDependencySkippedError(
		fmt.Sprintf("%s %s skipped", n.entity.Type(), n.entity.Key()), cause))
	log.Debugf("Skipping %s %s: %v", n.entity.Type(), n.entity.Key(), cause)
}

// visit decides whether n can run and upserts it.
func (e *Engine) visit(ctx context.Context, n *node, rn *run) {
	if dep := rn.failedDependency(n); dep != nil {
		rn.skipDependency(n, dep)
		return
	}
	if reason := rn.haltReason(ctx); reason != nil {
		rn.report.skipped(n.index, apperrors.NewDependencySkippedError("not started", &DependencySkippedError{Halted: true, Cause: reason}))
		return
	}

	action, err := e.upsert(ctx, n, rn.report)
	if err != nil {
		rn.report.failed(n.index, err)
		log.Logger().Error().
			Str("type", string(n.entity.Type())).
			Str("key", n.entity.Key().String()).
			Err(err).
			Msg("upsert failed")
		if remote.IsUnrecoverable(err) {
			rn.stop(err)
		}
		return
	}

	rn.report.applied(n.index, action)
	log.Logger().Info().
		Str("type", string(n.entity.Type())).
		Str("key", n.entity.Key().String()).
		Str("action", string(action)).
		Msg("applied")
}

// upsert probes the entity and creates or updates it.
func (e *Engine) upsert(ctx context.Context, n *node, report *Report) (Action, error) {
	capability := e.caps[n.entity.Type()]
	key := n.entity.Key()

	exists, err := capability.Exists(ctx, key)
	if err != nil {
		return ActionNone, apperrors.NewRemoteError(fmt.Sprintf("failed to probe %s %s", n.entity.Type(), key), err)
	}
	report.transition(n.index, StateProbed)

	if n.confirmOnly {
		if !exists {
			return ActionNone, apperrors.NewRemoteError(
				fmt.Sprintf("%s %s is declared existing but was not found", n.entity.Type(), key), nil)
		}
		return ActionConfirmed, nil
	}

	if exists {
		report.transition(n.index, StateUpdating)
		if err := capability.Update(ctx, key, n.entity); err != nil {
			return ActionNone, apperrors.NewRemoteError(fmt.Sprintf("failed to update %s %s", n.entity.Type(), key), err)
		}
		return ActionUpdated, nil
	}

	report.transition(n.index, StateCreating)
	if err := capability.Create(ctx, n.entity); err != nil {
		return ActionNone, apperrors.NewRemoteError(fmt.Sprintf("failed to create %s %s", n.entity.Type(), key), err)
	}
	return ActionCreated, nil
}
