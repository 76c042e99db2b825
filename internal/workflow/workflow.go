// Package workflow implements a gated sequential state machine. Gates are
// typed functions composed with Then, so a later gate's input is the prior
// gate's pass-output: running a gate without its predecessor passing is a
// compile error, not a runtime possibility.
package workflow

import (
	"context"
	"fmt"

	"github.com/hollis/supportdesk/internal/domain"
)

// GateStatus is the state of one gate within a run.
type GateStatus string

const (
	GatePending GateStatus = "pending"
	GatePassed  GateStatus = "passed"
	GateFailed  GateStatus = "failed"
)

// RunStatus is the overall state of a workflow run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// GateResult records the outcome of one gate.
type GateResult struct {
	Name   string     `json:"name"`
	Status GateStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Run is one execution of a gated sequence. Gates that never executed
// because an earlier gate failed remain pending.
type Run struct {
	WorkflowID string       `json:"workflow_id"`
	Gates      []GateResult `json:"gates"`
	Status     RunStatus    `json:"status"`
	FailedGate int          `json:"failed_gate"` // index into Gates, -1 when none

	cursor int
}

// Err returns the run's terminal failure as a GateFailed error, or nil.
func (r *Run) Err() error {
	if r.Status != RunFailed {
		return nil
	}
	g := r.Gates[r.FailedGate]
	return fmt.Errorf("%w: %s: %s", domain.ErrGateFailed, g.Name, g.Detail)
}

func (r *Run) pass(detail string) {
	g := &r.Gates[r.cursor]
	g.Status = GatePassed
	g.Detail = detail
	r.cursor++
}

func (r *Run) fail(detail string) {
	g := &r.Gates[r.cursor]
	g.Status = GateFailed
	g.Detail = detail
	r.FailedGate = r.cursor
	r.Status = RunFailed
}

// Step is a typed stage, or chain of stages, of a gated sequence.
type Step[In, Out any] struct {
	names []string
	exec  func(ctx context.Context, run *Run, in In) (Out, bool)
}

// Outcome is what a gate function reports: an enriched context on pass,
// or a human-readable reason on fail.
type Outcome[Out any] struct {
	out    Out
	detail string
	failed bool
}

// Pass reports success, handing the enriched context to the next gate.
func Pass[Out any](out Out, detail string) Outcome[Out] {
	return Outcome[Out]{out: out, detail: detail}
}

// Fail reports a business-rule failure, terminal for the run.
func Fail[Out any](reason string) Outcome[Out] {
	return Outcome[Out]{detail: reason, failed: true}
}

// Gate wraps a single gate function into a runnable step.
func Gate[In, Out any](name string, fn func(context.Context, In) Outcome[Out]) Step[In, Out] {
	return Step[In, Out]{
		names: []string{name},
		exec: func(ctx context.Context, run *Run, in In) (Out, bool) {
			o := fn(ctx, in)
			if o.failed {
				run.fail(o.detail)
				var zero Out
				return zero, false
			}
			run.pass(o.detail)
			return o.out, true
		},
	}
}

// Then chains two steps. The second step only ever executes with the
// first step's pass-output.
func Then[A, B, C any](first Step[A, B], next Step[B, C]) Step[A, C] {
	return Step[A, C]{
		names: append(append([]string{}, first.names...), next.names...),
		exec: func(ctx context.Context, run *Run, in A) (C, bool) {
			mid, ok := first.exec(ctx, run, in)
			if !ok {
				var zero C
				return zero, false
			}
			return next.exec(ctx, run, mid)
		},
	}
}

// Execute runs a step chain from the initial input and returns the final
// output (zero-valued when the run failed) along with the full run record.
func Execute[In, Out any](ctx context.Context, workflowID string, step Step[In, Out], in In) (Out, *Run) {
	run := &Run{
		WorkflowID: workflowID,
		Gates:      make([]GateResult, len(step.names)),
		Status:     RunRunning,
		FailedGate: -1,
	}
	for i, name := range step.names {
		run.Gates[i] = GateResult{Name: name, Status: GatePending}
	}

	out, ok := step.exec(ctx, run, in)
	if ok {
		run.Status = RunSucceeded
	}
	return out, run
}
