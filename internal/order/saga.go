package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/ecommerce-api/internal/order/placementlog"
)

// Step is a single unit of work in a placement. Each step must have a
// compensating action that undoes its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs the placement steps sequentially, recording every
// transition in the placement log. If a step fails, the previously
// successful steps are compensated in LIFO order.
type Orchestrator struct {
	placementID string
	steps       []Step
	log         placementlog.Recorder // nil disables the audit trail
}

func NewOrchestrator(placementID string, steps []Step, log placementlog.Recorder) *Orchestrator {
	return &Orchestrator{placementID: placementID, steps: steps, log: log}
}

// Start executes the steps. On failure it compensates and returns the error
// of the failed step; compensation errors are logged, never returned.
func (o *Orchestrator) Start(ctx context.Context, payload string) error {
	o.record(ctx, placementlog.StatusStarted, "", payload, nil)

	var done []Step
	for _, step := range o.steps {
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "placement step failed",
				"placement_id", o.placementID, "step", step.Name(), "error", err)
			o.record(ctx, placementlog.StatusCompensating, step.Name(), "", []string{err.Error()})
			compErrs := o.rollback(ctx, done)
			o.record(ctx, placementlog.StatusFailed, step.Name(), "", append([]string{err.Error()}, compErrs...))
			return err
		}
		done = append(done, step)
		o.record(ctx, placementlog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, placementlog.StatusCompleted, "", "", nil)
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			// Nothing left to do but record it: compensation failures need
			// an operator, not a retry loop inside the request.
			slog.ErrorContext(ctx, "CRITICAL: compensation failed",
				"placement_id", o.placementID, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status placementlog.Status, step, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := placementlog.NewEntry(ctx, o.placementID, status, step, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "placement log write failed",
			"placement_id", o.placementID, "status", status, "error", err)
	}
}
