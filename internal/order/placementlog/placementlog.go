// Package placementlog records the durable audit trail of order placements.
//
// Every state transition of a placement is appended as an immutable row,
// carrying the OTel trace and span ids that were active when it happened, so
// a stuck or compensated placement can be joined with its distributed trace.
package placementlog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Status is the lifecycle state of a placement at the time of the entry.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single append-only row. PlacementID is the order id, so the
// trail joins directly with business data.
type Entry struct {
	PlacementID   string
	Status        Status
	CurrentStep   string
	Payload       string // JSON request that started the placement; set once on STARTED
	ErrorMessages string // JSON array of failure details
	TraceID       string
	SpanID        string
	UpdatedAt     time.Time
}

// Recorder is the port for persisting entries. The orchestrator treats a
// nil Recorder as "audit trail disabled".
type Recorder interface {
	Save(ctx context.Context, e *Entry) error
}

// NewEntry builds an Entry with trace identifiers pulled from the active
// span in ctx. Without an active span (unit tests) both ids are empty.
func NewEntry(ctx context.Context, placementID string, status Status, step, payload string, errs []string) *Entry {
	sc := trace.SpanFromContext(ctx).SpanContext()

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	e := &Entry{
		PlacementID:   placementID,
		Status:        status,
		CurrentStep:   step,
		Payload:       payload,
		ErrorMessages: errJSON,
		UpdatedAt:     time.Now().UTC(),
	}
	if sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
