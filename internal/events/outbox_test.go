package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

func TestOutboxRoundTrip(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	ob := NewOutbox(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	env := Envelope{
		EventID:    "ev-1",
		Type:       EventOrderPlaced,
		OrderID:    "o-1",
		UserID:     "u-1",
		OccurredAt: time.Now(),
	}
	if err := InsertTx(ctx, tx, TopicOrders, env.OrderID, env); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	pending, err := ob.FetchPending(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending record, got %d", len(pending))
	}
	var got Envelope
	if err := json.Unmarshal(pending[0].Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Type != EventOrderPlaced || got.OrderID != "o-1" {
		t.Fatalf("unexpected payload: %+v", got)
	}

	if err := ob.MarkSent(ctx, pending[0].ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	pending, _ = ob.FetchPending(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected no pending records after mark-sent, got %d", len(pending))
	}
}

func TestOutboxRollbackDiscardsEvent(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	tx, _ := db.BeginTx(ctx, nil)
	env := Envelope{EventID: "ev-2", Type: EventOrderPlaced, OrderID: "o-2", OccurredAt: time.Now()}
	if err := InsertTx(ctx, tx, TopicOrders, env.OrderID, env); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = tx.Rollback()

	pending, err := NewOutbox(db).FetchPending(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("rolled-back event must not surface, got %d records", len(pending))
	}
}

func TestClientEnabledGate(t *testing.T) {
	if NewClient("").Enabled() {
		t.Fatalf("empty broker list must disable the client")
	}
	c := NewClient(" localhost:9092 , localhost:9093 ")
	if !c.Enabled() || len(c.Brokers) != 2 {
		t.Fatalf("unexpected brokers: %v", c.Brokers)
	}
}
