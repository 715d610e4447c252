package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
)

// Outbox reads and writes the outbox table.
type Outbox struct {
	db *sql.DB
}

func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

// Record is one undelivered (or delivered) outbox row.
type Record struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// InsertTx appends an event inside the caller's transaction. This is the
// whole point of the outbox: the event commits or rolls back with the
// business write.
func InsertTx(ctx context.Context, tx *sql.Tx, topic, key string, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("outbox: marshal event %s: %w", env.EventID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox (event_id, topic, key, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		env.EventID, topic, key, string(payload), sqlite.FormatTime(env.OccurredAt))
	if err != nil {
		return fmt.Errorf("outbox: insert event %s: %w", env.EventID, err)
	}
	return nil
}

// FetchPending returns up to limit unsent records, oldest first.
func (o *Outbox) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT id, event_id, topic, key, payload, created_at
		FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: fetch pending: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			payload   string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &payload, &createdAt); err != nil {
			return nil, err
		}
		rec.Payload = json.RawMessage(payload)
		if rec.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkSent stamps a record as delivered.
func (o *Outbox) MarkSent(ctx context.Context, id int64) error {
	_, err := o.db.ExecContext(ctx,
		"UPDATE outbox SET sent_at = ? WHERE id = ?",
		sqlite.FormatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("outbox: mark sent %d: %w", id, err)
	}
	return nil
}
