package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Client holds the Kafka broker list. An empty list disables publishing,
// which keeps local development broker-free.
type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Relay drains the outbox into Kafka on a fixed interval. A record is marked
// sent only after the write is acknowledged; a crash between publish and
// mark yields a duplicate, never a loss (at-least-once).
type Relay struct {
	outbox   *Outbox
	writer   *kafka.Writer
	interval time.Duration
	batch    int
}

func NewRelay(outbox *Outbox, writer *kafka.Writer, interval time.Duration) *Relay {
	return &Relay{outbox: outbox, writer: writer, interval: interval, batch: 100}
}

// Run blocks until ctx is cancelled, then closes the writer.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer func() { _ = r.writer.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	records, err := r.outbox.FetchPending(ctx, r.batch)
	if err != nil {
		slog.ErrorContext(ctx, "outbox fetch failed", "error", err)
		return
	}
	for _, rec := range records {
		msg := kafka.Message{
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Time:  rec.CreatedAt,
		}
		if err := r.writer.WriteMessages(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "outbox publish failed", "event_id", rec.EventID, "error", err)
			return // retry the whole tail next tick, preserving order
		}
		if err := r.outbox.MarkSent(ctx, rec.ID); err != nil {
			slog.ErrorContext(ctx, "outbox mark-sent failed", "event_id", rec.EventID, "error", err)
			return
		}
	}
}
