// Package worker relays outbox rows to the broker. The relay is at-least-once:
// a row is marked relayed only after the publish succeeded, so a crash between
// the two can produce duplicates but never losses.
package worker

import (
	"context"
	"log/slog"
	"time"

	"colonx/internal/events"

	"github.com/google/uuid"
)

// Outbox is the slice of the postgres store the relay needs.
type Outbox interface {
	PendingOutbox(ctx context.Context, limit int) ([]events.OutboxEntry, error)
	MarkRelayed(ctx context.Context, id uuid.UUID) error
}

// Broker is the publish side of the Kafka sink.
type Broker interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Relay polls the outbox and pushes pending entries to the broker.
type Relay struct {
	outbox   Outbox
	broker   Broker
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

func NewRelay(outbox Outbox, broker Broker, logger *slog.Logger, interval time.Duration, batch int) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{outbox: outbox, broker: broker, logger: logger, interval: interval, batch: batch}
}

// Run polls until the context is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RelayOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox relay pass failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch of pending entries.
func (r *Relay) RelayOnce(ctx context.Context) error {
	entries, err := r.outbox.PendingOutbox(ctx, r.batch)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := r.broker.Publish(ctx, entry.Topic, entry.Payload); err != nil {
			// Leave the row pending; the next pass retries it.
			r.logger.WarnContext(ctx, "publish failed, leaving outbox entry pending",
				"entry_id", entry.ID,
				"topic", entry.Topic,
				"error", err,
			)
			return err
		}
		if err := r.outbox.MarkRelayed(ctx, entry.ID); err != nil {
			return err
		}
	}
	return nil
}
