package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schema creates the tables PostgresStore needs. Applied by deployments'
// migration tooling and by integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	topic TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	relayed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS ledger_events (
	id UUID PRIMARY KEY,
	topic TEXT NOT NULL,
	from_address TEXT NOT NULL DEFAULT '',
	to_address TEXT NOT NULL DEFAULT '',
	amount BIGINT NOT NULL DEFAULT 0,
	height BIGINT NOT NULL DEFAULT 0,
	timestamp TIMESTAMPTZ NOT NULL
);
`

// PostgresStore implements Store using the transactional outbox pattern.
// Events land in the outbox table and the relay worker publishes them to
// Kafka; the ledger_events table is the queryable materialization.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// outboxPayload is the JSON structure relayed to Kafka. Field names match
// Event so consumers can decode without a separate schema.
type outboxPayload struct {
	ID        string `json:"ID"`
	Topic     string `json:"Topic"`
	From      string `json:"From,omitempty"`
	To        string `json:"To,omitempty"`
	Amount    int64  `json:"Amount,omitempty"`
	Height    uint32 `json:"Height"`
	Timestamp string `json:"Timestamp"`
}

// Append writes the event to both the outbox and the materialized table.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:        eventID.String(),
		Topic:     string(event.Topic),
		From:      event.From,
		To:        event.To,
		Amount:    event.Amount,
		Height:    event.Height,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, topic, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, eventID, string(event.Topic), payloadBytes, time.Now()); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	query = `
		INSERT INTO ledger_events (id, topic, from_address, to_address, amount, height, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query,
		eventID, string(event.Topic), event.From, event.To, event.Amount, int64(event.Height), event.Timestamp,
	); err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

// ListByTopic returns materialized events for a topic, oldest first.
func (s *PostgresStore) ListByTopic(ctx context.Context, topic Topic) ([]Event, error) {
	query := `
		SELECT topic, from_address, to_address, amount, height, timestamp
		FROM ledger_events
		WHERE topic = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(topic))
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// PendingOutbox returns up to limit unrelayed outbox rows, oldest first.
func (s *PostgresStore) PendingOutbox(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, topic, payload
		FROM outbox
		WHERE relayed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		if err := rows.Scan(&entry.ID, &entry.Topic, &entry.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkRelayed stamps an outbox row after its broker publish succeeded.
func (s *PostgresStore) MarkRelayed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE outbox SET relayed_at = $1 WHERE id = $2`
	if _, err := s.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("mark outbox entry relayed: %w", err)
	}
	return nil
}

// OutboxEntry is one unrelayed outbox row.
type OutboxEntry struct {
	ID      uuid.UUID
	Topic   string
	Payload []byte
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event  Event
			topic  string
			height int64
		)
		if err := rows.Scan(&topic, &event.From, &event.To, &event.Amount, &height, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		event.Topic = Topic(topic)
		event.Height = uint32(height)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}
