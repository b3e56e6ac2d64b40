package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository. Events are written in
// the same transaction as the state change they describe and drained by the
// background publisher.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Create creates a new outbox event within a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	pgxTx := tx.(*Tx).PgxTx()

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, created_at, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = pgxTx.Exec(ctx, query,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		timeToPgTimestamptz(event.CreatedAt),
		event.Published,
	)

	return err
}

// GetUnpublished retrieves unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at, published
		FROM outbox_events
		WHERE published = false
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var (
			e           domain.OutboxEvent
			payload     []byte
			createdAt   pgtype.Timestamptz
			publishedAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&e.ID,
			&e.AggregateID,
			&e.AggregateType,
			&e.EventType,
			&payload,
			&createdAt,
			&publishedAt,
			&e.Published,
		)
		if err != nil {
			return nil, err
		}

		if payload != nil {
			_ = json.Unmarshal(payload, &e.Payload)
		}
		e.CreatedAt = createdAt.Time
		e.PublishedAt = pgTimestamptzToPtr(publishedAt)

		events = append(events, &e)
	}

	return events, rows.Err()
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	query := `UPDATE outbox_events SET published = true, published_at = $2 WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, timeToPgTimestamptz(publishedAt))

	return err
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	query := `DELETE FROM outbox_events WHERE published = true AND published_at < $1`

	_, err := r.pool.Exec(ctx, query, timeToPgTimestamptz(before))

	return err
}
