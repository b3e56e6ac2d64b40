package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/loanledger/internal/domain"
)

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	var beforeStateJSON, afterStateJSON []byte
	var err error

	if log.BeforeState != nil {
		beforeStateJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return err
		}
	}

	if log.AfterState != nil {
		afterStateJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_logs (
			id, actor, action, resource_type, resource_id, request_id,
			before_state, after_state, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		log.ID,
		log.Actor,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		beforeStateJSON,
		afterStateJSON,
		log.Status,
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// GetByResourceID retrieves all audit logs for a specific resource, newest
// first.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, actor, action, resource_type, resource_id, request_id,
		       before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log                             domain.AuditLog
			beforeStateJSON, afterStateJSON []byte
			createdAt                       pgtype.Timestamptz
		)

		err := rows.Scan(
			&log.ID,
			&log.Actor,
			&log.Action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&beforeStateJSON,
			&afterStateJSON,
			&log.Status,
			&log.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if beforeStateJSON != nil {
			_ = json.Unmarshal(beforeStateJSON, &log.BeforeState)
		}
		if afterStateJSON != nil {
			_ = json.Unmarshal(afterStateJSON, &log.AfterState)
		}
		log.CreatedAt = createdAt.Time

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
