package usecase

import (
	"context"
	"time"

	"github.com/iho/loanledger/internal/domain"
)

// AuditUseCase records operation-level audit trail entries. Recording is
// best-effort from the caller's perspective: a failed audit write never fails
// the operation it describes.
type AuditUseCase struct {
	auditRepo AuditRepository
	idGen     IDGenerator
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(auditRepo AuditRepository, idGen IDGenerator) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo, idGen: idGen}
}

// RecordAuditInput describes one mutating operation.
type RecordAuditInput struct {
	Actor        string
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  map[string]any
	AfterState   map[string]any
	Err          error
}

// Record persists one audit entry. The entry's status reflects whether the
// recorded operation succeeded.
func (uc *AuditUseCase) Record(ctx context.Context, input RecordAuditInput) error {
	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        input.Actor,
		Action:       string(input.Action),
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		RequestID:    input.RequestID,
		BeforeState:  input.BeforeState,
		AfterState:   input.AfterState,
		Status:       "success",
		CreatedAt:    time.Now().UTC(),
	}

	if input.Err != nil {
		log.Status = "failed"
		log.ErrorMessage = input.Err.Error()
	}

	return uc.auditRepo.Create(ctx, log)
}

// History lists the audit trail for one resource, newest first.
func (uc *AuditUseCase) History(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return uc.auditRepo.GetByResourceID(ctx, resourceType, resourceID)
}
