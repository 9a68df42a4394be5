package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

type Service interface {
	List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
	// EntityTrail returns the full history of one entity in chronological
	// order.
	EntityTrail(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditLog, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditLog, error)
	ExportCSV(ctx context.Context, filter domain.AuditLogFilter, w io.Writer) error
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{auditRepo: auditRepo}
}

func (s *service) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()

	logs, total, err := s.auditRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}
	return domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total), nil
}

func (s *service) EntityTrail(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditLog, error) {
	if entityType == "" {
		return nil, fmt.Errorf("%w: entity type is required", domain.ErrValidation)
	}
	return s.auditRepo.ListByEntity(ctx, entityType, entityID)
}

func (s *service) Recent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return s.auditRepo.Recent(ctx, limit)
}

func (s *service) ExportCSV(ctx context.Context, filter domain.AuditLogFilter, w io.Writer) error {
	logs, err := s.auditRepo.ListForExport(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "user_id", "action", "entity_type", "entity_id", "details", "ip_address"}); err != nil {
		return err
	}

	for _, entry := range logs {
		userID := ""
		if entry.UserID != nil {
			userID = entry.UserID.String()
		}
		entityID := ""
		if entry.EntityID != nil {
			entityID = entry.EntityID.String()
		}
		ipAddress := ""
		if entry.IPAddress != nil {
			ipAddress = *entry.IPAddress
		}

		record := []string{
			entry.CreatedAt.Format(time.RFC3339),
			userID,
			string(entry.ActionType),
			entry.EntityType,
			entityID,
			entry.Details,
			ipAddress,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
