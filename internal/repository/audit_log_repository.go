package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"compliance-platform/internal/domain"
)

// AuditLogRepository is append-only on the write side. Entries tied to a
// primary mutation are written through the owning repository's transaction
// (see insertAuditTx); Create exists for standalone events such as logins.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditLog, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditLog, error)
	// ListForExport streams every matching entry without pagination,
	// oldest first.
	ListForExport(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return insertAuditTx(ctx, tx, entry)
	})
}

func buildAuditFilter(filter domain.AuditLogFilter) (string, []interface{}) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	n := 1
	if filter.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", n)
		args = append(args, *filter.UserID)
		n++
	}
	if filter.ActionType != nil {
		where += fmt.Sprintf(" AND action_type = $%d", n)
		args = append(args, *filter.ActionType)
		n++
	}
	if filter.EntityType != nil {
		where += fmt.Sprintf(" AND entity_type = $%d", n)
		args = append(args, *filter.EntityType)
		n++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *filter.From)
		n++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at < $%d", n)
		args = append(args, *filter.To)
		n++
	}
	return where, args
}

func (r *auditLogRepository) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	where, args := buildAuditFilter(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM audit_logs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	var logs []domain.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, total, err
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	query := `SELECT * FROM audit_logs WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &logs, query, entityType, entityID)
	return logs, err
}

func (r *auditLogRepository) Recent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 || limit > domain.MaxPageSize {
		limit = domain.DefaultPageSize
	}

	var logs []domain.AuditLog
	query := `SELECT * FROM audit_logs ORDER BY created_at DESC LIMIT $1`
	err := r.db.SelectContext(ctx, &logs, query, limit)
	return logs, err
}

func (r *auditLogRepository) ListForExport(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	where, args := buildAuditFilter(filter)

	var logs []domain.AuditLog
	query := `SELECT * FROM audit_logs` + where + ` ORDER BY created_at`
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, err
}
