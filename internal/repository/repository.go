package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"compliance-platform/internal/domain"
)

type Repositories struct {
	User         UserRepository
	Department   DepartmentRepository
	Regulation   RegulationRepository
	Article      ArticleRepository
	Compliance   ComplianceRepository
	AuditLog     AuditLogRepository
	Notification NotificationRepository
	Evidence     EvidenceRepository
	Session      SessionRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Department:   NewDepartmentRepository(db),
		Regulation:   NewRegulationRepository(db),
		Article:      NewArticleRepository(db),
		Compliance:   NewComplianceRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Notification: NewNotificationRepository(db),
		Evidence:     NewEvidenceRepository(db),
		Session:      NewSessionRepository(db),
	}
}

const pqUniqueViolation = "23505"

// mapDBError translates driver errors into the shared taxonomy.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
	}
	return err
}

// inTx runs fn inside one transaction so a mutation and its audit row
// commit or roll back together.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapDBError(err)
	}

	return mapDBError(tx.Commit())
}

// insertAuditTx appends an audit row within the caller's transaction. Every
// state-changing repository method goes through here; there is no update or
// delete path for audit rows anywhere.
func insertAuditTx(ctx context.Context, tx *sqlx.Tx, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (id, user_id, action_type, entity_type, entity_id, details, old_value, new_value, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.ActionType, entry.EntityType, entry.EntityID,
		entry.Details, entry.OldValue, entry.NewValue, entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	return err
}
