package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"compliance-platform/internal/domain"
)

type ComplianceRepository interface {
	// Upsert records or revises a department's verdict for an article. The
	// (article_id, department_id) unique constraint guarantees at most one
	// row per pair; revisions update in place. The audit entry commits in
	// the same transaction.
	Upsert(ctx context.Context, cs *domain.ComplianceStatus, entry *domain.AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceStatus, error)
	GetByArticleAndDepartment(ctx context.Context, articleID, departmentID uuid.UUID) (*domain.ComplianceStatus, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ComplianceStatus, error)
	SummaryByDepartment(ctx context.Context) ([]domain.DepartmentComplianceSummary, error)
}

type complianceRepository struct {
	db *sqlx.DB
}

func NewComplianceRepository(db *sqlx.DB) ComplianceRepository {
	return &complianceRepository{db: db}
}

func (r *complianceRepository) Upsert(ctx context.Context, cs *domain.ComplianceStatus, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO compliance_statuses (id, article_id, department_id, status, comments, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (article_id, department_id) DO UPDATE
			SET status = EXCLUDED.status, comments = EXCLUDED.comments, updated_by = EXCLUDED.updated_by, updated_at = NOW()
			RETURNING id, created_by, created_at, updated_at`

		if err := tx.QueryRowxContext(ctx, query,
			cs.ID, cs.ArticleID, cs.DepartmentID, cs.Status, cs.Comments, cs.UpdatedBy,
		).Scan(&cs.ID, &cs.CreatedBy, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return err
		}

		entry.EntityID = &cs.ID
		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *complianceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceStatus, error) {
	var cs domain.ComplianceStatus
	query := `SELECT * FROM compliance_statuses WHERE id = $1`
	if err := r.db.GetContext(ctx, &cs, query, id); err != nil {
		return nil, mapDBError(err)
	}
	return &cs, nil
}

func (r *complianceRepository) GetByArticleAndDepartment(ctx context.Context, articleID, departmentID uuid.UUID) (*domain.ComplianceStatus, error) {
	var cs domain.ComplianceStatus
	query := `SELECT * FROM compliance_statuses WHERE article_id = $1 AND department_id = $2`
	err := r.db.GetContext(ctx, &cs, query, articleID, departmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *complianceRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ComplianceStatus, error) {
	var statuses []domain.ComplianceStatus
	query := `SELECT * FROM compliance_statuses WHERE article_id = $1 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &statuses, query, articleID)
	return statuses, err
}

func (r *complianceRepository) SummaryByDepartment(ctx context.Context) ([]domain.DepartmentComplianceSummary, error) {
	var summaries []domain.DepartmentComplianceSummary
	query := `
		SELECT d.id AS department_id, d.name AS department_name,
			COUNT(*) FILTER (WHERE cs.status = 'compliant') AS compliant,
			COUNT(*) FILTER (WHERE cs.status = 'partially_compliant') AS partially_compliant,
			COUNT(*) FILTER (WHERE cs.status = 'non_compliant') AS non_compliant,
			COUNT(*) FILTER (WHERE cs.status = 'not_applicable') AS not_applicable
		FROM departments d
		LEFT JOIN compliance_statuses cs ON cs.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name`
	err := r.db.SelectContext(ctx, &summaries, query)
	return summaries, err
}
