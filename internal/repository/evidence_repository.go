package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"compliance-platform/internal/domain"
)

type EvidenceRepository interface {
	Create(ctx context.Context, ev *domain.Evidence) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Evidence, error)
	ListByComplianceStatus(ctx context.Context, complianceStatusID uuid.UUID) ([]domain.Evidence, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type evidenceRepository struct {
	db *sqlx.DB
}

func NewEvidenceRepository(db *sqlx.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

func (r *evidenceRepository) Create(ctx context.Context, ev *domain.Evidence) error {
	query := `
		INSERT INTO evidence (id, compliance_status_id, file_name, object_key, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		ev.ID, ev.ComplianceStatusID, ev.FileName, ev.ObjectKey, ev.ContentType, ev.SizeBytes, ev.UploadedBy,
	).Scan(&ev.CreatedAt)
}

func (r *evidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evidence, error) {
	var ev domain.Evidence
	query := `SELECT * FROM evidence WHERE id = $1`
	if err := r.db.GetContext(ctx, &ev, query, id); err != nil {
		return nil, mapDBError(err)
	}
	return &ev, nil
}

func (r *evidenceRepository) ListByComplianceStatus(ctx context.Context, complianceStatusID uuid.UUID) ([]domain.Evidence, error) {
	var evidence []domain.Evidence
	query := `SELECT * FROM evidence WHERE compliance_status_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &evidence, query, complianceStatusID)
	return evidence, err
}

func (r *evidenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
