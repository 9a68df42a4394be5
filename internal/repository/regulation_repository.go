package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"compliance-platform/internal/domain"
)

type RegulationRepository interface {
	// Create inserts the regulation, its department assignments and the
	// audit entry in one transaction. A duplicate reference surfaces as
	// domain.ErrConflict.
	Create(ctx context.Context, reg *domain.Regulation, departmentIDs []uuid.UUID, entry *domain.AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Regulation, error)
	List(ctx context.Context, filter domain.RegulationFilter, params domain.PaginationParams) ([]domain.Regulation, int64, error)
	Update(ctx context.Context, reg *domain.Regulation, departmentIDs []uuid.UUID, entry *domain.AuditLog) error
	Delete(ctx context.Context, id uuid.UUID, entry *domain.AuditLog) error
	// TransitionStatus compare-and-swaps the status and writes the audit
	// entry in the same transaction. If the row is no longer in the
	// expected source status it returns domain.ErrConflict and nothing is
	// persisted.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.RegulationStatus, entry *domain.AuditLog) error
	// LatestReference returns the lexicographically largest reference with
	// the given prefix, or "" when none exists. Re-read on every call so
	// generation never works from a stale maximum.
	LatestReference(ctx context.Context, prefix string) (string, error)
	// SearchFallback is the direct-database substring search used when the
	// text index is unavailable. Ordering is updated_at DESC and differs
	// from index relevance ordering.
	SearchFallback(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) ([]domain.Regulation, int64, error)
	// ListForExport returns every regulation with departments loaded,
	// ordered by reference. No pagination; used by exports and index rebuilds.
	ListForExport(ctx context.Context) ([]domain.Regulation, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
}

type regulationRepository struct {
	db *sqlx.DB
}

func NewRegulationRepository(db *sqlx.DB) RegulationRepository {
	return &regulationRepository{db: db}
}

func (r *regulationRepository) Create(ctx context.Context, reg *domain.Regulation, departmentIDs []uuid.UUID, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO regulations (id, name, reference, description, type, status, created_by, issue_date, effective_date, expiry_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at`

		if err := tx.QueryRowxContext(ctx, query,
			reg.ID, reg.Name, reg.Reference, reg.Description, reg.Type, reg.Status,
			reg.CreatedBy, reg.IssueDate, reg.EffectiveDate, reg.ExpiryDate,
		).Scan(&reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return err
		}

		if err := replaceDepartmentsTx(ctx, tx, reg.ID, departmentIDs); err != nil {
			return err
		}

		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *regulationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Regulation, error) {
	var reg domain.Regulation
	query := `SELECT * FROM regulations WHERE id = $1`
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, mapDBError(err)
	}

	if err := r.loadDepartments(ctx, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *regulationRepository) loadDepartments(ctx context.Context, reg *domain.Regulation) error {
	query := `
		SELECT d.* FROM departments d
		JOIN regulation_departments rd ON rd.department_id = d.id
		WHERE rd.regulation_id = $1
		ORDER BY d.name`
	return r.db.SelectContext(ctx, &reg.Departments, query, reg.ID)
}

func (r *regulationRepository) List(ctx context.Context, filter domain.RegulationFilter, params domain.PaginationParams) ([]domain.Regulation, int64, error) {
	params.Validate()

	where := ` WHERE 1=1`
	args := []interface{}{}
	n := 1
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *filter.Status)
		n++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", n)
		args = append(args, *filter.Type)
		n++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM regulations`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM regulations%s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	var regs []domain.Regulation
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, 0, err
	}

	for i := range regs {
		if err := r.loadDepartments(ctx, &regs[i]); err != nil {
			return nil, 0, err
		}
	}
	return regs, total, nil
}

func (r *regulationRepository) Update(ctx context.Context, reg *domain.Regulation, departmentIDs []uuid.UUID, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE regulations
			SET name = $2, description = $3, type = $4, issue_date = $5, effective_date = $6, expiry_date = $7, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`

		if err := tx.QueryRowxContext(ctx, query,
			reg.ID, reg.Name, reg.Description, reg.Type,
			reg.IssueDate, reg.EffectiveDate, reg.ExpiryDate,
		).Scan(&reg.UpdatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		if departmentIDs != nil {
			if err := replaceDepartmentsTx(ctx, tx, reg.ID, departmentIDs); err != nil {
				return err
			}
		}

		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *regulationRepository) Delete(ctx context.Context, id uuid.UUID, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Articles and their compliance statuses go with the regulation
		// via ON DELETE CASCADE.
		res, err := tx.ExecContext(ctx, `DELETE FROM regulations WHERE id = $1`, id)
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

		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *regulationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.RegulationStatus, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE regulations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
			id, from, to,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// Either the row is gone or a concurrent transition won the
			// race; distinguish so callers can retry meaningfully.
			var exists bool
			if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM regulations WHERE id = $1)`, id); err != nil {
				return err
			}
			if !exists {
				return domain.ErrNotFound
			}
			return fmt.Errorf("%w: regulation left status %s", domain.ErrConflict, from)
		}

		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *regulationRepository) LatestReference(ctx context.Context, prefix string) (string, error) {
	var ref sql.NullString
	query := `SELECT MAX(reference) FROM regulations WHERE reference LIKE $1`
	if err := r.db.GetContext(ctx, &ref, query, prefix+"%"); err != nil {
		return "", err
	}
	if !ref.Valid {
		return "", nil
	}
	return ref.String, nil
}

func (r *regulationRepository) SearchFallback(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) ([]domain.Regulation, int64, error) {
	params.Validate()

	where := ` WHERE (reference ILIKE $1 OR name ILIKE $1 OR description ILIKE $1)`
	args := []interface{}{"%" + text + "%"}
	n := 2
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *filter.Status)
		n++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", n)
		args = append(args, *filter.Type)
		n++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM regulations`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT * FROM regulations%s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	var regs []domain.Regulation
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *regulationRepository) ListForExport(ctx context.Context) ([]domain.Regulation, error) {
	var regs []domain.Regulation
	query := `SELECT * FROM regulations ORDER BY reference`
	if err := r.db.SelectContext(ctx, &regs, query); err != nil {
		return nil, err
	}

	for i := range regs {
		if err := r.loadDepartments(ctx, &regs[i]); err != nil {
			return nil, err
		}
	}
	return regs, nil
}

func (r *regulationRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM regulations`)
	return count, err
}

func (r *regulationRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	var counts []domain.StatusCount
	query := `SELECT status, COUNT(*) AS count FROM regulations GROUP BY status ORDER BY status`
	err := r.db.SelectContext(ctx, &counts, query)
	return counts, err
}

func replaceDepartmentsTx(ctx context.Context, tx *sqlx.Tx, regulationID uuid.UUID, departmentIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM regulation_departments WHERE regulation_id = $1`, regulationID); err != nil {
		return err
	}
	for _, deptID := range departmentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO regulation_departments (regulation_id, department_id) VALUES ($1, $2)`,
			regulationID, deptID,
		); err != nil {
			return err
		}
	}
	return nil
}
