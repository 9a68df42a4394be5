package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"compliance-platform/internal/domain"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Department, error)
	List(ctx context.Context, params domain.PaginationParams) ([]domain.Department, int64, error)
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int64, error)
}

type departmentRepository struct {
	db *sqlx.DB
}

func NewDepartmentRepository(db *sqlx.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	query := `
		INSERT INTO departments (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, dept.ID, dept.Name, dept.Description).
		Scan(&dept.CreatedAt, &dept.UpdatedAt)
	return mapDBError(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	var dept domain.Department
	query := `SELECT * FROM departments WHERE id = $1`
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		return nil, mapDBError(err)
	}
	return &dept, nil
}

func (r *departmentRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Department, error) {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	var depts []domain.Department
	query := `SELECT * FROM departments WHERE id = ANY($1) ORDER BY name`
	err := r.db.SelectContext(ctx, &depts, query, pq.Array(strs))
	return depts, err
}

func (r *departmentRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.Department, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM departments`); err != nil {
		return nil, 0, err
	}

	var depts []domain.Department
	query := `SELECT * FROM departments ORDER BY name LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &depts, query, params.PageSize, params.Offset())
	return depts, total, err
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	query := `
		UPDATE departments
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, dept.ID, dept.Name, dept.Description).
		Scan(&dept.UpdatedAt)
	return mapDBError(err)
}

func (r *departmentRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM departments`)
	return count, err
}

func (r *departmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err)
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
