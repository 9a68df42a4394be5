package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"compliance-platform/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User, departmentIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetAll(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	AssignRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) error
	SetDepartments(ctx context.Context, userID uuid.UUID, departmentIDs []uuid.UUID) error
	GetDepartments(ctx context.Context, userID uuid.UUID) ([]domain.Department, error)
	ListByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error)
	// ListByDepartments returns the distinct active users belonging to any
	// of the given departments. Used for notification fan-out.
	ListByDepartments(ctx context.Context, departmentIDs []uuid.UUID) ([]domain.User, error)
	CountAll(ctx context.Context) (int64, error)
	SetPasswordResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	ClearPasswordResetToken(ctx context.Context, userID uuid.UUID) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User, departmentIDs []uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, email, password_hash, full_name, role, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at`

		if err := tx.QueryRowxContext(ctx, query,
			user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive,
		).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}

		return replaceUserDepartmentsTx(ctx, tx, user.ID, departmentIDs)
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE email = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`
	err := r.db.GetContext(ctx, &exists, query, email)
	return exists, err
}

func (r *userRepository) GetAll(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, err
	}

	var users []domain.User
	query := `SELECT * FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &users, query, params.PageSize, params.Offset())
	return users, total, err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, full_name = $4, role = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive)
	return mapDBError(err)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *userRepository) AssignRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		userID, role)
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

func (r *userRepository) SetDepartments(ctx context.Context, userID uuid.UUID, departmentIDs []uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return replaceUserDepartmentsTx(ctx, tx, userID, departmentIDs)
	})
}

func (r *userRepository) GetDepartments(ctx context.Context, userID uuid.UUID) ([]domain.Department, error) {
	var depts []domain.Department
	query := `
		SELECT d.* FROM departments d
		JOIN user_departments ud ON ud.department_id = d.id
		WHERE ud.user_id = $1
		ORDER BY d.name`
	err := r.db.SelectContext(ctx, &depts, query, userID)
	return depts, err
}

func (r *userRepository) ListByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error) {
	roleStrs := make([]string, len(roles))
	for i, role := range roles {
		roleStrs[i] = string(role)
	}

	var users []domain.User
	query := `SELECT * FROM users WHERE role = ANY($1) AND deleted_at IS NULL AND is_active = true`
	err := r.db.SelectContext(ctx, &users, query, pq.Array(roleStrs))
	return users, err
}

func (r *userRepository) ListByDepartments(ctx context.Context, departmentIDs []uuid.UUID) ([]domain.User, error) {
	ids := make([]string, len(departmentIDs))
	for i, id := range departmentIDs {
		ids[i] = id.String()
	}

	var users []domain.User
	query := `
		SELECT DISTINCT u.* FROM users u
		JOIN user_departments ud ON ud.user_id = u.id
		WHERE ud.department_id = ANY($1) AND u.deleted_at IS NULL AND u.is_active = true`
	err := r.db.SelectContext(ctx, &users, query, pq.Array(ids))
	return users, err
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`)
	return count, err
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `UPDATE users SET password_reset_token = $2, password_reset_expires_at = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, token, expiresAt)
	return err
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE password_reset_token = $1 AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &user, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ClearPasswordResetToken(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET password_reset_token = NULL, password_reset_expires_at = NULL, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func replaceUserDepartmentsTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, departmentIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_departments WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, deptID := range departmentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_departments (user_id, department_id) VALUES ($1, $2)`,
			userID, deptID,
		); err != nil {
			return err
		}
	}
	return nil
}
