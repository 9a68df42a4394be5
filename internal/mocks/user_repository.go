package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User, departmentIDs []uuid.UUID) error {
	args := m.Called(ctx, user, departmentIDs)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) GetAll(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepository) AssignRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *UserRepository) SetDepartments(ctx context.Context, userID uuid.UUID, departmentIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, departmentIDs)
	return args.Error(0)
}

func (m *UserRepository) GetDepartments(ctx context.Context, userID uuid.UUID) ([]domain.Department, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *UserRepository) ListByRoles(ctx context.Context, roles []domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, roles)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *UserRepository) ListByDepartments(ctx context.Context, departmentIDs []uuid.UUID) ([]domain.User, error) {
	args := m.Called(ctx, departmentIDs)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *UserRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepository) SetPasswordResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *UserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) ClearPasswordResetToken(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
