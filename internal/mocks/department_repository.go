package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
)

type DepartmentRepository struct {
	mock.Mock
}

func (m *DepartmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

func (m *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *DepartmentRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Department, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *DepartmentRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.Department, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Department), args.Get(1).(int64), args.Error(2)
}

func (m *DepartmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

func (m *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DepartmentRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
