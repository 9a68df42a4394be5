package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
)

type RegulationRepository struct {
	mock.Mock
}

func (m *RegulationRepository) Create(ctx context.Context, reg *domain.Regulation, departmentIDs []uuid.UUID, entry *domain.AuditLog) error {
	args := m.Called(ctx, reg, departmentIDs, entry)
	return args.Error(0)
}

func (m *RegulationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Regulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Regulation), args.Error(1)
}

func (m *RegulationRepository) List(ctx context.Context, filter domain.RegulationFilter, params domain.PaginationParams) ([]domain.Regulation, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.Regulation), args.Get(1).(int64), args.Error(2)
}

func (m *RegulationRepository) Update(ctx context.Context, reg *domain.Regulation, departmentIDs []uuid.UUID, entry *domain.AuditLog) error {
	args := m.Called(ctx, reg, departmentIDs, entry)
	return args.Error(0)
}

func (m *RegulationRepository) Delete(ctx context.Context, id uuid.UUID, entry *domain.AuditLog) error {
	args := m.Called(ctx, id, entry)
	return args.Error(0)
}

func (m *RegulationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.RegulationStatus, entry *domain.AuditLog) error {
	args := m.Called(ctx, id, from, to, entry)
	return args.Error(0)
}

func (m *RegulationRepository) LatestReference(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

func (m *RegulationRepository) SearchFallback(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) ([]domain.Regulation, int64, error) {
	args := m.Called(ctx, text, filter, params)
	return args.Get(0).([]domain.Regulation), args.Get(1).(int64), args.Error(2)
}

func (m *RegulationRepository) ListForExport(ctx context.Context) ([]domain.Regulation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Regulation), args.Error(1)
}

func (m *RegulationRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RegulationRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.StatusCount), args.Error(1)
}
