package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
)

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditLogRepository) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *AuditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func (m *AuditLogRepository) Recent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func (m *AuditLogRepository) ListForExport(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}
