package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
)

type ComplianceRepository struct {
	mock.Mock
}

func (m *ComplianceRepository) Upsert(ctx context.Context, cs *domain.ComplianceStatus, entry *domain.AuditLog) error {
	args := m.Called(ctx, cs, entry)
	return args.Error(0)
}

func (m *ComplianceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComplianceStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplianceStatus), args.Error(1)
}

func (m *ComplianceRepository) GetByArticleAndDepartment(ctx context.Context, articleID, departmentID uuid.UUID) (*domain.ComplianceStatus, error) {
	args := m.Called(ctx, articleID, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplianceStatus), args.Error(1)
}

func (m *ComplianceRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ComplianceStatus, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).([]domain.ComplianceStatus), args.Error(1)
}

func (m *ComplianceRepository) SummaryByDepartment(ctx context.Context) ([]domain.DepartmentComplianceSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DepartmentComplianceSummary), args.Error(1)
}
