package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/dashboard"
	"compliance-platform/internal/workflow"
)

// A nil Redis client exercises the degraded path: every call computes
// directly from the repositories.
func TestService_StatsWithoutCache(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mocks.UserRepository)
	deptRepo := new(mocks.DepartmentRepository)
	regRepo := new(mocks.RegulationRepository)
	articleRepo := new(mocks.ArticleRepository)
	compRepo := new(mocks.ComplianceRepository)
	auditRepo := new(mocks.AuditLogRepository)

	repos := &repository.Repositories{
		User:       userRepo,
		Department: deptRepo,
		Regulation: regRepo,
		Article:    articleRepo,
		Compliance: compRepo,
		AuditLog:   auditRepo,
	}
	svc := dashboard.NewService(repos, nil, time.Minute)

	userRepo.On("CountAll", ctx).Return(int64(12), nil)
	deptRepo.On("CountAll", ctx).Return(int64(4), nil)
	regRepo.On("CountAll", ctx).Return(int64(30), nil)
	articleRepo.On("CountAll", ctx).Return(int64(180), nil)
	regRepo.On("CountByStatus", ctx).Return([]domain.StatusCount{
		{Status: workflow.StatusDraft, Count: 7},
		{Status: workflow.StatusFullyApproved, Count: 23},
	}, nil)
	compRepo.On("SummaryByDepartment", ctx).Return([]domain.DepartmentComplianceSummary{
		{DepartmentID: uuid.New(), DepartmentName: "Finance", Compliant: 40},
	}, nil)
	auditRepo.On("Recent", ctx, 10).Return([]domain.AuditLog{
		{ActionType: domain.AuditStatusChange, EntityType: "regulation"},
	}, nil)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Users)
	assert.Equal(t, int64(30), stats.Regulations)
	assert.Len(t, stats.RegulationsByStatus, 2)
	assert.Len(t, stats.RecentActivity, 1)
	assert.False(t, stats.GeneratedAt.IsZero())
}
