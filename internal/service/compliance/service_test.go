package compliance_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/service/compliance"
	"compliance-platform/internal/workflow"
)

type fixture struct {
	compRepo    *mocks.ComplianceRepository
	articleRepo *mocks.ArticleRepository
	regRepo     *mocks.RegulationRepository
	userRepo    *mocks.UserRepository
	svc         compliance.Service

	dept    domain.Department
	article *domain.Article
	reg     *domain.Regulation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		compRepo:    new(mocks.ComplianceRepository),
		articleRepo: new(mocks.ArticleRepository),
		regRepo:     new(mocks.RegulationRepository),
		userRepo:    new(mocks.UserRepository),
	}
	f.svc = compliance.NewService(f.compRepo, f.articleRepo, f.regRepo, f.userRepo, validator.New())

	f.dept = domain.Department{ID: uuid.New(), Name: "Finance"}
	f.reg = &domain.Regulation{
		ID:          uuid.New(),
		Reference:   "REG-2024-001",
		Status:      workflow.StatusActionRequired,
		Departments: []domain.Department{f.dept},
	}
	f.article = &domain.Article{
		ID:           uuid.New(),
		RegulationID: f.reg.ID,
		Reference:    "Art. 4(1)",
		Title:        "Minimum capital",
	}
	f.articleRepo.On("GetByID", mock.Anything, f.article.ID).Return(f.article, nil)
	f.regRepo.On("GetByID", mock.Anything, f.reg.ID).Return(f.reg, nil)
	return f
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()
	input := domain.RecordComplianceInput{Status: domain.Compliant, Comments: "Fully covered by policy P-12."}

	t.Run("department member records a first verdict", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptMaker}
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{f.dept}, nil)
		f.compRepo.On("GetByArticleAndDepartment", ctx, f.article.ID, f.dept.ID).Return(nil, nil)
		f.compRepo.On("Upsert", ctx, mock.MatchedBy(func(cs *domain.ComplianceStatus) bool {
			return cs.ArticleID == f.article.ID && cs.DepartmentID == f.dept.ID && cs.Status == domain.Compliant
		}), mock.MatchedBy(func(entry *domain.AuditLog) bool {
			return entry.ActionType == domain.AuditCreate && entry.OldValue == nil
		})).Return(nil)

		cs, err := f.svc.Record(ctx, actor, f.article.ID, f.dept.ID, input, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, domain.Compliant, cs.Status)
		assert.Equal(t, actor.ID, *cs.CreatedBy)
	})

	t.Run("a revision keeps the prior verdict in the audit entry", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptChecker}
		existing := &domain.ComplianceStatus{
			ID:           uuid.New(),
			ArticleID:    f.article.ID,
			DepartmentID: f.dept.ID,
			Status:       domain.NonCompliant,
		}
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{f.dept}, nil)
		f.compRepo.On("GetByArticleAndDepartment", ctx, f.article.ID, f.dept.ID).Return(existing, nil)
		f.compRepo.On("Upsert", ctx, mock.Anything, mock.MatchedBy(func(entry *domain.AuditLog) bool {
			return entry.ActionType == domain.AuditUpdate && entry.OldValue != nil
		})).Return(nil)

		_, err := f.svc.Record(ctx, actor, f.article.ID, f.dept.ID, input, domain.RequestMeta{})
		require.NoError(t, err)
		f.compRepo.AssertExpectations(t)
	})

	t.Run("admin may record for any department", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
		f.compRepo.On("GetByArticleAndDepartment", ctx, f.article.ID, f.dept.ID).Return(nil, nil)
		f.compRepo.On("Upsert", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Record(ctx, actor, f.article.ID, f.dept.ID, input, domain.RequestMeta{})
		require.NoError(t, err)
		f.userRepo.AssertNotCalled(t, "GetDepartments", mock.Anything, mock.Anything)
	})

	t.Run("compliance team roles never author verdicts", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleComplianceChecker}

		_, err := f.svc.Record(ctx, actor, f.article.ID, f.dept.ID, input, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		f.compRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("outsiders are rejected", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptMaker}
		other := domain.Department{ID: uuid.New(), Name: "Legal"}
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{other}, nil)

		_, err := f.svc.Record(ctx, actor, f.article.ID, f.dept.ID, input, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("unassigned department is a validation error", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
		unassigned := uuid.New()

		_, err := f.svc.Record(ctx, actor, f.article.ID, unassigned, input, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown verdict value is rejected", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

		_, err := f.svc.Record(ctx, actor, f.article.ID, f.dept.ID,
			domain.RecordComplianceInput{Status: "mostly_fine"}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_ListByArticle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	verdicts := []domain.ComplianceStatus{
		{ArticleID: f.article.ID, DepartmentID: f.dept.ID, Status: domain.PartiallyCompliant},
	}
	f.compRepo.On("ListByArticle", ctx, f.article.ID).Return(verdicts, nil)

	got, err := f.svc.ListByArticle(ctx, f.article.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
