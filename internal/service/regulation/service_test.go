package regulation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/regulation"
	"compliance-platform/internal/workflow"
)

type fixture struct {
	regRepo   *mocks.RegulationRepository
	deptRepo  *mocks.DepartmentRepository
	userRepo  *mocks.UserRepository
	auditRepo *mocks.AuditLogRepository
	notifier  *mocks.NotificationService
	search    *mocks.SearchService
	svc       regulation.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		regRepo:   new(mocks.RegulationRepository),
		deptRepo:  new(mocks.DepartmentRepository),
		userRepo:  new(mocks.UserRepository),
		auditRepo: new(mocks.AuditLogRepository),
		notifier:  new(mocks.NotificationService),
		search:    new(mocks.SearchService),
	}

	repos := &repository.Repositories{
		Regulation: f.regRepo,
		Department: f.deptRepo,
		User:       f.userRepo,
		AuditLog:   f.auditRepo,
	}
	policy := workflow.NewPolicy(workflow.Standard())
	f.svc = regulation.NewService(repos, policy, f.notifier, f.search, validator.New(), "REG")
	return f
}

func maker() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "maker@example.com", Role: domain.RoleComplianceMaker, IsActive: true}
}

func checker() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "checker@example.com", Role: domain.RoleComplianceChecker, IsActive: true}
}

func yearPrefix() string {
	return fmt.Sprintf("REG-%d-", time.Now().Year())
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	dept := domain.Department{ID: uuid.New(), Name: "Finance"}

	input := domain.CreateRegulationInput{
		Name:          "Capital Adequacy Rule",
		Description:   "Minimum capital requirements",
		Type:          domain.TypeRegulation,
		DepartmentIDs: []uuid.UUID{dept.ID},
	}

	t.Run("generates first reference of the year", func(t *testing.T) {
		f := newFixture(t)
		f.deptRepo.On("GetByIDs", ctx, input.DepartmentIDs).Return([]domain.Department{dept}, nil)
		f.regRepo.On("LatestReference", ctx, yearPrefix()).Return("", nil).Once()
		f.regRepo.On("Create", ctx, mock.MatchedBy(func(reg *domain.Regulation) bool {
			return reg.Reference == yearPrefix()+"001" && reg.Status == workflow.StatusDraft
		}), input.DepartmentIDs, mock.MatchedBy(func(entry *domain.AuditLog) bool {
			return entry.ActionType == domain.AuditCreate && entry.EntityType == "regulation"
		})).Return(nil).Once()
		f.search.On("Sync", ctx, mock.Anything).Return()

		reg, err := f.svc.Create(ctx, maker(), input, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, yearPrefix()+"001", reg.Reference)
		assert.Equal(t, workflow.StatusDraft, reg.Status)
		f.regRepo.AssertExpectations(t)
	})

	t.Run("increments and pads the running maximum", func(t *testing.T) {
		f := newFixture(t)
		f.deptRepo.On("GetByIDs", ctx, input.DepartmentIDs).Return([]domain.Department{dept}, nil)
		f.regRepo.On("LatestReference", ctx, yearPrefix()).Return(yearPrefix()+"003", nil).Once()
		f.regRepo.On("Create", ctx, mock.MatchedBy(func(reg *domain.Regulation) bool {
			return reg.Reference == yearPrefix()+"004"
		}), input.DepartmentIDs, mock.Anything).Return(nil).Once()
		f.search.On("Sync", ctx, mock.Anything).Return()

		reg, err := f.svc.Create(ctx, maker(), input, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, yearPrefix()+"004", reg.Reference)
	})

	t.Run("falls back to 001 when the stored maximum is unparsable", func(t *testing.T) {
		f := newFixture(t)
		f.deptRepo.On("GetByIDs", ctx, input.DepartmentIDs).Return([]domain.Department{dept}, nil)
		f.regRepo.On("LatestReference", ctx, yearPrefix()).Return(yearPrefix()+"garbage", nil).Once()
		f.regRepo.On("Create", ctx, mock.MatchedBy(func(reg *domain.Regulation) bool {
			return reg.Reference == yearPrefix()+"001"
		}), input.DepartmentIDs, mock.Anything).Return(nil).Once()
		f.search.On("Sync", ctx, mock.Anything).Return()

		_, err := f.svc.Create(ctx, maker(), input, domain.RequestMeta{})
		require.NoError(t, err)
	})

	t.Run("retries once when a concurrent create takes the reference", func(t *testing.T) {
		f := newFixture(t)
		f.deptRepo.On("GetByIDs", ctx, input.DepartmentIDs).Return([]domain.Department{dept}, nil)
		f.regRepo.On("LatestReference", ctx, yearPrefix()).Return("", nil).Once()
		f.regRepo.On("Create", ctx, mock.MatchedBy(func(reg *domain.Regulation) bool {
			return reg.Reference == yearPrefix()+"001"
		}), input.DepartmentIDs, mock.Anything).Return(domain.ErrConflict).Once()
		f.regRepo.On("LatestReference", ctx, yearPrefix()).Return(yearPrefix()+"001", nil).Once()
		f.regRepo.On("Create", ctx, mock.MatchedBy(func(reg *domain.Regulation) bool {
			return reg.Reference == yearPrefix()+"002"
		}), input.DepartmentIDs, mock.Anything).Return(nil).Once()
		f.search.On("Sync", ctx, mock.Anything).Return()

		reg, err := f.svc.Create(ctx, maker(), input, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, yearPrefix()+"002", reg.Reference)
		f.regRepo.AssertExpectations(t)
	})

	t.Run("surfaces a conflict on an explicitly supplied reference", func(t *testing.T) {
		f := newFixture(t)
		withRef := input
		withRef.Reference = "REG-2020-042"
		f.deptRepo.On("GetByIDs", ctx, input.DepartmentIDs).Return([]domain.Department{dept}, nil)
		f.regRepo.On("Create", ctx, mock.Anything, input.DepartmentIDs, mock.Anything).Return(domain.ErrConflict).Once()

		_, err := f.svc.Create(ctx, maker(), withRef, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.regRepo.AssertNotCalled(t, "LatestReference", mock.Anything, mock.Anything)
	})

	t.Run("only a compliance maker may create", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(ctx, checker(), input, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		f.regRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown departments", func(t *testing.T) {
		f := newFixture(t)
		f.deptRepo.On("GetByIDs", ctx, input.DepartmentIDs).Return([]domain.Department{}, nil)

		_, err := f.svc.Create(ctx, maker(), input, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	newName := "Revised name"

	t.Run("allowed while draft", func(t *testing.T) {
		f := newFixture(t)
		reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-001", Status: workflow.StatusDraft}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.regRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Regulation) bool {
			return r.Name == newName
		}), mock.Anything, mock.MatchedBy(func(entry *domain.AuditLog) bool {
			return entry.ActionType == domain.AuditUpdate
		})).Return(nil)
		f.search.On("Sync", ctx, mock.Anything).Return()

		updated, err := f.svc.Update(ctx, maker(), reg.ID, domain.UpdateRegulationInput{Name: &newName}, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, newName, updated.Name)
	})

	t.Run("audit old_value keeps the pre-update departments", func(t *testing.T) {
		f := newFixture(t)
		oldDept := domain.Department{ID: uuid.New(), Name: "Finance"}
		newDept := domain.Department{ID: uuid.New(), Name: "Legal"}
		reg := &domain.Regulation{
			ID:          uuid.New(),
			Reference:   "REG-2024-001",
			Status:      workflow.StatusDraft,
			Departments: []domain.Department{oldDept},
		}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.deptRepo.On("GetByIDs", ctx, []uuid.UUID{newDept.ID}).Return([]domain.Department{newDept}, nil)
		f.regRepo.On("Update", ctx, mock.Anything, mock.Anything, mock.MatchedBy(func(entry *domain.AuditLog) bool {
			var snapshot domain.Regulation
			if err := json.Unmarshal(entry.OldValue, &snapshot); err != nil {
				return false
			}
			return len(snapshot.Departments) == 1 && snapshot.Departments[0].ID == oldDept.ID
		})).Return(nil)
		f.search.On("Sync", ctx, mock.Anything).Return()

		updated, err := f.svc.Update(ctx, maker(), reg.ID,
			domain.UpdateRegulationInput{DepartmentIDs: []uuid.UUID{newDept.ID}}, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, newDept.ID, updated.Departments[0].ID)
		f.regRepo.AssertExpectations(t)
	})

	t.Run("blocked once under review", func(t *testing.T) {
		f := newFixture(t)
		reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusAwaitingReview}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)

		_, err := f.svc.Update(ctx, maker(), reg.ID, domain.UpdateRegulationInput{Name: &newName}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("draft only", func(t *testing.T) {
		f := newFixture(t)
		reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-001", Status: workflow.StatusDraft}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.regRepo.On("Delete", ctx, reg.ID, mock.MatchedBy(func(entry *domain.AuditLog) bool {
			return entry.ActionType == domain.AuditDelete
		})).Return(nil)
		f.search.On("Remove", ctx, reg.ID).Return()

		require.NoError(t, f.svc.Delete(ctx, maker(), reg.ID, domain.RequestMeta{}))
		f.search.AssertCalled(t, "Remove", ctx, reg.ID)
	})

	t.Run("terminal regulations are permanent", func(t *testing.T) {
		f := newFixture(t)
		reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusFullyApproved}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)

		err := f.svc.Delete(ctx, maker(), reg.ID, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("maker submits draft for review and the team is notified", func(t *testing.T) {
		f := newFixture(t)
		actor := maker()
		reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-001", Status: workflow.StatusDraft}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.regRepo.On("TransitionStatus", ctx, reg.ID, workflow.StatusDraft, workflow.StatusAwaitingReview,
			mock.MatchedBy(func(entry *domain.AuditLog) bool {
				return entry.ActionType == domain.AuditStatusChange && *entry.UserID == actor.ID
			})).Return(nil)
		f.notifier.On("NotifyTransition", ctx, reg, mock.MatchedBy(func(tr workflow.Transition) bool {
			return tr.Notify == workflow.NotifyComplianceTeam
		}), actor).Return()
		f.search.On("Sync", ctx, reg).Return()

		updated, err := f.svc.Transition(ctx, actor, reg.ID,
			domain.TransitionRegulationInput{ToStatus: workflow.StatusAwaitingReview}, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusAwaitingReview, updated.Status)
		f.notifier.AssertExpectations(t)
	})

	t.Run("skipping a state is an invalid transition", func(t *testing.T) {
		f := newFixture(t)
		reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusDraft}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)

		_, err := f.svc.Transition(ctx, maker(), reg.ID,
			domain.TransitionRegulationInput{ToStatus: workflow.StatusFullyApproved}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("edge exists but role is wrong", func(t *testing.T) {
		f := newFixture(t)
		reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusAwaitingReview}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)

		_, err := f.svc.Transition(ctx, maker(), reg.ID,
			domain.TransitionRegulationInput{ToStatus: workflow.StatusReviewedByCompliance}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		f.regRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("department actor must share a department with the regulation", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptMaker, IsActive: true}
		assigned := domain.Department{ID: uuid.New(), Name: "Finance"}
		reg := &domain.Regulation{
			ID:          uuid.New(),
			Reference:   "REG-2024-002",
			Status:      workflow.StatusActionRequired,
			Departments: []domain.Department{assigned},
		}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{{ID: uuid.New(), Name: "Legal"}}, nil)

		_, err := f.svc.Transition(ctx, actor, reg.ID,
			domain.TransitionRegulationInput{ToStatus: workflow.StatusDeptResponseSubmitted}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		f.regRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("department member submits a response", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptChecker, IsActive: true}
		assigned := domain.Department{ID: uuid.New(), Name: "Finance"}
		reg := &domain.Regulation{
			ID:          uuid.New(),
			Reference:   "REG-2024-002",
			Status:      workflow.StatusActionRequired,
			Departments: []domain.Department{assigned},
		}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{assigned}, nil)
		f.regRepo.On("TransitionStatus", ctx, reg.ID, workflow.StatusActionRequired, workflow.StatusDeptResponseSubmitted, mock.Anything).Return(nil)
		f.notifier.On("NotifyTransition", ctx, reg, mock.Anything, actor).Return()
		f.search.On("Sync", ctx, reg).Return()

		updated, err := f.svc.Transition(ctx, actor, reg.ID,
			domain.TransitionRegulationInput{ToStatus: workflow.StatusDeptResponseSubmitted}, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusDeptResponseSubmitted, updated.Status)
	})

	t.Run("a lost race surfaces as a conflict and nothing fans out", func(t *testing.T) {
		f := newFixture(t)
		actor := maker()
		reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusDraft}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.regRepo.On("TransitionStatus", ctx, reg.ID, workflow.StatusDraft, workflow.StatusAwaitingReview, mock.Anything).
			Return(domain.ErrConflict)

		_, err := f.svc.Transition(ctx, actor, reg.ID,
			domain.TransitionRegulationInput{ToStatus: workflow.StatusAwaitingReview}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.notifier.AssertNotCalled(t, "NotifyTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.search.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Transition(ctx, maker(), uuid.New(),
			domain.TransitionRegulationInput{ToStatus: "sideways"}, domain.RequestMeta{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_AvailableTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusReviewedByCompliance}
	f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)

	targets, err := f.svc.AvailableTransitions(ctx, checker(), reg.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.RegulationStatus{
		workflow.StatusActionRequired,
		workflow.StatusAwaitingFinalApproval,
	}, targets)

	targets, err = f.svc.AvailableTransitions(ctx, maker(), reg.ID)
	require.NoError(t, err)
	assert.Empty(t, targets, "maker holds no edges out of the review state")
}

func TestService_AvailableTransitionsHonorMembership(t *testing.T) {
	ctx := context.Background()
	assigned := domain.Department{ID: uuid.New(), Name: "Finance"}
	reg := &domain.Regulation{
		ID:          uuid.New(),
		Reference:   "REG-2024-005",
		Status:      workflow.StatusActionRequired,
		Departments: []domain.Department{assigned},
	}

	t.Run("member sees the department edges", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptMaker, IsActive: true}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{assigned}, nil)

		targets, err := f.svc.AvailableTransitions(ctx, actor, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, []domain.RegulationStatus{workflow.StatusDeptResponseSubmitted}, targets)
	})

	t.Run("an outsider sees nothing it could actually take", func(t *testing.T) {
		f := newFixture(t)
		actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptChecker, IsActive: true}
		f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
		f.userRepo.On("GetDepartments", ctx, actor.ID).Return([]domain.Department{{ID: uuid.New(), Name: "Legal"}}, nil)

		targets, err := f.svc.AvailableTransitions(ctx, actor, reg.ID)
		require.NoError(t, err)
		assert.Empty(t, targets)
	})
}

func TestService_AuditTrail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reg := &domain.Regulation{ID: uuid.New(), Status: workflow.StatusDraft}
	trail := []domain.AuditLog{
		{ActionType: domain.AuditCreate, EntityType: "regulation"},
		{ActionType: domain.AuditStatusChange, EntityType: "regulation"},
	}
	f.regRepo.On("GetByID", ctx, reg.ID).Return(reg, nil)
	f.auditRepo.On("ListByEntity", ctx, "regulation", reg.ID).Return(trail, nil)

	got, err := f.svc.AuditTrail(ctx, reg.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
