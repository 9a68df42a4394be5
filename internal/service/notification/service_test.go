package notification_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/service/notification"
	"compliance-platform/internal/workflow"
)

func newNotifier() (*mocks.NotificationRepository, *mocks.UserRepository, *mocks.EmailService, notification.Service) {
	notifRepo := new(mocks.NotificationRepository)
	userRepo := new(mocks.UserRepository)
	emailSvc := new(mocks.EmailService)
	emailSvc.On("SendNotificationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Maybe()
	return notifRepo, userRepo, emailSvc, notification.NewService(notifRepo, userRepo, emailSvc)
}

func edge(t *testing.T, from, to domain.RegulationStatus) workflow.Transition {
	t.Helper()
	tr, ok := workflow.Standard().Find(from, to)
	require.True(t, ok)
	return tr
}

func TestNotifyTransition_DepartmentFanOut(t *testing.T) {
	ctx := context.Background()
	notifRepo, userRepo, _, svc := newNotifier()

	dept := domain.Department{ID: uuid.New(), Name: "Finance"}
	actor := &domain.User{ID: uuid.New(), Role: domain.RoleComplianceChecker}
	members := []domain.User{
		{ID: uuid.New(), Email: "a@example.com", Role: domain.RoleDeptMaker},
		{ID: uuid.New(), Email: "b@example.com", Role: domain.RoleDeptChecker},
	}
	reg := &domain.Regulation{
		ID:          uuid.New(),
		Reference:   "REG-2024-001",
		Name:        "Capital Adequacy Rule",
		Departments: []domain.Department{dept},
	}

	userRepo.On("ListByDepartments", ctx, []uuid.UUID{dept.ID}).Return(members, nil)
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Type == domain.NotifActionRequired && *n.RegulationID == reg.ID
	})).Return(nil).Times(2)

	svc.NotifyTransition(ctx, reg, edge(t, workflow.StatusReviewedByCompliance, workflow.StatusActionRequired), actor)
	notifRepo.AssertExpectations(t)
}

func TestNotifyTransition_SkipsTheActor(t *testing.T) {
	ctx := context.Background()
	notifRepo, userRepo, _, svc := newNotifier()

	dept := domain.Department{ID: uuid.New(), Name: "Finance"}
	actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptMaker}
	colleague := domain.User{ID: uuid.New(), Email: "c@example.com", Role: domain.RoleDeptChecker}
	reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-001", Departments: []domain.Department{dept}}

	userRepo.On("ListByDepartments", ctx, []uuid.UUID{dept.ID}).Return([]domain.User{*actor, colleague}, nil)
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == colleague.ID && n.Type == domain.NotifReturnedForRework
	})).Return(nil).Once()

	svc.NotifyTransition(ctx, reg, edge(t, workflow.StatusDeptResponseSubmitted, workflow.StatusReturnedForRework), actor)
	notifRepo.AssertExpectations(t)
	notifRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestNotifyTransition_ComplianceTeamOnResponse(t *testing.T) {
	ctx := context.Background()
	notifRepo, userRepo, _, svc := newNotifier()

	actor := &domain.User{ID: uuid.New(), Role: domain.RoleDeptMaker}
	team := []domain.User{
		{ID: uuid.New(), Email: "maker@example.com", Role: domain.RoleComplianceMaker},
		{ID: uuid.New(), Email: "checker@example.com", Role: domain.RoleComplianceChecker},
	}
	reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-002", Name: "Rule"}

	userRepo.On("ListByRoles", ctx, domain.ComplianceRoles()).Return(team, nil)
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Type == domain.NotifResponseSubmitted
	})).Return(nil).Times(2)

	svc.NotifyTransition(ctx, reg, edge(t, workflow.StatusActionRequired, workflow.StatusDeptResponseSubmitted), actor)
	notifRepo.AssertExpectations(t)
}

func TestNotifyTransition_CreatorOnFinalApproval(t *testing.T) {
	ctx := context.Background()
	notifRepo, userRepo, _, svc := newNotifier()

	creator := &domain.User{ID: uuid.New(), Email: "maker@example.com", FullName: "The Maker"}
	actor := &domain.User{ID: uuid.New(), Role: domain.RoleComplianceChecker}
	reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-003", Name: "Rule", CreatedBy: &creator.ID}

	userRepo.On("GetByID", ctx, creator.ID).Return(creator, nil)
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == creator.ID && n.Type == domain.NotifRegulationApproved
	})).Return(nil).Once()

	svc.NotifyTransition(ctx, reg, edge(t, workflow.StatusAwaitingFinalApproval, workflow.StatusFullyApproved), actor)
	notifRepo.AssertExpectations(t)
}

func TestNotifyTransition_SilentEdge(t *testing.T) {
	ctx := context.Background()
	notifRepo, userRepo, _, svc := newNotifier()

	actor := &domain.User{ID: uuid.New(), Role: domain.RoleComplianceChecker}
	reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-004"}

	svc.NotifyTransition(ctx, reg, edge(t, workflow.StatusAwaitingReview, workflow.StatusReviewedByCompliance), actor)
	notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	userRepo.AssertNotCalled(t, "ListByRoles", mock.Anything, mock.Anything)
}

func TestService_ReadOperations(t *testing.T) {
	ctx := context.Background()
	notifRepo, _, _, svc := newNotifier()
	userID := uuid.New()

	notifRepo.On("ListByUser", ctx, userID, true, domain.PaginationParams{Page: 1, PageSize: 20}).
		Return([]domain.Notification{{ID: uuid.New(), UserID: userID}}, int64(1), nil)
	page, err := svc.List(ctx, userID, true, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)

	notifRepo.On("CountUnread", ctx, userID).Return(int64(3), nil)
	n, err := svc.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	notifID := uuid.New()
	notifRepo.On("MarkAsRead", ctx, notifID, userID).Return(nil)
	require.NoError(t, svc.MarkAsRead(ctx, notifID, userID))

	notifRepo.On("MarkAllAsRead", ctx, userID).Return(nil)
	require.NoError(t, svc.MarkAllAsRead(ctx, userID))
}
