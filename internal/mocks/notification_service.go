package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/workflow"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) NotifyTransition(ctx context.Context, reg *domain.Regulation, t workflow.Transition, actor *domain.User) {
	m.Called(ctx, reg, t, actor)
}

func (m *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	args := m.Called(ctx, userID, unreadOnly, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Notification]), args.Error(1)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
