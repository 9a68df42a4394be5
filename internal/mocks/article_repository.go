package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
)

type ArticleRepository struct {
	mock.Mock
}

func (m *ArticleRepository) Create(ctx context.Context, article *domain.Article, entry *domain.AuditLog) error {
	args := m.Called(ctx, article, entry)
	return args.Error(0)
}

func (m *ArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

func (m *ArticleRepository) ListByRegulation(ctx context.Context, regulationID uuid.UUID) ([]domain.Article, error) {
	args := m.Called(ctx, regulationID)
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *ArticleRepository) Update(ctx context.Context, article *domain.Article, entry *domain.AuditLog) error {
	args := m.Called(ctx, article, entry)
	return args.Error(0)
}

func (m *ArticleRepository) Delete(ctx context.Context, id uuid.UUID, entry *domain.AuditLog) error {
	args := m.Called(ctx, id, entry)
	return args.Error(0)
}

func (m *ArticleRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
