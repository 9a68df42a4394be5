package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/service/search"
)

type SearchService struct {
	mock.Mock
}

func (m *SearchService) Sync(ctx context.Context, reg *domain.Regulation) {
	m.Called(ctx, reg)
}

func (m *SearchService) Remove(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}

func (m *SearchService) Search(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) (domain.PaginatedResponse[search.Result], error) {
	args := m.Called(ctx, text, filter, params)
	return args.Get(0).(domain.PaginatedResponse[search.Result]), args.Error(1)
}

func (m *SearchService) Rebuild(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
