package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/service/search"
)

type SearchIndex struct {
	mock.Mock
}

func (m *SearchIndex) Index(ctx context.Context, doc search.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *SearchIndex) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SearchIndex) Query(ctx context.Context, text string, filter domain.RegulationFilter, limit, offset int) ([]search.Hit, int64, error) {
	args := m.Called(ctx, text, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]search.Hit), args.Get(1).(int64), args.Error(2)
}
