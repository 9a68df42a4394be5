package search_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/service/search"
	"compliance-platform/internal/workflow"
)

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	params := domain.PaginationParams{Page: 1, PageSize: 10}

	t.Run("empty text is rejected", func(t *testing.T) {
		index := new(mocks.SearchIndex)
		svc := search.NewService(index, new(mocks.RegulationRepository), time.Second)

		_, err := svc.Search(ctx, "", domain.RegulationFilter{}, params)
		assert.ErrorIs(t, err, domain.ErrValidation)
		index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("index hits are returned ranked", func(t *testing.T) {
		index := new(mocks.SearchIndex)
		regRepo := new(mocks.RegulationRepository)
		svc := search.NewService(index, regRepo, time.Second)

		id := uuid.New()
		hits := []search.Hit{{
			Document: search.Document{
				ID:        id.String(),
				Reference: "REG-2024-001",
				Name:      "Capital Adequacy Rule",
				Status:    string(workflow.StatusDraft),
				Type:      string(domain.TypeRegulation),
			},
			Score: 2.4,
		}}
		index.On("Query", ctx, "capital", domain.RegulationFilter{}, 10, 0).Return(hits, int64(1), nil)

		page, err := svc.Search(ctx, "capital", domain.RegulationFilter{}, params)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, id, page.Data[0].ID)
		assert.Equal(t, "REG-2024-001", page.Data[0].Reference)
		assert.Equal(t, workflow.StatusDraft, page.Data[0].Status)
		assert.Equal(t, 2.4, page.Data[0].Score)
		assert.Equal(t, int64(1), page.TotalItems)
		regRepo.AssertNotCalled(t, "SearchFallback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a failing index falls back to the database", func(t *testing.T) {
		index := new(mocks.SearchIndex)
		regRepo := new(mocks.RegulationRepository)
		svc := search.NewService(index, regRepo, time.Second)

		index.On("Query", ctx, "capital", domain.RegulationFilter{}, 10, 0).
			Return(nil, int64(0), errors.New("index corrupted"))
		regs := []domain.Regulation{{
			ID:        uuid.New(),
			Reference: "REG-2024-007",
			Name:      "Capital Buffer Guideline",
			Status:    workflow.StatusDraft,
			Type:      domain.TypeGuideline,
		}}
		regRepo.On("SearchFallback", ctx, "capital", domain.RegulationFilter{}, params).Return(regs, int64(1), nil)

		page, err := svc.Search(ctx, "capital", domain.RegulationFilter{}, params)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "REG-2024-007", page.Data[0].Reference)
		assert.Zero(t, page.Data[0].Score, "fallback results carry no relevance score")
	})

	t.Run("a disabled index falls back the same way", func(t *testing.T) {
		regRepo := new(mocks.RegulationRepository)
		svc := search.NewService(search.NewNoopIndex(), regRepo, time.Second)

		regRepo.On("SearchFallback", ctx, "capital", domain.RegulationFilter{}, params).
			Return([]domain.Regulation{}, int64(0), nil)

		page, err := svc.Search(ctx, "capital", domain.RegulationFilter{}, params)
		require.NoError(t, err)
		assert.Empty(t, page.Data)
	})
}

func TestService_SyncNeverFailsTheCaller(t *testing.T) {
	index := new(mocks.SearchIndex)
	svc := search.NewService(index, new(mocks.RegulationRepository), time.Second)

	reg := &domain.Regulation{ID: uuid.New(), Reference: "REG-2024-001", Name: "Rule", Status: workflow.StatusDraft}
	index.On("Index", mock.Anything, mock.MatchedBy(func(doc search.Document) bool {
		return doc.ID == reg.ID.String() && doc.Reference == reg.Reference
	})).Return(errors.New("index unavailable"))

	// The error is logged and swallowed.
	svc.Sync(context.Background(), reg)
	index.AssertExpectations(t)
}

func TestService_Rebuild(t *testing.T) {
	ctx := context.Background()
	index := new(mocks.SearchIndex)
	regRepo := new(mocks.RegulationRepository)
	svc := search.NewService(index, regRepo, time.Second)

	regs := []domain.Regulation{
		{ID: uuid.New(), Reference: "REG-2024-001", Name: "One"},
		{ID: uuid.New(), Reference: "REG-2024-002", Name: "Two"},
		{ID: uuid.New(), Reference: "REG-2024-003", Name: "Three"},
	}
	regRepo.On("ListForExport", ctx).Return(regs, nil)
	index.On("Index", ctx, mock.MatchedBy(func(doc search.Document) bool {
		return doc.Reference == "REG-2024-002"
	})).Return(errors.New("mapping error"))
	index.On("Index", ctx, mock.Anything).Return(nil)

	indexed, err := svc.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed, "a document that fails to index is skipped, not fatal")
}
