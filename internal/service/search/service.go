package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

// Result is a regulation summary as returned by Search. Both the index path
// and the database fallback produce this shape, though their ordering
// differs: the index ranks by relevance, the fallback by recency.
type Result struct {
	ID          uuid.UUID               `json:"id"`
	Reference   string                  `json:"reference"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Status      domain.RegulationStatus `json:"status"`
	Type        domain.RegulationType   `json:"type"`
	Score       float64                 `json:"score,omitempty"`
}

type Service interface {
	// Sync pushes the regulation's current state into the index. Failures
	// are logged and swallowed; the database remains the source of truth.
	Sync(ctx context.Context, reg *domain.Regulation)
	Remove(ctx context.Context, id uuid.UUID)
	Search(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) (domain.PaginatedResponse[Result], error)
	// Rebuild drops nothing but reindexes every regulation from the
	// database, healing an index that drifted or was lost.
	Rebuild(ctx context.Context) (int, error)
}

type service struct {
	index   Index
	regRepo repository.RegulationRepository
	timeout time.Duration
}

func NewService(index Index, regRepo repository.RegulationRepository, timeout time.Duration) Service {
	return &service{
		index:   index,
		regRepo: regRepo,
		timeout: timeout,
	}
}

func documentFor(reg *domain.Regulation) Document {
	deptNames := make([]string, 0, len(reg.Departments))
	for _, d := range reg.Departments {
		deptNames = append(deptNames, d.Name)
	}

	createdBy := ""
	if reg.Creator != nil {
		createdBy = reg.Creator.FullName
	}

	return Document{
		ID:          reg.ID.String(),
		Reference:   reg.Reference,
		Name:        reg.Name,
		Description: reg.Description,
		Status:      string(reg.Status),
		Type:        string(reg.Type),
		CreatedBy:   createdBy,
		Departments: deptNames,
	}
}

func (s *service) Sync(ctx context.Context, reg *domain.Regulation) {
	doc := documentFor(reg)

	// The request must not hang on a slow index; give the write its own
	// deadline detached from the request context.
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.index.Index(ctx, doc)
	}()

	select {
	case err := <-done:
		if err != nil {
			logrus.WithError(err).WithField("regulation_id", reg.ID).Warn("search index sync failed")
		}
	case <-ctx.Done():
		logrus.WithField("regulation_id", reg.ID).Warn("search index sync timed out")
	}
}

func (s *service) Remove(ctx context.Context, id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.index.Delete(ctx, id.String())
	}()

	select {
	case err := <-done:
		if err != nil {
			logrus.WithError(err).WithField("regulation_id", id).Warn("search index delete failed")
		}
	case <-ctx.Done():
		logrus.WithField("regulation_id", id).Warn("search index delete timed out")
	}
}

func (s *service) Search(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) (domain.PaginatedResponse[Result], error) {
	if text == "" {
		return domain.PaginatedResponse[Result]{}, fmt.Errorf("%w: search text is required", domain.ErrValidation)
	}
	params.Validate()

	hits, total, err := s.index.Query(ctx, text, filter, params.PageSize, params.Offset())
	if err != nil {
		logrus.WithError(err).Debug("text index query failed, using database fallback")
		return s.fallback(ctx, text, filter, params)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		results = append(results, Result{
			ID:          id,
			Reference:   h.Reference,
			Name:        h.Name,
			Description: h.Description,
			Status:      domain.RegulationStatus(h.Status),
			Type:        domain.RegulationType(h.Type),
			Score:       h.Score,
		})
	}
	return domain.NewPaginatedResponse(results, params.Page, params.PageSize, total), nil
}

func (s *service) fallback(ctx context.Context, text string, filter domain.RegulationFilter, params domain.PaginationParams) (domain.PaginatedResponse[Result], error) {
	regs, total, err := s.regRepo.SearchFallback(ctx, text, filter, params)
	if err != nil {
		return domain.PaginatedResponse[Result]{}, err
	}

	results := make([]Result, 0, len(regs))
	for _, reg := range regs {
		results = append(results, Result{
			ID:          reg.ID,
			Reference:   reg.Reference,
			Name:        reg.Name,
			Description: reg.Description,
			Status:      reg.Status,
			Type:        reg.Type,
		})
	}
	return domain.NewPaginatedResponse(results, params.Page, params.PageSize, total), nil
}

func (s *service) Rebuild(ctx context.Context) (int, error) {
	regs, err := s.regRepo.ListForExport(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for i := range regs {
		if err := s.index.Index(ctx, documentFor(&regs[i])); err != nil {
			logrus.WithError(err).WithField("regulation_id", regs[i].ID).Warn("reindex failed for regulation")
			continue
		}
		indexed++
	}
	return indexed, nil
}
