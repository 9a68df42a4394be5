package article

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/workflow"
)

const entityType = "article"

// Articles inherit their edit window from the parent regulation: they may
// only change while the regulation itself is editable.
type Service interface {
	Create(ctx context.Context, actor *domain.User, regulationID uuid.UUID, input domain.CreateArticleInput, meta domain.RequestMeta) (*domain.Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	ListByRegulation(ctx context.Context, regulationID uuid.UUID) ([]domain.Article, error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateArticleInput, meta domain.RequestMeta) (*domain.Article, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error
}

type service struct {
	articleRepo repository.ArticleRepository
	regRepo     repository.RegulationRepository
	policy      *workflow.Policy
	validate    *validator.Validate
}

func NewService(articleRepo repository.ArticleRepository, regRepo repository.RegulationRepository, policy *workflow.Policy, validate *validator.Validate) Service {
	return &service{
		articleRepo: articleRepo,
		regRepo:     regRepo,
		policy:      policy,
		validate:    validate,
	}
}

func (s *service) guardParent(ctx context.Context, actor *domain.User, regulationID uuid.UUID) error {
	reg, err := s.regRepo.GetByID(ctx, regulationID)
	if err != nil {
		return err
	}
	return s.policy.Can(actor.Role, workflow.ActionEdit, reg.Status)
}

func (s *service) Create(ctx context.Context, actor *domain.User, regulationID uuid.UUID, input domain.CreateArticleInput, meta domain.RequestMeta) (*domain.Article, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.guardParent(ctx, actor, regulationID); err != nil {
		return nil, err
	}

	article := &domain.Article{
		ID:           uuid.New(),
		RegulationID: regulationID,
		Title:        input.Title,
		Content:      input.Content,
		Type:         input.Type,
		Reference:    input.Reference,
	}

	newValue, _ := json.Marshal(article)
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditCreate,
		EntityType: entityType,
		EntityID:   &article.ID,
		Details:    fmt.Sprintf("Created article %s", article.Reference),
		NewValue:   newValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}

	if err := s.articleRepo.Create(ctx, article, entry); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *service) ListByRegulation(ctx context.Context, regulationID uuid.UUID) ([]domain.Article, error) {
	if _, err := s.regRepo.GetByID(ctx, regulationID); err != nil {
		return nil, err
	}
	return s.articleRepo.ListByRegulation(ctx, regulationID)
}

func (s *service) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateArticleInput, meta domain.RequestMeta) (*domain.Article, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardParent(ctx, actor, article.RegulationID); err != nil {
		return nil, err
	}

	oldValue, _ := json.Marshal(article)

	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.Type != nil {
		article.Type = *input.Type
	}
	if input.Reference != nil {
		article.Reference = *input.Reference
	}

	newValue, _ := json.Marshal(article)
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditUpdate,
		EntityType: entityType,
		EntityID:   &article.ID,
		Details:    fmt.Sprintf("Updated article %s", article.Reference),
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}

	if err := s.articleRepo.Update(ctx, article, entry); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardParent(ctx, actor, article.RegulationID); err != nil {
		return err
	}

	oldValue, _ := json.Marshal(article)
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditDelete,
		EntityType: entityType,
		EntityID:   &article.ID,
		Details:    fmt.Sprintf("Deleted article %s", article.Reference),
		OldValue:   oldValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}

	return s.articleRepo.Delete(ctx, id, entry)
}
