package compliance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

const entityType = "compliance_status"

type Service interface {
	// Record writes or revises a department's verdict for an article. The
	// department must be assigned to the article's regulation, and a
	// department-side actor must belong to that department.
	Record(ctx context.Context, actor *domain.User, articleID, departmentID uuid.UUID, input domain.RecordComplianceInput, meta domain.RequestMeta) (*domain.ComplianceStatus, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ComplianceStatus, error)
	SummaryByDepartment(ctx context.Context) ([]domain.DepartmentComplianceSummary, error)
}

type service struct {
	compRepo    repository.ComplianceRepository
	articleRepo repository.ArticleRepository
	regRepo     repository.RegulationRepository
	userRepo    repository.UserRepository
	validate    *validator.Validate
}

func NewService(
	compRepo repository.ComplianceRepository,
	articleRepo repository.ArticleRepository,
	regRepo repository.RegulationRepository,
	userRepo repository.UserRepository,
	validate *validator.Validate,
) Service {
	return &service{
		compRepo:    compRepo,
		articleRepo: articleRepo,
		regRepo:     regRepo,
		userRepo:    userRepo,
		validate:    validate,
	}
}

func (s *service) Record(ctx context.Context, actor *domain.User, articleID, departmentID uuid.UUID, input domain.RecordComplianceInput, meta domain.RequestMeta) (*domain.ComplianceStatus, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}

	reg, err := s.regRepo.GetByID(ctx, article.RegulationID)
	if err != nil {
		return nil, err
	}
	assigned := false
	for _, d := range reg.Departments {
		if d.ID == departmentID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, fmt.Errorf("%w: department is not assigned to regulation %s", domain.ErrValidation, reg.Reference)
	}

	if err := s.authorize(ctx, actor, departmentID); err != nil {
		return nil, err
	}

	existing, err := s.compRepo.GetByArticleAndDepartment(ctx, articleID, departmentID)
	if err != nil {
		return nil, err
	}

	cs := &domain.ComplianceStatus{
		ID:           uuid.New(),
		ArticleID:    articleID,
		DepartmentID: departmentID,
		Status:       input.Status,
		Comments:     input.Comments,
		CreatedBy:    &actor.ID,
		UpdatedBy:    &actor.ID,
	}

	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditCreate,
		EntityType: entityType,
		Details:    fmt.Sprintf("Recorded %s verdict for article %s", input.Status, article.Reference),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	entry.NewValue, _ = json.Marshal(cs)
	if existing != nil {
		entry.ActionType = domain.AuditUpdate
		entry.Details = fmt.Sprintf("Revised verdict for article %s to %s", article.Reference, input.Status)
		entry.OldValue, _ = json.Marshal(existing)
	}

	if err := s.compRepo.Upsert(ctx, cs, entry); err != nil {
		return nil, err
	}
	return cs, nil
}

// authorize admits admins and members of the target department. Compliance
// team roles review verdicts but never author them.
func (s *service) authorize(ctx context.Context, actor *domain.User, departmentID uuid.UUID) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if !actor.Role.IsDepartmentRole() {
		return fmt.Errorf("%w: role %s may not record compliance verdicts", domain.ErrAuthorization, actor.Role)
	}

	depts, err := s.userRepo.GetDepartments(ctx, actor.ID)
	if err != nil {
		return err
	}
	for _, d := range depts {
		if d.ID == departmentID {
			return nil
		}
	}
	return fmt.Errorf("%w: you do not belong to this department", domain.ErrAuthorization)
}

func (s *service) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]domain.ComplianceStatus, error) {
	if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	return s.compRepo.ListByArticle(ctx, articleID)
}

func (s *service) SummaryByDepartment(ctx context.Context) ([]domain.DepartmentComplianceSummary, error) {
	return s.compRepo.SummaryByDepartment(ctx)
}
