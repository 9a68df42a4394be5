package regulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service/notification"
	"compliance-platform/internal/service/search"
	"compliance-platform/internal/workflow"
)

const entityType = "regulation"

type Service interface {
	Create(ctx context.Context, actor *domain.User, input domain.CreateRegulationInput, meta domain.RequestMeta) (*domain.Regulation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Regulation, error)
	List(ctx context.Context, filter domain.RegulationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Regulation], error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateRegulationInput, meta domain.RequestMeta) (*domain.Regulation, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error
	// Transition moves the regulation along one edge of the workflow
	// graph. The status swap and its audit entry commit atomically;
	// notification fan-out and index sync run after the commit and never
	// fail the request.
	Transition(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.TransitionRegulationInput, meta domain.RequestMeta) (*domain.Regulation, error)
	// AvailableTransitions lists the target statuses the actor may move
	// the regulation to from its current state.
	AvailableTransitions(ctx context.Context, actor *domain.User, id uuid.UUID) ([]domain.RegulationStatus, error)
	AuditTrail(ctx context.Context, id uuid.UUID) ([]domain.AuditLog, error)
}

type service struct {
	regRepo   repository.RegulationRepository
	deptRepo  repository.DepartmentRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	policy    *workflow.Policy
	notifier  notification.Service
	search    search.Service
	validate  *validator.Validate
	refPrefix string
}

func NewService(
	repos *repository.Repositories,
	policy *workflow.Policy,
	notifier notification.Service,
	searchSvc search.Service,
	validate *validator.Validate,
	refPrefix string,
) Service {
	return &service{
		regRepo:   repos.Regulation,
		deptRepo:  repos.Department,
		userRepo:  repos.User,
		auditRepo: repos.AuditLog,
		policy:    policy,
		notifier:  notifier,
		search:    searchSvc,
		validate:  validate,
		refPrefix: refPrefix,
	}
}

func (s *service) Create(ctx context.Context, actor *domain.User, input domain.CreateRegulationInput, meta domain.RequestMeta) (*domain.Regulation, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	def := s.policy.Definition()
	if err := s.policy.Can(actor.Role, workflow.ActionCreate, def.Initial); err != nil {
		return nil, err
	}

	depts, err := s.deptRepo.GetByIDs(ctx, input.DepartmentIDs)
	if err != nil {
		return nil, err
	}
	if len(depts) != len(input.DepartmentIDs) {
		return nil, fmt.Errorf("%w: one or more departments do not exist", domain.ErrValidation)
	}

	generated := input.Reference == ""
	reference := input.Reference
	if generated {
		if reference, err = NextReference(ctx, s.regRepo, s.refPrefix); err != nil {
			return nil, err
		}
	}

	reg := &domain.Regulation{
		ID:            uuid.New(),
		Name:          input.Name,
		Reference:     reference,
		Description:   input.Description,
		Type:          input.Type,
		Status:        def.Initial,
		CreatedBy:     &actor.ID,
		IssueDate:     input.IssueDate,
		EffectiveDate: input.EffectiveDate,
		ExpiryDate:    input.ExpiryDate,
	}

	err = s.regRepo.Create(ctx, reg, input.DepartmentIDs, s.createEntry(actor, reg, meta))
	if errors.Is(err, domain.ErrConflict) && generated {
		// A concurrent create took the generated reference. Re-derive once
		// from the new maximum; a second collision surfaces as a conflict.
		if reg.Reference, err = NextReference(ctx, s.regRepo, s.refPrefix); err != nil {
			return nil, err
		}
		err = s.regRepo.Create(ctx, reg, input.DepartmentIDs, s.createEntry(actor, reg, meta))
	}
	if err != nil {
		return nil, err
	}

	reg.Departments = depts
	reg.Creator = actor
	s.search.Sync(ctx, reg)
	return reg, nil
}

func (s *service) createEntry(actor *domain.User, reg *domain.Regulation, meta domain.RequestMeta) *domain.AuditLog {
	newValue, _ := json.Marshal(reg)
	return &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditCreate,
		EntityType: entityType,
		EntityID:   &reg.ID,
		Details:    fmt.Sprintf("Created regulation %s", reg.Reference),
		NewValue:   newValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Regulation, error) {
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.CreatedBy != nil {
		if creator, err := s.userRepo.GetByID(ctx, *reg.CreatedBy); err == nil && creator != nil {
			reg.Creator = creator
		}
	}
	return reg, nil
}

func (s *service) List(ctx context.Context, filter domain.RegulationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Regulation], error) {
	params.Validate()

	regs, total, err := s.regRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Regulation]{}, err
	}
	return domain.NewPaginatedResponse(regs, params.Page, params.PageSize, total), nil
}

func (s *service) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateRegulationInput, meta domain.RequestMeta) (*domain.Regulation, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Can(actor.Role, workflow.ActionEdit, reg.Status); err != nil {
		return nil, err
	}

	// Snapshot before any field changes so the audit row's old_value is the
	// pre-update state, department assignments included.
	oldValue, _ := json.Marshal(reg)

	if input.DepartmentIDs != nil {
		depts, err := s.deptRepo.GetByIDs(ctx, input.DepartmentIDs)
		if err != nil {
			return nil, err
		}
		if len(depts) != len(input.DepartmentIDs) {
			return nil, fmt.Errorf("%w: one or more departments do not exist", domain.ErrValidation)
		}
		reg.Departments = depts
	}

	if input.Name != nil {
		reg.Name = *input.Name
	}
	if input.Description != nil {
		reg.Description = *input.Description
	}
	if input.Type != nil {
		reg.Type = *input.Type
	}
	if input.IssueDate != nil {
		reg.IssueDate = input.IssueDate
	}
	if input.EffectiveDate != nil {
		reg.EffectiveDate = input.EffectiveDate
	}
	if input.ExpiryDate != nil {
		reg.ExpiryDate = input.ExpiryDate
	}

	newValue, _ := json.Marshal(reg)
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditUpdate,
		EntityType: entityType,
		EntityID:   &reg.ID,
		Details:    fmt.Sprintf("Updated regulation %s", reg.Reference),
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}

	if err := s.regRepo.Update(ctx, reg, input.DepartmentIDs, entry); err != nil {
		return nil, err
	}

	s.search.Sync(ctx, reg)
	return reg, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error {
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.policy.Can(actor.Role, workflow.ActionDelete, reg.Status); err != nil {
		return err
	}

	oldValue, _ := json.Marshal(reg)
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditDelete,
		EntityType: entityType,
		EntityID:   &reg.ID,
		Details:    fmt.Sprintf("Deleted regulation %s", reg.Reference),
		OldValue:   oldValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}

	if err := s.regRepo.Delete(ctx, id, entry); err != nil {
		return err
	}

	s.search.Remove(ctx, id)
	return nil
}

func (s *service) Transition(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.TransitionRegulationInput, meta domain.RequestMeta) (*domain.Regulation, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !s.policy.Definition().IsState(input.ToStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.ToStatus)
	}

	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.policy.CanTransition(actor.Role, reg.Status, input.ToStatus)
	if err != nil {
		return nil, err
	}

	if actor.Role.IsDepartmentRole() {
		if err := s.requireMembership(ctx, actor, reg); err != nil {
			return nil, err
		}
	}

	details := fmt.Sprintf("Moved regulation %s from %s to %s", reg.Reference, reg.Status, input.ToStatus)
	if input.Note != nil && *input.Note != "" {
		details += ": " + *input.Note
	}
	oldValue, _ := json.Marshal(map[string]domain.RegulationStatus{"status": reg.Status})
	newValue, _ := json.Marshal(map[string]domain.RegulationStatus{"status": input.ToStatus})

	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditStatusChange,
		EntityType: entityType,
		EntityID:   &reg.ID,
		Details:    details,
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}

	if err := s.regRepo.TransitionStatus(ctx, reg.ID, reg.Status, input.ToStatus, entry); err != nil {
		return nil, err
	}

	reg.Status = input.ToStatus
	s.notifier.NotifyTransition(ctx, reg, t, actor)
	s.search.Sync(ctx, reg)
	return reg, nil
}

// requireMembership ensures a department-side actor shares at least one
// department with the regulation.
func (s *service) requireMembership(ctx context.Context, actor *domain.User, reg *domain.Regulation) error {
	userDepts, err := s.userRepo.GetDepartments(ctx, actor.ID)
	if err != nil {
		return err
	}
	for _, ud := range userDepts {
		for _, rd := range reg.Departments {
			if ud.ID == rd.ID {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: regulation %s is not assigned to your department", domain.ErrAuthorization, reg.Reference)
}

func (s *service) AvailableTransitions(ctx context.Context, actor *domain.User, id uuid.UUID) ([]domain.RegulationStatus, error) {
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Department-side actors only hold edges on regulations assigned to
	// their department; listing mirrors what Transition would accept.
	if actor.Role.IsDepartmentRole() {
		if err := s.requireMembership(ctx, actor, reg); err != nil {
			if errors.Is(err, domain.ErrAuthorization) {
				return nil, nil
			}
			return nil, err
		}
	}

	var targets []domain.RegulationStatus
	for _, t := range s.policy.Definition().TransitionsFrom(reg.Status) {
		if _, err := s.policy.CanTransition(actor.Role, reg.Status, t.To); err == nil {
			targets = append(targets, t.To)
		}
	}
	return targets, nil
}

func (s *service) AuditTrail(ctx context.Context, id uuid.UUID) ([]domain.AuditLog, error) {
	if _, err := s.regRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByEntity(ctx, entityType, id)
}
