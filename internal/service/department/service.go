package department

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

const entityType = "department"

type Service interface {
	Create(ctx context.Context, actor *domain.User, input domain.CreateDepartmentInput, meta domain.RequestMeta) (*domain.Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Department], error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateDepartmentInput, meta domain.RequestMeta) (*domain.Department, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error
}

type service struct {
	deptRepo  repository.DepartmentRepository
	auditRepo repository.AuditLogRepository
	validate  *validator.Validate
}

func NewService(deptRepo repository.DepartmentRepository, auditRepo repository.AuditLogRepository, validate *validator.Validate) Service {
	return &service{
		deptRepo:  deptRepo,
		auditRepo: auditRepo,
		validate:  validate,
	}
}

func (s *service) Create(ctx context.Context, actor *domain.User, input domain.CreateDepartmentInput, meta domain.RequestMeta) (*domain.Department, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	dept := &domain.Department{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}

	s.record(ctx, actor, domain.AuditCreate, dept.ID, fmt.Sprintf("Created department %s", dept.Name), nil, dept, meta)
	return dept, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	return s.deptRepo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Department], error) {
	params.Validate()

	depts, total, err := s.deptRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Department]{}, err
	}
	return domain.NewPaginatedResponse(depts, params.Page, params.PageSize, total), nil
}

func (s *service) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input domain.UpdateDepartmentInput, meta domain.RequestMeta) (*domain.Department, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldValue, _ := json.Marshal(dept)

	if input.Name != nil {
		dept.Name = *input.Name
	}
	if input.Description != nil {
		dept.Description = *input.Description
	}

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		return nil, err
	}

	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: domain.AuditUpdate,
		EntityType: entityType,
		EntityID:   &dept.ID,
		Details:    fmt.Sprintf("Updated department %s", dept.Name),
		OldValue:   oldValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	entry.NewValue, _ = json.Marshal(dept)
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("entity_id", dept.ID).Warn("failed to record department audit event")
	}
	return dept, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.deptRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, actor, domain.AuditDelete, id, fmt.Sprintf("Deleted department %s", dept.Name), dept, nil, meta)
	return nil
}

func (s *service) record(ctx context.Context, actor *domain.User, action domain.AuditAction, entityID uuid.UUID, details string, oldValue, newValue interface{}, meta domain.RequestMeta) {
	entry := &domain.AuditLog{
		UserID:     &actor.ID,
		ActionType: action,
		EntityType: entityType,
		EntityID:   &entityID,
		Details:    details,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if oldValue != nil {
		entry.OldValue, _ = json.Marshal(oldValue)
	}
	if newValue != nil {
		entry.NewValue, _ = json.Marshal(newValue)
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithField("entity_id", entityID).Warn("failed to record department audit event")
	}
}
