package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

const entityType = "user"

// There is no self-registration; an admin provisions every account.
type Service interface {
	Create(ctx context.Context, actor *domain.User, input domain.CreateUserInput, meta domain.RequestMeta) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetAll(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error)
	AssignRole(ctx context.Context, actor *domain.User, input domain.AssignRoleInput, meta domain.RequestMeta) error
	SetDepartments(ctx context.Context, actor *domain.User, userID uuid.UUID, input domain.AssignDepartmentsInput, meta domain.RequestMeta) error
	Deactivate(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error
}

type service struct {
	userRepo  repository.UserRepository
	deptRepo  repository.DepartmentRepository
	auditRepo repository.AuditLogRepository
	validate  *validator.Validate
}

func NewService(userRepo repository.UserRepository, deptRepo repository.DepartmentRepository, auditRepo repository.AuditLogRepository, validate *validator.Validate) Service {
	return &service{
		userRepo:  userRepo,
		deptRepo:  deptRepo,
		auditRepo: auditRepo,
		validate:  validate,
	}
}

func (s *service) Create(ctx context.Context, actor *domain.User, input domain.CreateUserInput, meta domain.RequestMeta) (*domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}

	if err := s.checkDepartments(ctx, input.DepartmentIDs); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         input.Role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user, input.DepartmentIDs); err != nil {
		return nil, err
	}

	user.Departments, _ = s.userRepo.GetDepartments(ctx, user.ID)
	s.record(ctx, actor, domain.AuditCreate, user.ID, fmt.Sprintf("Created user %s with role %s", user.Email, user.Role), nil, user, meta)
	return user, nil
}

func (s *service) checkDepartments(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	depts, err := s.deptRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(depts) != len(ids) {
		return fmt.Errorf("%w: one or more departments do not exist", domain.ErrValidation)
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	user.Departments, _ = s.userRepo.GetDepartments(ctx, user.ID)
	return user, nil
}

func (s *service) GetAll(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.User], error) {
	params.Validate()

	users, total, err := s.userRepo.GetAll(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.User]{}, err
	}
	return domain.NewPaginatedResponse(users, params.Page, params.PageSize, total), nil
}

func (s *service) AssignRole(ctx context.Context, actor *domain.User, input domain.AssignRoleInput, meta domain.RequestMeta) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	before, err := s.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := s.userRepo.AssignRole(ctx, input.UserID, input.Role); err != nil {
		return err
	}

	s.record(ctx, actor, domain.AuditUpdate, input.UserID,
		fmt.Sprintf("Changed role of %s from %s to %s", before.Email, before.Role, input.Role),
		map[string]domain.UserRole{"role": before.Role},
		map[string]domain.UserRole{"role": input.Role}, meta)
	return nil
}

func (s *service) SetDepartments(ctx context.Context, actor *domain.User, userID uuid.UUID, input domain.AssignDepartmentsInput, meta domain.RequestMeta) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkDepartments(ctx, input.DepartmentIDs); err != nil {
		return err
	}

	if err := s.userRepo.SetDepartments(ctx, userID, input.DepartmentIDs); err != nil {
		return err
	}

	s.record(ctx, actor, domain.AuditUpdate, userID,
		fmt.Sprintf("Updated department assignments for %s", user.Email), nil, input.DepartmentIDs, meta)
	return nil
}

func (s *service) Deactivate(ctx context.Context, actor *domain.User, id uuid.UUID, meta domain.RequestMeta) error {
	if actor.ID == id {
		return fmt.Errorf("%w: you cannot deactivate your own account", domain.ErrValidation)
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, actor, domain.AuditDelete, id, fmt.Sprintf("Deactivated user %s", user.Email), user, nil, meta)
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
		logrus.WithError(err).WithField("entity_id", entityID).Warn("failed to record user audit event")
	}
}
