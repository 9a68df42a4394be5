package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	Email                  string     `json:"email" db:"email"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	FullName               string     `json:"full_name" db:"full_name"`
	Role                   UserRole   `json:"role" db:"role"`
	IsActive               bool       `json:"is_active" db:"is_active"`
	PasswordResetToken     *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiresAt *time.Time `json:"-" db:"password_reset_expires_at"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt              *time.Time `json:"-" db:"deleted_at"`

	// Departments the user belongs to, loaded separately from the
	// user_departments join table.
	Departments []Department `json:"departments,omitempty" db:"-"`
}

type UserRole string

const (
	RoleAdmin             UserRole = "admin"
	RoleComplianceMaker   UserRole = "compliance_maker"
	RoleComplianceChecker UserRole = "compliance_checker"
	RoleDeptMaker         UserRole = "dept_maker"
	RoleDeptChecker       UserRole = "dept_checker"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleComplianceMaker, RoleComplianceChecker, RoleDeptMaker, RoleDeptChecker:
		return true
	default:
		return false
	}
}

// ComplianceRoles are the roles that make up the central compliance team.
func ComplianceRoles() []UserRole {
	return []UserRole{RoleComplianceMaker, RoleComplianceChecker}
}

// IsDepartmentRole reports whether the role belongs to a department-side user.
func (r UserRole) IsDepartmentRole() bool {
	return r == RoleDeptMaker || r == RoleDeptChecker
}

type CreateUserInput struct {
	Email         string      `json:"email" validate:"required,email"`
	Password      string      `json:"password" validate:"required,min=8"`
	FullName      string      `json:"full_name" validate:"required,min=2"`
	Role          UserRole    `json:"role" validate:"required,oneof=admin compliance_maker compliance_checker dept_maker dept_checker"`
	DepartmentIDs []uuid.UUID `json:"department_ids,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AssignRoleInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   UserRole  `json:"role" validate:"required,oneof=admin compliance_maker compliance_checker dept_maker dept_checker"`
}

type AssignDepartmentsInput struct {
	DepartmentIDs []uuid.UUID `json:"department_ids" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
