package domain

import (
	"time"

	"github.com/google/uuid"
)

// RegulationStatus values are defined by the active workflow definition,
// not hard-coded here. See internal/workflow.
type RegulationStatus string

type RegulationType string

const (
	TypeRegulation RegulationType = "regulation"
	TypeCircular   RegulationType = "circular"
	TypeGuideline  RegulationType = "guideline"
	TypeLaw        RegulationType = "law"
	TypeOther      RegulationType = "other"
)

func (t RegulationType) IsValid() bool {
	switch t {
	case TypeRegulation, TypeCircular, TypeGuideline, TypeLaw, TypeOther:
		return true
	default:
		return false
	}
}

type Regulation struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Reference     string           `json:"reference" db:"reference"`
	Description   string           `json:"description" db:"description"`
	Type          RegulationType   `json:"type" db:"type"`
	Status        RegulationStatus `json:"status" db:"status"`
	CreatedBy     *uuid.UUID       `json:"created_by,omitempty" db:"created_by"`
	IssueDate     *time.Time       `json:"issue_date,omitempty" db:"issue_date"`
	EffectiveDate *time.Time       `json:"effective_date,omitempty" db:"effective_date"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`

	// Assigned departments, loaded from the regulation_departments join
	// table. Never empty for a persisted regulation.
	Departments []Department `json:"departments,omitempty" db:"-"`

	Creator *User `json:"creator,omitempty" db:"-"`
}

type CreateRegulationInput struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
	// Reference is optional; when empty the service derives the next
	// PREFIX-YEAR-NNN value.
	Reference     string         `json:"reference" validate:"omitempty,max=50"`
	Description   string         `json:"description" validate:"required"`
	Type          RegulationType `json:"type" validate:"required,oneof=regulation circular guideline law other"`
	DepartmentIDs []uuid.UUID    `json:"department_ids" validate:"required,min=1"`
	IssueDate     *time.Time     `json:"issue_date,omitempty"`
	EffectiveDate *time.Time     `json:"effective_date,omitempty"`
	ExpiryDate    *time.Time     `json:"expiry_date,omitempty"`
}

type UpdateRegulationInput struct {
	Name          *string         `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description   *string         `json:"description,omitempty"`
	Type          *RegulationType `json:"type,omitempty" validate:"omitempty,oneof=regulation circular guideline law other"`
	DepartmentIDs []uuid.UUID     `json:"department_ids,omitempty" validate:"omitempty,min=1"`
	IssueDate     *time.Time      `json:"issue_date,omitempty"`
	EffectiveDate *time.Time      `json:"effective_date,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
}

type TransitionRegulationInput struct {
	ToStatus RegulationStatus `json:"to_status" validate:"required"`
	Note     *string          `json:"note,omitempty" validate:"omitempty,max=500"`
}

type RegulationFilter struct {
	Status *RegulationStatus
	Type   *RegulationType
}

// StatusCount is one row of the regulations-per-status breakdown.
type StatusCount struct {
	Status RegulationStatus `json:"status" db:"status"`
	Count  int64            `json:"count" db:"count"`
}
