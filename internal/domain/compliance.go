package domain

import (
	"time"

	"github.com/google/uuid"
)

type ComplianceLevel string

const (
	Compliant          ComplianceLevel = "compliant"
	PartiallyCompliant ComplianceLevel = "partially_compliant"
	NonCompliant       ComplianceLevel = "non_compliant"
	NotApplicable      ComplianceLevel = "not_applicable"
)

func (l ComplianceLevel) IsValid() bool {
	switch l {
	case Compliant, PartiallyCompliant, NonCompliant, NotApplicable:
		return true
	default:
		return false
	}
}

// ComplianceStatus is one department's verdict on one article. At most one
// row exists per (article, department) pair.
type ComplianceStatus struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ArticleID    uuid.UUID       `json:"article_id" db:"article_id"`
	DepartmentID uuid.UUID       `json:"department_id" db:"department_id"`
	Status       ComplianceLevel `json:"status" db:"status"`
	Comments     string          `json:"comments" db:"comments"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy    *uuid.UUID      `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Department *Department `json:"department,omitempty" db:"-"`
}

type RecordComplianceInput struct {
	Status   ComplianceLevel `json:"status" validate:"required,oneof=compliant partially_compliant non_compliant not_applicable"`
	Comments string          `json:"comments" validate:"omitempty,max=2000"`
}

// DepartmentComplianceSummary aggregates verdict counts for one department.
type DepartmentComplianceSummary struct {
	DepartmentID       uuid.UUID `json:"department_id" db:"department_id"`
	DepartmentName     string    `json:"department_name" db:"department_name"`
	Compliant          int64     `json:"compliant" db:"compliant"`
	PartiallyCompliant int64     `json:"partially_compliant" db:"partially_compliant"`
	NonCompliant       int64     `json:"non_compliant" db:"non_compliant"`
	NotApplicable      int64     `json:"not_applicable" db:"not_applicable"`
}
