package workflow

import (
	"fmt"

	"compliance-platform/internal/domain"
)

// NotifyTarget names the group a transition fans notifications out to.
type NotifyTarget string

const (
	NotifyNone           NotifyTarget = ""
	NotifyDepartments    NotifyTarget = "departments"
	NotifyComplianceTeam NotifyTarget = "compliance_team"
	NotifyCreator        NotifyTarget = "creator"
)

// Transition is one allowed edge of the status graph. Roles lists the actor
// roles permitted to take it.
type Transition struct {
	From   domain.RegulationStatus
	To     domain.RegulationStatus
	Roles  []domain.UserRole
	Notify NotifyTarget
}

// Definition is a complete regulation workflow: the engine is parameterized
// over this table rather than hard-coding one status set.
type Definition struct {
	Name        string
	Initial     domain.RegulationStatus
	States      []domain.RegulationStatus
	Editable    []domain.RegulationStatus
	Terminal    []domain.RegulationStatus
	Transitions []Transition
}

func contains(set []domain.RegulationStatus, s domain.RegulationStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (d *Definition) IsState(s domain.RegulationStatus) bool    { return contains(d.States, s) }
func (d *Definition) IsEditable(s domain.RegulationStatus) bool { return contains(d.Editable, s) }
func (d *Definition) IsTerminal(s domain.RegulationStatus) bool { return contains(d.Terminal, s) }

// Find returns the edge from -> to, if the definition has one.
func (d *Definition) Find(from, to domain.RegulationStatus) (Transition, bool) {
	for _, t := range d.Transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// TransitionsFrom lists the outgoing edges of a state. Empty for terminal
// states by construction.
func (d *Definition) TransitionsFrom(from domain.RegulationStatus) []Transition {
	var out []Transition
	for _, t := range d.Transitions {
		if t.From == from {
			out = append(out, t)
		}
	}
	return out
}

// Standard workflow statuses (the canonical eight-state model).
const (
	StatusDraft                 domain.RegulationStatus = "draft"
	StatusAwaitingReview        domain.RegulationStatus = "awaiting_compliance_review"
	StatusReviewedByCompliance  domain.RegulationStatus = "reviewed_by_compliance"
	StatusActionRequired        domain.RegulationStatus = "action_required_from_department"
	StatusDeptResponseSubmitted domain.RegulationStatus = "department_response_submitted"
	StatusReturnedForRework     domain.RegulationStatus = "returned_for_department_rework"
	StatusAwaitingFinalApproval domain.RegulationStatus = "awaiting_final_compliance_approval"
	StatusFullyApproved         domain.RegulationStatus = "fully_approved"
)

// Simple workflow statuses (five-state variant).
const (
	SimpleDraft      domain.RegulationStatus = "draft"
	SimplePending    domain.RegulationStatus = "pending"
	SimpleInProgress domain.RegulationStatus = "in_progress"
	SimpleApproved   domain.RegulationStatus = "approved"
	SimpleRejected   domain.RegulationStatus = "rejected"
)

var (
	makerRoles   = []domain.UserRole{domain.RoleComplianceMaker}
	checkerRoles = []domain.UserRole{domain.RoleComplianceChecker}
	deptRoles    = []domain.UserRole{domain.RoleDeptMaker, domain.RoleDeptChecker}
)

// Standard returns the canonical eight-state definition.
func Standard() *Definition {
	return &Definition{
		Name:    "standard",
		Initial: StatusDraft,
		States: []domain.RegulationStatus{
			StatusDraft,
			StatusAwaitingReview,
			StatusReviewedByCompliance,
			StatusActionRequired,
			StatusDeptResponseSubmitted,
			StatusReturnedForRework,
			StatusAwaitingFinalApproval,
			StatusFullyApproved,
		},
		Editable: []domain.RegulationStatus{StatusDraft, StatusReturnedForRework},
		Terminal: []domain.RegulationStatus{StatusFullyApproved},
		Transitions: []Transition{
			{From: StatusDraft, To: StatusAwaitingReview, Roles: makerRoles, Notify: NotifyComplianceTeam},
			{From: StatusAwaitingReview, To: StatusReviewedByCompliance, Roles: checkerRoles},
			{From: StatusReviewedByCompliance, To: StatusActionRequired, Roles: checkerRoles, Notify: NotifyDepartments},
			{From: StatusReviewedByCompliance, To: StatusAwaitingFinalApproval, Roles: checkerRoles},
			{From: StatusActionRequired, To: StatusDeptResponseSubmitted, Roles: deptRoles, Notify: NotifyComplianceTeam},
			{From: StatusDeptResponseSubmitted, To: StatusReturnedForRework, Roles: checkerRoles, Notify: NotifyDepartments},
			{From: StatusReturnedForRework, To: StatusDeptResponseSubmitted, Roles: deptRoles, Notify: NotifyComplianceTeam},
			{From: StatusDeptResponseSubmitted, To: StatusAwaitingFinalApproval, Roles: checkerRoles},
			{From: StatusAwaitingFinalApproval, To: StatusFullyApproved, Roles: checkerRoles, Notify: NotifyCreator},
		},
	}
}

// Simple returns the five-state variant kept for installations migrated from
// the earlier schema.
func Simple() *Definition {
	return &Definition{
		Name:    "simple",
		Initial: SimpleDraft,
		States: []domain.RegulationStatus{
			SimpleDraft, SimplePending, SimpleInProgress, SimpleApproved, SimpleRejected,
		},
		Editable: []domain.RegulationStatus{SimpleDraft, SimpleRejected},
		Terminal: []domain.RegulationStatus{SimpleApproved},
		Transitions: []Transition{
			{From: SimpleDraft, To: SimplePending, Roles: makerRoles, Notify: NotifyComplianceTeam},
			{From: SimplePending, To: SimpleInProgress, Roles: checkerRoles, Notify: NotifyDepartments},
			{From: SimplePending, To: SimpleRejected, Roles: checkerRoles, Notify: NotifyCreator},
			{From: SimpleInProgress, To: SimpleApproved, Roles: checkerRoles, Notify: NotifyCreator},
			{From: SimpleInProgress, To: SimpleRejected, Roles: checkerRoles, Notify: NotifyCreator},
			{From: SimpleRejected, To: SimplePending, Roles: makerRoles, Notify: NotifyComplianceTeam},
		},
	}
}

// ByName resolves a configured variant name to its definition.
func ByName(name string) (*Definition, error) {
	switch name {
	case "", "standard":
		return Standard(), nil
	case "simple":
		return Simple(), nil
	default:
		return nil, fmt.Errorf("unknown workflow variant %q", name)
	}
}
