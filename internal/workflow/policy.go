package workflow

import (
	"fmt"

	"compliance-platform/internal/domain"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionTransition Action = "transition"
)

// Rule is one row of the permission table: the listed roles may perform
// Action while the regulation is in one of States. An empty States slice
// means any state.
type Rule struct {
	Action Action
	Roles  []domain.UserRole
	States []domain.RegulationStatus
}

// Policy maps (role, action, current state) to allow/deny. It is a pure
// predicate over a snapshot; transition edges carry their own role sets in
// the Definition.
type Policy struct {
	def   *Definition
	rules []Rule
}

func NewPolicy(def *Definition) *Policy {
	return &Policy{
		def: def,
		rules: []Rule{
			{Action: ActionCreate, Roles: []domain.UserRole{domain.RoleComplianceMaker}},
			{Action: ActionEdit, Roles: []domain.UserRole{domain.RoleComplianceMaker, domain.RoleComplianceChecker}, States: def.Editable},
			{Action: ActionDelete, Roles: []domain.UserRole{domain.RoleComplianceMaker}, States: []domain.RegulationStatus{def.Initial}},
		},
	}
}

// Can checks the table for a non-transition action. It returns
// domain.ErrAuthorization on any deny; a state violation is an authorization
// failure, never a silent no-op.
func (p *Policy) Can(role domain.UserRole, action Action, state domain.RegulationStatus) error {
	for _, rule := range p.rules {
		if rule.Action != action {
			continue
		}
		if !roleAllowed(rule.Roles, role) {
			continue
		}
		if len(rule.States) > 0 && !contains(rule.States, state) {
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: role %s may not %s a regulation in state %s",
		domain.ErrAuthorization, role, action, state)
}

// CanTransition validates the edge first, then the actor. A missing edge is
// ErrInvalidTransition; an existing edge the role may not take is
// ErrAuthorization.
func (p *Policy) CanTransition(role domain.UserRole, from, to domain.RegulationStatus) (Transition, error) {
	t, ok := p.def.Find(from, to)
	if !ok {
		return Transition{}, fmt.Errorf("%w: no edge from %s to %s", domain.ErrInvalidTransition, from, to)
	}
	if !roleAllowed(t.Roles, role) {
		return Transition{}, fmt.Errorf("%w: role %s may not move a regulation from %s to %s",
			domain.ErrAuthorization, role, from, to)
	}
	return t, nil
}

func (p *Policy) Definition() *Definition { return p.def }

func roleAllowed(roles []domain.UserRole, role domain.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
