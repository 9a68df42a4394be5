package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
)

func TestDefinition_Consistency(t *testing.T) {
	for _, def := range []*Definition{Standard(), Simple()} {
		t.Run(def.Name, func(t *testing.T) {
			assert.True(t, def.IsState(def.Initial), "initial must be a declared state")

			for _, s := range def.Editable {
				assert.True(t, def.IsState(s), "editable state %s must be declared", s)
			}
			for _, s := range def.Terminal {
				assert.True(t, def.IsState(s), "terminal state %s must be declared", s)
			}

			for _, tr := range def.Transitions {
				assert.True(t, def.IsState(tr.From), "edge source %s must be declared", tr.From)
				assert.True(t, def.IsState(tr.To), "edge target %s must be declared", tr.To)
				assert.NotEmpty(t, tr.Roles, "edge %s -> %s must name at least one role", tr.From, tr.To)
			}
		})
	}
}

func TestDefinition_TerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, def := range []*Definition{Standard(), Simple()} {
		for _, terminal := range def.Terminal {
			assert.Empty(t, def.TransitionsFrom(terminal),
				"%s: terminal state %s must have no outgoing edges", def.Name, terminal)
		}
	}
}

func TestDefinition_Find(t *testing.T) {
	def := Standard()

	tr, ok := def.Find(StatusDraft, StatusAwaitingReview)
	require.True(t, ok)
	assert.Equal(t, NotifyComplianceTeam, tr.Notify)

	_, ok = def.Find(StatusDraft, StatusFullyApproved)
	assert.False(t, ok, "no direct edge from draft to fully approved")

	_, ok = def.Find(StatusFullyApproved, StatusDraft)
	assert.False(t, ok, "approval is final")
}

func TestStandard_FullApprovalPath(t *testing.T) {
	def := Standard()

	path := []domain.RegulationStatus{
		StatusDraft,
		StatusAwaitingReview,
		StatusReviewedByCompliance,
		StatusActionRequired,
		StatusDeptResponseSubmitted,
		StatusAwaitingFinalApproval,
		StatusFullyApproved,
	}
	for i := 0; i < len(path)-1; i++ {
		_, ok := def.Find(path[i], path[i+1])
		assert.True(t, ok, "expected edge %s -> %s", path[i], path[i+1])
	}
}

func TestStandard_ReworkLoop(t *testing.T) {
	def := Standard()

	_, ok := def.Find(StatusDeptResponseSubmitted, StatusReturnedForRework)
	require.True(t, ok)
	_, ok = def.Find(StatusReturnedForRework, StatusDeptResponseSubmitted)
	require.True(t, ok, "rework must loop back to a new department response")
}

func TestByName(t *testing.T) {
	def, err := ByName("standard")
	require.NoError(t, err)
	assert.Equal(t, "standard", def.Name)
	assert.Len(t, def.States, 8)

	def, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, "standard", def.Name, "empty variant defaults to standard")

	def, err = ByName("simple")
	require.NoError(t, err)
	assert.Len(t, def.States, 5)

	_, err = ByName("bogus")
	assert.Error(t, err)
}
