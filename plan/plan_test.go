package plan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanStatusEmptyIsError(t *testing.T) {
	require.Equal(t, StatusError, Plan{}.Status())
}

func TestPlanStatusLoneNoActionIsNoAction(t *testing.T) {
	p := Plan{Steps: []Step{NoActionStep{Message: "nothing to do"}}}
	require.Equal(t, StatusNoAction, p.Status())
}

func TestPlanStatusNoActionMixedWithOthersIsError(t *testing.T) {
	p := Plan{Steps: []Step{
		NoActionStep{Message: "nothing to do"},
		ActionStep{},
	}}
	require.Equal(t, StatusError, p.Status())
}

func TestPlanStatusAnyErrorStepWins(t *testing.T) {
	p := Plan{Steps: []Step{
		ActionStep{},
		ErrorStep{Reason: "boom"},
	}}
	require.Equal(t, StatusError, p.Status())
}

func TestPlanStatusPendingWithoutError(t *testing.T) {
	p := Plan{Steps: []Step{
		ActionStep{},
		PendingActionStep{ActionID: "addItem", PendingParams: []PendingParam{{Name: "quantity"}}},
	}}
	require.Equal(t, StatusPending, p.Status())
}

func TestPlanStatusAllActionIsReady(t *testing.T) {
	p := Plan{Steps: []Step{ActionStep{}, ActionStep{}}}
	require.Equal(t, StatusReady, p.Status())
}

func TestPlanPendingParameterNames(t *testing.T) {
	p := Plan{Steps: []Step{
		PendingActionStep{ActionID: "addItem", PendingParams: []PendingParam{{Name: "quantity"}}},
		ActionStep{},
		PendingActionStep{ActionID: "setTier", PendingParams: []PendingParam{{Name: "tier"}}},
	}}
	require.Equal(t, []string{"quantity", "tier"}, p.PendingParameterNames())
}

func TestPlanPendingParameterNamesEmpty(t *testing.T) {
	p := Plan{Steps: []Step{ActionStep{}}}
	require.Nil(t, p.PendingParameterNames())
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusReady:    "READY",
		StatusPending:  "PENDING",
		StatusError:    "ERROR",
		StatusNoAction: "NO_ACTION",
		Status(99):     "UNKNOWN",
	}
	for status, want := range cases {
		require.Equal(t, want, status.String())
	}
}
