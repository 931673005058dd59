package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/michaelfranz/springai-actions-go/action"
)

func TestRenderPlanningDirectiveNoActions(t *testing.T) {
	directive := renderPlanningDirective(nil)
	require.Contains(t, directive, "No actions are currently registered")
	require.Contains(t, directive, "STOP after the closing brace.")
}

func TestRenderPlanningDirectiveListsActionsAndConstraints(t *testing.T) {
	actions := []action.Descriptor{
		{
			ID:          "setTier",
			Description: "Set the loyalty tier.",
			Parameters: []action.ParameterDescriptor{
				{Name: "tier", TypeID: "string", Required: true, AllowedValues: []string{"BRONZE", "GOLD"}},
			},
		},
	}
	directive := renderPlanningDirective(actions)

	require.Contains(t, directive, "setTier: Set the loyalty tier.")
	require.Contains(t, directive, "tier (string, required) one of BRONZE/GOLD")
	require.NotContains(t, directive, "No actions are currently registered")
}

func TestConstraintSuffixRegex(t *testing.T) {
	p := action.ParameterDescriptor{AllowedRegex: "[0-9]+"}
	require.Equal(t, " matching /[0-9]+/", constraintSuffix(p))
}

func TestRequiredSuffix(t *testing.T) {
	require.Equal(t, ", required", requiredSuffix(true))
	require.Equal(t, ", optional", requiredSuffix(false))
}
