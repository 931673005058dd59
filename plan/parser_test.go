package plan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareJSONObject(t *testing.T) {
	rp, err := Parse(`{"message":"hi","steps":[{"actionId":"addItem"}]}`)
	require.NoError(t, err)
	require.Equal(t, "hi", rp.Message)
	require.Len(t, rp.Steps, 1)
	require.Equal(t, "addItem", rp.Steps[0].ActionID)
}

func TestParseFencedJSONBlock(t *testing.T) {
	response := "Sure thing, here's the plan:\n```json\n{\"message\":\"ok\",\"steps\":[]}\n```\nLet me know if you need anything else."
	rp, err := Parse(response)
	require.NoError(t, err)
	require.Equal(t, "ok", rp.Message)
}

func TestParseFencedBlockWithoutLanguageTag(t *testing.T) {
	response := "```\n{\"message\":\"ok\"}\n```"
	rp, err := Parse(response)
	require.NoError(t, err)
	require.Equal(t, "ok", rp.Message)
}

func TestParseBlankInputFails(t *testing.T) {
	_, err := Parse("   ")
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestParseNonJSONFails(t *testing.T) {
	_, err := Parse("I'm not sure what you mean.")
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestParseMalformedJSONFails(t *testing.T) {
	_, err := Parse(`{"message": "oops",}`)
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestRawPlanStepIsPending(t *testing.T) {
	require.True(t, RawPlanStep{Status: "pending"}.IsPending())
	require.False(t, RawPlanStep{Status: ""}.IsPending())
}
