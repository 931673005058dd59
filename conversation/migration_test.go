package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateNoOpAtCurrentVersion(t *testing.T) {
	m := NewMigrationRegistry()
	tree := map[string]any{"latestUserMessage": "hi"}

	out, err := m.Migrate(tree, CurrentSchemaVersion)
	require.NoError(t, err)
	require.Equal(t, tree, out)
}

func TestMigrateAppliesRegisteredChain(t *testing.T) {
	m := NewMigrationRegistry()
	m.Register(0, func(tree map[string]any) (map[string]any, error) {
		tree["schemaVersion"] = 1
		tree["providedParams"] = map[string]any{}
		return tree, nil
	})

	out, err := m.Migrate(map[string]any{"latestUserMessage": "hi"}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, out["schemaVersion"])
}

func TestMigrateMissingLinkReturnsErrMigration(t *testing.T) {
	m := NewMigrationRegistry()
	_, err := m.Migrate(map[string]any{}, 0)
	require.True(t, errors.Is(err, ErrMigration))
}

func TestMigrateWrapsTransformError(t *testing.T) {
	m := NewMigrationRegistry()
	sentinel := errors.New("corrupt field")
	m.Register(0, func(map[string]any) (map[string]any, error) { return nil, sentinel })

	_, err := m.Migrate(map[string]any{}, 0)
	require.ErrorIs(t, err, sentinel)
}
