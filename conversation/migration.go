package conversation

import "fmt"

// CurrentSchemaVersion is the ConversationState shape this build of the
// package natively produces and expects. Older blobs are migrated forward
// to this version during decode.
const CurrentSchemaVersion = 1

// Transform rewrites a decoded JSON tree from one schema version to the
// next. It must be a pure function of its input: the registry composes
// transforms in order and applying the chain to a current-version state
// must be the identity (no-op, since no transform is registered for it).
type Transform func(tree map[string]any) (map[string]any, error)

// MigrationRegistry holds an ordered (from -> from+1) chain of Transforms,
// keyed by the version each transform upgrades *from*.
type MigrationRegistry struct {
	transforms map[int]Transform
}

// NewMigrationRegistry returns an empty registry; Register calls wire up the
// (from, from+1) chain.
func NewMigrationRegistry() *MigrationRegistry {
	return &MigrationRegistry{transforms: make(map[int]Transform)}
}

// Register installs the transform that upgrades a JSON tree at version
// `from` to version `from+1`, replacing any existing registration for that
// version.
func (m *MigrationRegistry) Register(from int, t Transform) {
	m.transforms[from] = t
}

// Migrate applies the registered chain starting at fromVersion until the
// tree reaches CurrentSchemaVersion. A missing link anywhere in the chain
// is reported as ErrMigration.
func (m *MigrationRegistry) Migrate(tree map[string]any, fromVersion int) (map[string]any, error) {
	version := fromVersion
	for version < CurrentSchemaVersion {
		t, ok := m.transforms[version]
		if !ok {
			return nil, fmt.Errorf("%w: no transform registered for version %d", ErrMigration, version)
		}
		next, err := t(tree)
		if err != nil {
			return nil, fmt.Errorf("conversation: migrating from version %d: %w", version, err)
		}
		tree = next
		version++
	}
	return tree, nil
}
