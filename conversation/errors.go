package conversation

import "errors"

var (
	// ErrIntegrity indicates a blob's magic, length, or integrity hash did
	// not check out; the blob must be treated as unreadable.
	ErrIntegrity = errors.New("conversation: blob failed integrity check")
	// ErrMigration indicates a blob's version predates the current schema
	// and no migration chain reaches the current version.
	ErrMigration = errors.New("conversation: no migration path to current schema version")
)
