package conversation

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const (
	blobMagic      = "CVST"
	blobHeaderSize = 44
)

// Codec encodes and decodes ConversationState to and from the framework's
// opaque blob format: a 44-byte fixed header followed by
// gzip(utf-8(JSON(state))).
//
//	offset  size  field
//	0       4     magic "CVST"
//	4       2     version (big-endian)
//	6       2     flags (reserved, always zero on encode)
//	8       32    integrity hash (optional SHA-256 over the compressed payload)
//	40      4     payload length (big-endian)
//	44      N     gzip(utf-8(JSON(state)))
type Codec struct {
	migrations *MigrationRegistry
	payloads   *PayloadTypeRegistry
	// WriteHash controls whether Encode fills the integrity-hash field. When
	// false the field is left zeroed and Decode skips hash verification.
	WriteHash bool
}

// NewCodec returns a Codec that applies migrations and materializes
// polymorphic working-context payloads via payloads.
func NewCodec(migrations *MigrationRegistry, payloads *PayloadTypeRegistry) *Codec {
	if migrations == nil {
		migrations = NewMigrationRegistry()
	}
	if payloads == nil {
		payloads = NewPayloadTypeRegistry()
	}
	return &Codec{migrations: migrations, payloads: payloads}
}

// Encode serializes state into a blob at CurrentSchemaVersion.
func (c *Codec) Encode(state ConversationState) ([]byte, error) {
	state.SchemaVersion = CurrentSchemaVersion
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("conversation: marshaling state: %w", err)
	}

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	if _, err := w.Write(payload); err != nil {
		return nil, fmt.Errorf("conversation: compressing payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("conversation: compressing payload: %w", err)
	}
	compressed := gz.Bytes()

	header := make([]byte, blobHeaderSize)
	copy(header[0:4], blobMagic)
	binary.BigEndian.PutUint16(header[4:6], uint16(CurrentSchemaVersion))
	// header[6:8] flags reserved, left zero.
	if c.WriteHash {
		sum := sha256.Sum256(compressed)
		copy(header[8:40], sum[:])
	}
	binary.BigEndian.PutUint32(header[40:44], uint32(len(compressed)))

	return append(header, compressed...), nil
}

// Decode parses a blob back into a ConversationState, applying any
// registered migrations and payload-type decoders needed to reach
// CurrentSchemaVersion.
func (c *Codec) Decode(blob []byte) (ConversationState, error) {
	var state ConversationState

	if len(blob) < blobHeaderSize {
		return state, fmt.Errorf("%w: blob shorter than header", ErrIntegrity)
	}
	if string(blob[0:4]) != blobMagic {
		return state, fmt.Errorf("%w: bad magic", ErrIntegrity)
	}
	version := int(binary.BigEndian.Uint16(blob[4:6]))
	hash := blob[8:40]
	payloadLen := binary.BigEndian.Uint32(blob[40:44])

	compressed := blob[blobHeaderSize:]
	if uint32(len(compressed)) != payloadLen {
		return state, fmt.Errorf("%w: payload length mismatch", ErrIntegrity)
	}

	if hasNonZero(hash) {
		sum := sha256.Sum256(compressed)
		if !bytes.Equal(sum[:], hash) {
			return state, fmt.Errorf("%w: hash mismatch", ErrIntegrity)
		}
	}

	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return state, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return state, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	var tree map[string]any
	if err := json.Unmarshal(payload, &tree); err != nil {
		return state, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	if version < CurrentSchemaVersion {
		tree, err = c.migrations.Migrate(tree, version)
		if err != nil {
			return state, err
		}
	}

	final, err := json.Marshal(tree)
	if err != nil {
		return state, fmt.Errorf("conversation: re-marshaling migrated tree: %w", err)
	}
	if err := json.Unmarshal(final, &state); err != nil {
		return state, fmt.Errorf("conversation: decoding state: %w", err)
	}

	if state.WorkingContext != nil {
		decoded, err := c.payloads.Decode(state.WorkingContext.ContextType, state.WorkingContext.Payload)
		if err != nil {
			return state, err
		}
		state.WorkingContext.Payload = decoded
	}
	for i := range state.TurnHistory {
		decoded, err := c.payloads.Decode(state.TurnHistory[i].ContextType, state.TurnHistory[i].Payload)
		if err != nil {
			return state, err
		}
		state.TurnHistory[i].Payload = decoded
	}

	return state, nil
}

// Summary is a debug view of a blob's header, safe to log without decoding
// the full state.
type Summary struct {
	Version     int
	PayloadSize int
}

// BlobSummary inspects a blob's header without decompressing or decoding
// its payload, for cheap logging/debugging of what a stored blob contains.
func BlobSummary(blob []byte) (Summary, error) {
	if len(blob) < blobHeaderSize {
		return Summary{}, fmt.Errorf("%w: blob shorter than header", ErrIntegrity)
	}
	if string(blob[0:4]) != blobMagic {
		return Summary{}, fmt.Errorf("%w: bad magic", ErrIntegrity)
	}
	return Summary{
		Version:     int(binary.BigEndian.Uint16(blob[4:6])),
		PayloadSize: int(binary.BigEndian.Uint32(blob[40:44])),
	}, nil
}

// ToReadableJSON returns the pretty-printed JSON of a blob's decoded state,
// without mutating anything, for debugging.
func (c *Codec) ToReadableJSON(blob []byte) ([]byte, error) {
	state, err := c.Decode(blob)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(state, "", "  ")
}

func hasNonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}
