package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecEncodeDecodeRoundTrip(t *testing.T) {
	c := NewCodec(nil, nil)
	state := Initial("add 2 water")
	state.ProvidedParams["product"] = "water"

	blob, err := c.Encode(state)
	require.NoError(t, err)

	decoded, err := c.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, state.OriginalInstruction, decoded.OriginalInstruction)
	require.Equal(t, "water", decoded.ProvidedParams["product"])
	require.Equal(t, CurrentSchemaVersion, decoded.SchemaVersion)
}

func TestCodecEncodeWritesHashWhenEnabled(t *testing.T) {
	c := NewCodec(nil, nil)
	c.WriteHash = true
	blob, err := c.Encode(Initial("hi"))
	require.NoError(t, err)

	_, err = c.Decode(blob)
	require.NoError(t, err)

	blob[20] ^= 0xFF
	_, err = c.Decode(blob)
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestCodecDecodeRejectsShortBlob(t *testing.T) {
	c := NewCodec(nil, nil)
	_, err := c.Decode([]byte("short"))
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestCodecDecodeRejectsBadMagic(t *testing.T) {
	c := NewCodec(nil, nil)
	blob, err := c.Encode(Initial("hi"))
	require.NoError(t, err)
	blob[0] = 'X'

	_, err = c.Decode(blob)
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestCodecDecodeRejectsPayloadLengthMismatch(t *testing.T) {
	c := NewCodec(nil, nil)
	blob, err := c.Encode(Initial("hi"))
	require.NoError(t, err)

	truncated := blob[:len(blob)-1]
	_, err = c.Decode(truncated)
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestCodecDecodeMigratesOlderVersion(t *testing.T) {
	migrations := NewMigrationRegistry()
	migrations.Register(0, func(tree map[string]any) (map[string]any, error) {
		tree["providedParams"] = map[string]any{}
		return tree, nil
	})
	c := NewCodec(migrations, nil)

	old := NewCodec(nil, nil)
	blob, err := old.Encode(Initial("hi"))
	require.NoError(t, err)
	// Force the header's version field back to 0 so Decode exercises the
	// migration chain on an otherwise-valid payload.
	blob[5] = 0

	decoded, err := c.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, decoded.SchemaVersion)
}

func TestCodecDecodeMaterializesWorkingContextPayload(t *testing.T) {
	payloads := NewPayloadTypeRegistry()
	payloads.Register("queryRefinement", func(raw any) (any, error) {
		var out queryRefinement
		if err := DecodeInto(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	c := NewCodec(nil, payloads)

	state := Initial("hi")
	state.WorkingContext = &WorkingContext{ContextType: "queryRefinement", Payload: queryRefinement{Filters: []string{"active"}}}

	blob, err := c.Encode(state)
	require.NoError(t, err)

	decoded, err := c.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, queryRefinement{Filters: []string{"active"}}, decoded.WorkingContext.Payload)
}

func TestBlobSummary(t *testing.T) {
	c := NewCodec(nil, nil)
	blob, err := c.Encode(Initial("hi"))
	require.NoError(t, err)

	summary, err := BlobSummary(blob)
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, summary.Version)
	require.Equal(t, len(blob)-blobHeaderSize, summary.PayloadSize)
}

func TestToReadableJSON(t *testing.T) {
	c := NewCodec(nil, nil)
	blob, err := c.Encode(Initial("hi"))
	require.NoError(t, err)

	out, err := c.ToReadableJSON(blob)
	require.NoError(t, err)
	require.Contains(t, string(out), "originalInstruction")
}
