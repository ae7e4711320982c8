package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruno-anjos/httpagent/wire"
)

func TestAsByteSeqString(t *testing.T) {
	b, err := wire.AsByteSeq("hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
}

func TestAsByteSeqByteSliceIsPassthrough(t *testing.T) {
	in := []byte{1, 2, 3}
	b, err := wire.AsByteSeq(in)
	require.NoError(t, err)
	assert.Equal(t, in, b)
}

func TestAsByteSeqWideStringProducesTwiceTheLength(t *testing.T) {
	b, err := wire.AsByteSeq(wire.WideString("ab"))
	require.NoError(t, err)
	assert.Len(t, b, 4)
}

type customBody struct{ payload string }

func (c customBody) AsByteSeq() []byte { return []byte("custom:" + c.payload) }

func TestAsByteSeqUsesUserHook(t *testing.T) {
	b, err := wire.AsByteSeq(customBody{payload: "x"})
	require.NoError(t, err)
	assert.Equal(t, "custom:x", string(b))
}

func TestAsByteSeqScalarFallback(t *testing.T) {
	b, err := wire.AsByteSeq(int32(1))
	require.NoError(t, err)
	assert.Len(t, b, 4)
}

func TestLoadByteSeqString(t *testing.T) {
	var s string
	err := wire.LoadByteSeq(&s, []byte("body"))
	require.NoError(t, err)
	assert.Equal(t, "body", s)
}

func TestLoadByteSeqWideStringRoundTrips(t *testing.T) {
	encoded, err := wire.AsByteSeq(wire.WideString("hi"))
	require.NoError(t, err)

	var out wire.WideString
	require.NoError(t, wire.LoadByteSeq(&out, encoded))
	assert.Equal(t, wire.WideString("hi"), out)
}

func TestQueryContentTypeDefaults(t *testing.T) {
	assert.Equal(t, "text/plain", wire.QueryContentType("x"))
	assert.Equal(t, "application/octet-stream", wire.QueryContentType([]byte{1}))
}

type typedBody struct{}

func (typedBody) ContentType() string { return "application/vnd.custom+json" }

func TestQueryContentTypeHonorsOverrideHook(t *testing.T) {
	assert.Equal(t, "application/vnd.custom+json", wire.QueryContentType(typedBody{}))
}
