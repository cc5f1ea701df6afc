package sqlengine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

func TestEncodeValue_String(t *testing.T) {
	v, err := EncodeValue(pdtypes.KindString, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", v)

	v, err = EncodeValue(pdtypes.KindString, "alice", "/%")
	require.NoError(t, err)
	assert.Equal(t, "alice/%", v)
}

func TestEncodeValue_Int64(t *testing.T) {
	v, err := EncodeValue(pdtypes.KindInt64, "-42", "")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), v)

	_, err = EncodeValue(pdtypes.KindInt64, "42", "/%")
	assert.ErrorIs(t, err, pdtypes.ErrTypeError)

	_, err = EncodeValue(pdtypes.KindInt64, "not-a-number", "")
	assert.ErrorIs(t, err, pdtypes.ErrTypeError)
}

func TestEncodeValue_Uint64RejectsLeadingMinus(t *testing.T) {
	v, err := EncodeValue(pdtypes.KindUint64, "42", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	_, err = EncodeValue(pdtypes.KindUint64, "-42", "")
	assert.ErrorIs(t, err, pdtypes.ErrTypeError)
}

func TestEncodeValue_Double(t *testing.T) {
	v, err := EncodeValue(pdtypes.KindDouble, "3.5", "")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = EncodeValue(pdtypes.KindDouble, "3.5", "/%")
	assert.ErrorIs(t, err, pdtypes.ErrTypeError)
}

func TestValueCodec_UUIDRoundTripCanonicalizesCase(t *testing.T) {
	id := uuid.New()
	upper := id.String()
	for i, r := range upper {
		if r >= 'a' && r <= 'f' {
			upper = upper[:i] + string(r-32) + upper[i+1:]
		}
	}

	encoded, err := EncodeValue(pdtypes.KindUUID, upper, "")
	require.NoError(t, err)

	decoded, err := DecodeValue(pdtypes.KindUUID, encoded)
	require.NoError(t, err)
	assert.Equal(t, id.String(), decoded)
}

func TestValueCodec_HexBlobRoundTrip(t *testing.T) {
	encoded, err := EncodeValue(pdtypes.KindHexBlob, "DEADBEEF", "")
	require.NoError(t, err)

	decoded, err := DecodeValue(pdtypes.KindHexBlob, encoded)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", decoded)
}

func TestEncodeValue_HexBlobOddLengthRejected(t *testing.T) {
	_, err := EncodeValue(pdtypes.KindHexBlob, "abc", "")
	assert.ErrorIs(t, err, pdtypes.ErrEmptyHexBlob)
}

func TestEncodeValue_HexBlobSuffixAppendedAfterDecodedBytes(t *testing.T) {
	v, err := EncodeValue(pdtypes.KindHexBlob, "beef", "/%")
	require.NoError(t, err)
	raw, ok := v.([]byte)
	require.True(t, ok)
	assert.Equal(t, []byte{0xbe, 0xef, '/', '%'}, raw)
}
