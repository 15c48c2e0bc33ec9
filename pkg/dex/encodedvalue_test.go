package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedValueIteratorDecodesStaticInt(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	cd, err := img.GetClassDef(0)
	require.NoError(t, err)

	raw := img.GetEncodedStaticFieldValuesArray(cd)
	require.NotNil(t, raw)

	it, err := NewEncodedValueIterator(raw)
	require.NoError(t, err)
	require.True(t, it.HasNext())
	require.NoError(t, it.Next())
	v := it.Value()
	assert.Equal(t, ValueInt, v.Type)
	assert.EqualValues(t, 42, v.Int)
	assert.False(t, it.HasNext())
}

func TestEncodedValueNullAndBoolean(t *testing.T) {
	arr := buildEncodedArray(t, []byte{0x1e}, []byte{0x3f})
	dit, err := NewEncodedValueIterator(arr)
	require.NoError(t, err)

	require.True(t, dit.HasNext())
	require.NoError(t, dit.Next())
	assert.Equal(t, ValueNull, dit.Value().Type)

	require.True(t, dit.HasNext())
	require.NoError(t, dit.Next())
	v := dit.Value()
	assert.Equal(t, ValueBoolean, v.Type)
	assert.True(t, v.Bool)

	require.False(t, dit.HasNext())
}

// buildEncodedArray prepends a ULEB128 element count to a concatenation of
// raw single-byte-header encoded_value entries (used for null/boolean,
// which carry no payload beyond the header byte).
func buildEncodedArray(t *testing.T, entries ...[]byte) []byte {
	t.Helper()
	out := []byte{byte(len(entries))}
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}
