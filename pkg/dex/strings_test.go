package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringByIdxAndFindStringId(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	assert.Equal(t, []byte("bar"), img.StringByIdx(6))
	assert.Nil(t, img.StringByIdx(NoIndex32))

	sid, idx, ok := img.FindStringId([]byte("value"))
	require.True(t, ok)
	assert.EqualValues(t, 7, idx)
	data, utf16Len, err := img.stringDataAt(sid.Off)
	require.NoError(t, err)
	assert.Equal(t, "value", string(data))
	assert.EqualValues(t, len("value"), utf16Len)

	_, _, ok = img.FindStringId([]byte("does-not-exist"))
	assert.False(t, ok)
}

func TestStringIdsAreSorted(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	var prev []byte
	for i := uint32(0); i < img.NumStringIds(); i++ {
		sid, err := img.GetStringId(i)
		require.NoError(t, err)
		data, _, err := img.stringDataAt(sid.Off)
		require.NoError(t, err)
		if prev != nil {
			assert.LessOrEqual(t, string(prev), string(data))
		}
		prev = data
	}
}
