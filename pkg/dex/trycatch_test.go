package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCodeItem returns the "bar" method's code item along with the Image
// it was decoded from (callers that need both must use this, rather than
// opening a second, separately-built Image, to avoid mixing objects from
// two distinct buffers).
func sampleCodeItem(t *testing.T) (*Image, *CodeItem) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	cd, err := img.GetClassDef(0)
	require.NoError(t, err)
	it, err := img.NewClassDataItemIterator(cd)
	require.NoError(t, err)
	require.NoError(t, it.Next()) // advance past the static field to the method
	require.True(t, it.IsMethod())
	ci, err := it.CodeItem()
	require.NoError(t, err)
	require.NotNil(t, ci)
	return img, ci
}

func TestFindCatchHandlerOffsetCoversTryRange(t *testing.T) {
	_, ci := sampleCodeItem(t)
	assert.EqualValues(t, 1, FindCatchHandlerOffset(ci, 0))
	assert.EqualValues(t, 1, FindCatchHandlerOffset(ci, 3))
	assert.EqualValues(t, -1, FindCatchHandlerOffset(ci, 4))
}

func TestFindCatchHandlerOffsetNoTries(t *testing.T) {
	_, ci := sampleCodeItem(t)
	ci.TriesSize = 0
	assert.EqualValues(t, -1, FindCatchHandlerOffset(ci, 0))
}

func TestCatchHandlerIteratorCatchAll(t *testing.T) {
	_, ci := sampleCodeItem(t)
	off := FindCatchHandlerOffset(ci, 0)
	require.GreaterOrEqual(t, off, int32(0))

	it, err := NewCatchHandlerIterator(ci.CatchHandlerData(uint16(off)))
	require.NoError(t, err)

	require.True(t, it.HasNext())
	require.NoError(t, it.Next())
	assert.Equal(t, NoIndex16, it.TypeIdx())
	assert.EqualValues(t, 2, it.Address())

	assert.False(t, it.HasNext())
	assert.Error(t, it.Next())
}
