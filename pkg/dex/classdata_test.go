package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassDataItemIteratorWalksSubSequences(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	cd, err := img.GetClassDef(0)
	require.NoError(t, err)

	it, err := img.NewClassDataItemIterator(cd)
	require.NoError(t, err)
	require.NotNil(t, it)

	assert.EqualValues(t, 1, it.NumStaticFields())
	assert.EqualValues(t, 0, it.NumInstanceFields())
	assert.EqualValues(t, 0, it.NumDirectMethods())
	assert.EqualValues(t, 1, it.NumVirtualMethods())

	// record #0: the static field "value"
	require.True(t, it.HasNext())
	assert.False(t, it.IsMethod())
	assert.EqualValues(t, 0, it.MemberIndex())
	assert.EqualValues(t, 0x09, it.AccessFlags())
	require.NoError(t, it.Next())

	// record #1: the virtual method "bar"
	require.True(t, it.HasNext())
	assert.True(t, it.IsMethod())
	assert.EqualValues(t, 0, it.MemberIndex())
	assert.EqualValues(t, 0x01, it.AccessFlags())
	ci, err := it.CodeItem()
	require.NoError(t, err)
	require.NotNil(t, ci)
	assert.EqualValues(t, 4, ci.InsnsSize)
	require.NoError(t, it.Next())

	assert.False(t, it.HasNext())
}

func TestClassDataItemIteratorNilWhenAbsent(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	cd, err := img.GetClassDef(0)
	require.NoError(t, err)
	cd.ClassDataOff = 0

	it, err := img.NewClassDataItemIterator(cd)
	require.NoError(t, err)
	assert.Nil(t, it)
}

func TestCodeItemNilForNativeMethod(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	ci, err := img.GetCodeItem(0)
	require.NoError(t, err)
	assert.Nil(t, ci)
}
