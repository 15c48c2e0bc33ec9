package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBytesValidatesHeader(t *testing.T) {
	buf := sampleDex()
	img, err := OpenBytes(buf, "sample.dex")
	require.NoError(t, err)
	assert.Equal(t, 35, img.Version())
	assert.Equal(t, len(buf), img.Size())
	assert.EqualValues(t, 8, img.NumStringIds())
	assert.EqualValues(t, 4, img.NumTypeIds())
	assert.EqualValues(t, 1, img.NumProtoIds())
	assert.EqualValues(t, 1, img.NumFieldIds())
	assert.EqualValues(t, 1, img.NumMethodIds())
	assert.EqualValues(t, 1, img.NumClassDefs())
}

func TestOpenBytesRejectsBadMagic(t *testing.T) {
	buf := sampleDex()
	buf[0] = 'x'
	_, err := OpenBytes(buf, "bad.dex")
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestOpenBytesRejectsTruncatedBuffer(t *testing.T) {
	_, err := OpenBytes(make([]byte, 4), "short.dex")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestOpenBytesRejectsBadEndian(t *testing.T) {
	buf := sampleDex()
	buf[40] = 0
	buf[41] = 0
	buf[42] = 0
	buf[43] = 0
	_, err := OpenBytes(buf, "bigendian.dex")
	assert.ErrorIs(t, err, ErrUnsupportedEndian)
}

func TestIndexOfRoundTripsThroughGet(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	for i := uint32(0); i < img.NumClassDefs(); i++ {
		cd, err := img.GetClassDef(i)
		require.NoError(t, err)
		got, err := img.IndexOfClassDef(cd)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	for i := uint32(0); i < img.NumMethodIds(); i++ {
		m, err := img.GetMethodId(i)
		require.NoError(t, err)
		got, err := img.IndexOfMethodId(m)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestGetOutOfRange(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	_, err = img.GetClassDef(img.NumClassDefs())
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFindClassDef(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	cd, idx, ok := img.FindClassDef("Lpkg/Foo;")
	require.True(t, ok)
	assert.EqualValues(t, 0, idx)
	assert.Equal(t, []byte("Lpkg/Foo;"), img.GetClassDescriptor(cd))
	assert.Equal(t, []byte("Foo.java"), img.GetSourceFile(cd))

	_, _, ok = img.FindClassDef("Lpkg/DoesNotExist;")
	assert.False(t, ok)
}

func TestGetSourceFileNoIndexSentinel(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	cd, err := img.GetClassDef(0)
	require.NoError(t, err)
	cd.SourceFileIdx = NoIndex32
	assert.Nil(t, img.GetSourceFile(cd))
}
