package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTypeId(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	tid, idx, ok := img.FindTypeId([]byte("Lpkg/Foo;"))
	require.True(t, ok)
	assert.EqualValues(t, 2, idx)
	assert.Equal(t, []byte("Lpkg/Foo;"), img.GetTypeDescriptor(tid))

	_, _, ok = img.FindTypeId([]byte("Lpkg/Missing;"))
	assert.False(t, ok)
}

func TestFindFieldIdAndMethodId(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	f, idx, ok := img.FindFieldId(2, []byte("value"), 0)
	require.True(t, ok)
	assert.EqualValues(t, 0, idx)
	assert.Equal(t, []byte("value"), img.GetFieldName(f))

	m, idx, ok := img.FindMethodId(2, []byte("bar"), 0)
	require.True(t, ok)
	assert.EqualValues(t, 0, idx)
	assert.Equal(t, []byte("bar"), img.GetMethodName(m))

	_, _, ok = img.FindMethodId(2, []byte("missing"), 0)
	assert.False(t, ok)
}

func TestFindProtoId(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	p, idx, ok := img.FindProtoId(3, []uint16{0}) // (I)V
	require.True(t, ok)
	assert.EqualValues(t, 0, idx)
	assert.Equal(t, []byte("VI"), img.GetProtoShorty(p))

	_, _, ok = img.FindProtoId(3, []uint16{0, 0}) // wrong parameter count
	assert.False(t, ok)

	_, _, ok = img.FindProtoId(0, []uint16{0}) // wrong return type
	assert.False(t, ok)
}
