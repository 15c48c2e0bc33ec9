package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMethodSignature(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	m, err := img.GetMethodId(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("bar"), img.GetMethodName(m))

	sig, err := img.GetMethodSignature(m)
	require.NoError(t, err)
	assert.Equal(t, "(I)V", string(sig))

	shorty, err := img.GetMethodShorty(m)
	require.NoError(t, err)
	assert.Equal(t, "VI", string(shorty))
}

func TestParameterIterator(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	p, err := img.GetProtoId(0)
	require.NoError(t, err)

	it, err := img.NewParameterIterator(p)
	require.NoError(t, err)

	var descs []string
	for it.HasNext() {
		d, err := it.Descriptor()
		require.NoError(t, err)
		descs = append(descs, string(d))
		it.Next()
	}
	assert.Equal(t, []string{"I"}, descs)
}

func TestFieldAccessors(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	f, err := img.GetFieldId(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), img.GetFieldName(f))
	assert.Equal(t, []byte("I"), img.GetFieldTypeDescriptor(f))
	assert.Equal(t, []byte("Lpkg/Foo;"), img.GetFieldDeclaringClassDescriptor(f))
}
