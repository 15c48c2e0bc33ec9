package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTypeDescriptorAndClassDescriptor(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	tid, err := img.GetTypeId(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("I"), img.GetTypeDescriptor(tid))

	cd, err := img.GetClassDef(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("Lpkg/Foo;"), img.GetClassDescriptor(cd))
}

func TestGetInterfacesListNilWhenAbsent(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)
	cd, err := img.GetClassDef(0)
	require.NoError(t, err)
	tl, err := img.GetInterfacesList(cd)
	require.NoError(t, err)
	assert.Nil(t, tl)
}
