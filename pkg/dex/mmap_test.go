package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAndPermissions(t *testing.T) {
	img, err := OpenBytes(sampleDex(), "sample.dex")
	require.NoError(t, err)

	assert.Nil(t, img.Handle())
	img.SetHandle(42)
	assert.Equal(t, 42, img.Handle())

	assert.EqualValues(t, 0, img.Permissions())
	img.SetPermissions(PermRead | PermExecute)
	assert.Equal(t, PermRead|PermExecute, img.Permissions())
}
