package dex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULEB128RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<35 + 7} {
		var buf bytes.Buffer
		appendULEB128(&buf, v)
		got, err := readULEB128(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSLEB128RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, 64, -65, 1 << 20, -(1 << 20)} {
		var buf bytes.Buffer
		appendSLEB128(&buf, v)
		got, err := readSLEB128(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestULEB128p1NoIndexSentinel(t *testing.T) {
	var buf bytes.Buffer
	appendULEB128p1(&buf, NoIndex32)
	got, err := readULEB128p1(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, NoIndex32, got)

	buf.Reset()
	appendULEB128p1(&buf, 41)
	got, err = readULEB128p1(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.EqualValues(t, 41, got)
}

func TestULEB128TruncatedErrors(t *testing.T) {
	_, err := readULEB128(bytes.NewReader([]byte{0x80}))
	assert.Error(t, err)
}
