package dex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDebugInfoEmitsPosition(t *testing.T) {
	img, ci := sampleCodeItem(t)

	var positions []PositionEvent
	err := img.DecodeDebugInfo(ci, false, 0, func(ev PositionEvent) bool {
		positions = append(positions, ev)
		return false
	}, nil)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.EqualValues(t, 0, positions[0].Address)
	assert.EqualValues(t, 1, positions[0].Line)
}

func TestDecodeDebugInfoEmitsImplicitArgumentLocals(t *testing.T) {
	img, ci := sampleCodeItem(t)

	var locals []LocalEvent
	err := img.DecodeDebugInfo(ci, false, 0, nil, func(l LocalEvent) {
		locals = append(locals, l)
	})
	require.NoError(t, err)
	require.Len(t, locals, 2)

	this := locals[0]
	assert.True(t, this.IsThis)
	assert.EqualValues(t, 0, this.Register)
	assert.EqualValues(t, 0, this.StartAddr)
	assert.EqualValues(t, 2, this.TypeIdx) // Lpkg/Foo;

	param := locals[1]
	assert.False(t, param.IsThis)
	assert.EqualValues(t, 1, param.Register)
	assert.Equal(t, NoIndex32, param.NameIdx)
	assert.EqualValues(t, 0, param.TypeIdx) // I
}

func TestDecodeDebugInfoSkipsImplicitLocalsWithoutCallback(t *testing.T) {
	img, ci := sampleCodeItem(t)

	// method_ids has a single entry, so priming the implicit locals for
	// method 99 would fail; with a nil local callback it must not be tried.
	var positions []PositionEvent
	err := img.DecodeDebugInfo(ci, false, 99, func(ev PositionEvent) bool {
		positions = append(positions, ev)
		return false
	}, nil)
	require.NoError(t, err)
	require.Len(t, positions, 1)
}

func TestGetLineNumFromPC(t *testing.T) {
	img, ci := sampleCodeItem(t)

	line, err := img.GetLineNumFromPC(ci, false, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, line)
}

func TestGetLineNumFromPCNoDebugInfo(t *testing.T) {
	img, ci := sampleCodeItem(t)
	ci.DebugInfoOff = 0

	line, err := img.GetLineNumFromPC(ci, false, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, -1, line)
}

func TestGetLineNumFromPCNativeMethod(t *testing.T) {
	img, _ := sampleCodeItem(t)

	line, err := img.GetLineNumFromPC(nil, false, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, -2, line)
}

func TestDecodeDebugInfoPrologueEndIsAdvisory(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, HeaderSize)) // patched below; every table stays empty

	debugInfoOff := uint32(buf.Len())
	appendULEB128(&buf, 1) // line_start
	appendULEB128(&buf, 0) // parameters_size
	buf.WriteByte(dbgSetPrologueEnd)
	buf.WriteByte(0x0e) // special opcode: address+=0, line+=0
	buf.WriteByte(dbgEndSequence)

	out := buf.Bytes()
	h := out[:HeaderSize]
	copy(h[0:8], []byte("dex\n035\x00"))
	putU32LE(h[32:36], uint32(len(out)))
	putU32LE(h[36:40], HeaderSize)
	putU32LE(h[40:44], 0x12345678)

	img, err := OpenBytes(out, "prologue.dex")
	require.NoError(t, err)

	ci := &CodeItem{DebugInfoOff: debugInfoOff}

	var positions []PositionEvent
	err = img.DecodeDebugInfo(ci, false, 0, func(ev PositionEvent) bool {
		positions = append(positions, ev)
		return false
	}, nil)
	require.NoError(t, err)
	require.Len(t, positions, 1, "DBG_SET_PROLOGUE_END must not emit a position of its own")
	assert.True(t, positions[0].PrologueEnd)
	assert.EqualValues(t, 0, positions[0].Address)
	assert.EqualValues(t, 1, positions[0].Line)
}

func TestDecodeDebugInfoNoOpWithoutDebugInfo(t *testing.T) {
	img, ci := sampleCodeItem(t)
	ci.DebugInfoOff = 0
	called := false
	err := img.DecodeDebugInfo(ci, false, 0, func(PositionEvent) bool { called = true; return false }, nil)
	require.NoError(t, err)
	assert.False(t, called)
}
