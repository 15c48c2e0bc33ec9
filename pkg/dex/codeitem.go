package dex

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const codeItemHeaderSize = 16 // registers_size, ins_size, outs_size, tries_size, debug_info_off, insns_size

// CodeItem is a zero-copy view over a code_item: a method's bytecode body
// plus its exception tables and debug-info pointer.
type CodeItem struct {
	buf []byte
	off uint32

	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16
	TriesSize     uint16
	DebugInfoOff  uint32
	InsnsSize     uint32 // in 16-bit code units

	insnsOff uint32
	triesOff uint32 // 4-byte aligned start of try_item[], valid only if TriesSize > 0
}

// GetCodeItem returns the CodeItem at codeOff, or nil when codeOff == 0
// (spec.md: "native or abstract method").
func (img *Image) GetCodeItem(codeOff uint32) (*CodeItem, error) {
	if codeOff == 0 {
		return nil, nil
	}
	if uint64(codeOff)+codeItemHeaderSize > uint64(len(img.buf)) {
		return nil, errors.Wrap(ErrBadOffset, "code_item header out of range")
	}
	buf := img.buf
	ci := &CodeItem{
		buf:           buf,
		off:           codeOff,
		RegistersSize: binary.LittleEndian.Uint16(buf[codeOff : codeOff+2]),
		InsSize:       binary.LittleEndian.Uint16(buf[codeOff+2 : codeOff+4]),
		OutsSize:      binary.LittleEndian.Uint16(buf[codeOff+4 : codeOff+6]),
		TriesSize:     binary.LittleEndian.Uint16(buf[codeOff+6 : codeOff+8]),
		DebugInfoOff:  binary.LittleEndian.Uint32(buf[codeOff+8 : codeOff+12]),
		InsnsSize:     binary.LittleEndian.Uint32(buf[codeOff+12 : codeOff+16]),
	}
	ci.insnsOff = codeOff + codeItemHeaderSize
	insnsEnd := uint64(ci.insnsOff) + uint64(ci.InsnsSize)*2
	if insnsEnd > uint64(len(buf)) {
		return nil, errors.Wrap(ErrBadOffset, "code_item insns overrun buffer")
	}
	// I6: try_item table begins at the 4-byte alignment past insns_ end.
	ci.triesOff = uint32(alignUp(insnsEnd, 4))
	if ci.TriesSize > 0 {
		triesEnd := uint64(ci.triesOff) + uint64(ci.TriesSize)*tryItemSize
		if triesEnd > uint64(len(buf)) {
			return nil, errors.Wrap(ErrBadOffset, "try_item table overruns buffer")
		}
	}
	return ci, nil
}

// Insns returns the raw 16-bit instruction code units, decoded into a
// freshly allocated slice. Callers walking a hot loop that only needs a
// handful of code units should prefer RawInsns and decode inline instead.
func (ci *CodeItem) Insns() []uint16 {
	out := make([]uint16, ci.InsnsSize)
	for i := range out {
		p := ci.insnsOff + uint32(i)*2
		out[i] = binary.LittleEndian.Uint16(ci.buf[p : p+2])
	}
	return out
}

// RawInsns returns the zero-copy byte slice backing the instruction
// stream, without decoding it into 16-bit code units. len(RawInsns()) ==
// 2*InsnsSize.
func (ci *CodeItem) RawInsns() []byte {
	return ci.buf[ci.insnsOff : ci.insnsOff+ci.InsnsSize*2]
}

func alignUp(v uint64, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
