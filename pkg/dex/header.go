package dex

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// HeaderSize is the minimum size of a valid DEX header (spec 0x70).
const HeaderSize = 0x70

// endianConstant is the expected value of Header.EndianTag on a
// little-endian image; anything else means a byte-swapped container,
// which this package does not support.
const endianConstant = 0x12345678

// Header is the raw header_item at offset 0 of a DEX image.
type Header struct {
	Magic         [8]byte
	Checksum      uint32
	Signature     [20]byte
	FileSize      uint32
	HeaderSize    uint32
	EndianTag     uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIdsSize uint32
	StringIdsOff  uint32
	TypeIdsSize   uint32
	TypeIdsOff    uint32
	ProtoIdsSize  uint32
	ProtoIdsOff   uint32
	FieldIdsSize  uint32
	FieldIdsOff   uint32
	MethodIdsSize uint32
	MethodIdsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

// tableSpec names one of the six fixed-record tables for validation.
type tableSpec struct {
	name       string
	size       uint32
	off        uint32
	recordSize uint32
}

func parseHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, errors.Wrap(ErrTruncated, "buffer shorter than header")
	}

	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, errors.Wrap(err, "unable to decode dex header")
	}

	if h.Magic[0] != 'd' || h.Magic[1] != 'e' || h.Magic[2] != 'x' || h.Magic[3] != '\n' {
		return h, errors.Wrapf(ErrBadMagic, "magic %q", h.Magic[:4])
	}
	if h.Magic[7] != 0 {
		return h, errors.Wrap(ErrBadVersion, "missing version terminator")
	}
	for _, d := range h.Magic[4:7] {
		if d < '0' || d > '9' {
			return h, errors.Wrap(ErrBadVersion, "non-numeric version digits")
		}
	}

	if h.EndianTag != endianConstant {
		return h, errors.Wrapf(ErrUnsupportedEndian, "tag 0x%x", h.EndianTag)
	}

	if uint64(h.FileSize) > uint64(len(buf)) {
		return h, errors.Wrapf(ErrTruncated, "file_size %d > buffer %d", h.FileSize, len(buf))
	}

	if h.HeaderSize < HeaderSize {
		return h, errors.Wrapf(ErrMalformedImage, "header_size %d < %d", h.HeaderSize, HeaderSize)
	}

	for _, t := range h.tables() {
		if err := checkTableBounds(t, uint64(len(buf))); err != nil {
			return h, err
		}
	}

	if h.TypeIdsSize > 65536 {
		return h, errors.Wrapf(ErrMalformedImage, "type_ids_size %d exceeds 65536", h.TypeIdsSize)
	}
	if h.ProtoIdsSize > 65536 {
		return h, errors.Wrapf(ErrMalformedImage, "proto_ids_size %d exceeds 65536", h.ProtoIdsSize)
	}

	return h, nil
}

func (h *Header) tables() []tableSpec {
	return []tableSpec{
		{"string_ids", h.StringIdsSize, h.StringIdsOff, stringIdSize},
		{"type_ids", h.TypeIdsSize, h.TypeIdsOff, typeIdSize},
		{"proto_ids", h.ProtoIdsSize, h.ProtoIdsOff, protoIdSize},
		{"field_ids", h.FieldIdsSize, h.FieldIdsOff, fieldIdSize},
		{"method_ids", h.MethodIdsSize, h.MethodIdsOff, methodIdSize},
		{"class_defs", h.ClassDefsSize, h.ClassDefsOff, classDefSize},
	}
}

// checkTableBounds implements invariant I2: off + size*recordSize must fit
// in the buffer, and off must be 4-byte aligned whenever size > 0.
func checkTableBounds(t tableSpec, bufLen uint64) error {
	if t.size == 0 {
		return nil
	}
	end := uint64(t.off) + uint64(t.size)*uint64(t.recordSize)
	if end > bufLen {
		return errors.Wrapf(ErrBadOffset, "%s: off %d size %d overruns buffer of %d bytes", t.name, t.off, t.size, bufLen)
	}
	if t.off%4 != 0 {
		return errors.Wrapf(ErrBadAlignment, "%s: off %d not 4-byte aligned", t.name, t.off)
	}
	return nil
}

// Version returns the numeric DEX format version parsed from bytes 4-7 of
// the magic (e.g. 35, 37, 39).
func (h *Header) Version() int {
	v := 0
	for _, d := range h.Magic[4:7] {
		v = v*10 + int(d-'0')
	}
	return v
}
