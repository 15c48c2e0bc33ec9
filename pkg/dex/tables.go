package dex

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
)

// StringId is a string_id_item: an offset to MUTF-8 string data.
type StringId struct {
	Off uint32
}

// TypeId is a type_id_item: an index into string_ids naming the descriptor.
type TypeId struct {
	DescriptorIdx uint32
}

// ProtoId is a proto_id_item.
type ProtoId struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint16
	pad           uint16
	ParametersOff uint32
}

// FieldId is a field_id_item.
type FieldId struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

// MethodId is a method_id_item.
type MethodId struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

// ClassDef is a class_def_item. The field order and sizes follow the
// original ART dex_file.h layout; spec.md's prose table omits
// SourceFileIdx, but invariant I7 ("source_file_idx = NO_INDEX_32 means no
// source file") only makes sense if the field exists, so it is kept here.
type ClassDef struct {
	ClassIdx        uint16
	pad1            uint16
	AccessFlags     uint32
	SuperclassIdx   uint16
	pad2            uint16
	InterfacesOff   uint32
	SourceFileIdx   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

const (
	stringIdSize = uint32(unsafe.Sizeof(StringId{}))
	typeIdSize   = uint32(unsafe.Sizeof(TypeId{}))
	protoIdSize  = uint32(unsafe.Sizeof(ProtoId{}))
	fieldIdSize  = uint32(unsafe.Sizeof(FieldId{}))
	methodIdSize = uint32(unsafe.Sizeof(MethodId{}))
	classDefSize = uint32(unsafe.Sizeof(ClassDef{}))
)

// table is a typed, bounds-checked random-access view over a fixed-record
// section of the image. Records are decoded once at construction time into
// a Go slice (a construction-time copy into typed arrays rather than a
// zero-copy view of the image bytes); Get and IndexOf never allocate.
type table[T any] struct {
	records []T
}

func newTable[T any](records []T) table[T] {
	return table[T]{records: records}
}

// Count returns the number of records in the table.
func (t *table[T]) Count() uint32 { return uint32(len(t.records)) }

// Get returns a pointer to the record at index, or ErrOutOfRange.
func (t *table[T]) Get(index uint32) (*T, error) {
	if index >= uint32(len(t.records)) {
		return nil, errors.Wrapf(ErrOutOfRange, "index %d >= count %d", index, len(t.records))
	}
	return &t.records[index], nil
}

// IndexOf computes the index of a record known to have come from this
// table, as (record_addr - table_base) / sizeof(Record), matching the
// pointer-arithmetic contract spec.md §4.2 describes. It returns
// ErrOutOfRange if rec does not point within this table's backing slice.
func (t *table[T]) IndexOf(rec *T) (uint32, error) {
	if len(t.records) == 0 {
		return 0, errors.Wrap(ErrOutOfRange, "empty table")
	}
	var zero T
	sz := unsafe.Sizeof(zero)
	base := uintptr(unsafe.Pointer(&t.records[0]))
	addr := uintptr(unsafe.Pointer(rec))
	if addr < base {
		return 0, errors.Wrap(ErrOutOfRange, "record precedes table base")
	}
	diff := addr - base
	if diff%sz != 0 {
		return 0, errors.Wrap(ErrOutOfRange, "record misaligned with table stride")
	}
	idx := uint64(diff / sz)
	if idx >= uint64(len(t.records)) {
		return 0, errors.Wrap(ErrOutOfRange, "record past table end")
	}
	return uint32(idx), nil
}

// The decode* helpers below read a fixed-record table directly out of the
// image bytes with encoding/binary's endian-aware accessors rather than
// binary.Read + reflection, since several records (ProtoId, ClassDef)
// carry unexported padding fields that reflection cannot set.

func decodeStringIds(buf []byte, off, size uint32) []StringId {
	out := make([]StringId, size)
	for i := range out {
		p := buf[off+uint32(i)*stringIdSize:]
		out[i] = StringId{Off: binary.LittleEndian.Uint32(p)}
	}
	return out
}

func decodeTypeIds(buf []byte, off, size uint32) []TypeId {
	out := make([]TypeId, size)
	for i := range out {
		p := buf[off+uint32(i)*typeIdSize:]
		out[i] = TypeId{DescriptorIdx: binary.LittleEndian.Uint32(p)}
	}
	return out
}

func decodeProtoIds(buf []byte, off, size uint32) []ProtoId {
	out := make([]ProtoId, size)
	for i := range out {
		p := buf[off+uint32(i)*protoIdSize:]
		out[i] = ProtoId{
			ShortyIdx:     binary.LittleEndian.Uint32(p[0:4]),
			ReturnTypeIdx: binary.LittleEndian.Uint16(p[4:6]),
			ParametersOff: binary.LittleEndian.Uint32(p[8:12]),
		}
	}
	return out
}

func decodeFieldIds(buf []byte, off, size uint32) []FieldId {
	out := make([]FieldId, size)
	for i := range out {
		p := buf[off+uint32(i)*fieldIdSize:]
		out[i] = FieldId{
			ClassIdx: binary.LittleEndian.Uint16(p[0:2]),
			TypeIdx:  binary.LittleEndian.Uint16(p[2:4]),
			NameIdx:  binary.LittleEndian.Uint32(p[4:8]),
		}
	}
	return out
}

func decodeMethodIds(buf []byte, off, size uint32) []MethodId {
	out := make([]MethodId, size)
	for i := range out {
		p := buf[off+uint32(i)*methodIdSize:]
		out[i] = MethodId{
			ClassIdx: binary.LittleEndian.Uint16(p[0:2]),
			ProtoIdx: binary.LittleEndian.Uint16(p[2:4]),
			NameIdx:  binary.LittleEndian.Uint32(p[4:8]),
		}
	}
	return out
}

func decodeClassDefs(buf []byte, off, size uint32) []ClassDef {
	out := make([]ClassDef, size)
	for i := range out {
		p := buf[off+uint32(i)*classDefSize:]
		out[i] = ClassDef{
			ClassIdx:        binary.LittleEndian.Uint16(p[0:2]),
			AccessFlags:     binary.LittleEndian.Uint32(p[4:8]),
			SuperclassIdx:   binary.LittleEndian.Uint16(p[8:10]),
			InterfacesOff:   binary.LittleEndian.Uint32(p[12:16]),
			SourceFileIdx:   binary.LittleEndian.Uint32(p[16:20]),
			AnnotationsOff:  binary.LittleEndian.Uint32(p[20:24]),
			ClassDataOff:    binary.LittleEndian.Uint32(p[24:28]),
			StaticValuesOff: binary.LittleEndian.Uint32(p[28:32]),
		}
	}
	return out
}
