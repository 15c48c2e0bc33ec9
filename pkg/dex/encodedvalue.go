package dex

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
)

// ValueType is the low 5 bits of an encoded_value header byte.
type ValueType byte

// Value types understood by the encoded-value iterator. Method handle and
// method type tags (introduced in DEX v039) are out of scope per spec.md
// §6 ("cross-DEX method handles in v039+ are not in scope").
const (
	ValueByte       ValueType = 0x00
	ValueShort      ValueType = 0x02
	ValueChar       ValueType = 0x03
	ValueInt        ValueType = 0x04
	ValueLong       ValueType = 0x06
	ValueFloat      ValueType = 0x10
	ValueDouble     ValueType = 0x11
	ValueString     ValueType = 0x17
	ValueType_      ValueType = 0x18 // named ValueType_ to avoid clashing with the ValueType type itself
	ValueField      ValueType = 0x19
	ValueMethod     ValueType = 0x1a
	ValueEnum       ValueType = 0x1b
	ValueArray      ValueType = 0x1c
	ValueAnnotation ValueType = 0x1d
	ValueNull       ValueType = 0x1e
	ValueBoolean    ValueType = 0x1f
)

const (
	encodedValueTypeMask  = 0x1f
	encodedValueArgShift  = 5
)

// EncodedValue is one decoded element of an encoded_array.
type EncodedValue struct {
	Type ValueType

	// Populated for ValueByte/Short/Char/Int/Long (sign- or zero-extended
	// per spec.md's table).
	Int int64

	// Populated for ValueFloat/Double.
	Float float64

	// Populated for ValueBoolean.
	Bool bool

	// Populated for ValueString/Type_/Field/Method/Enum: the raw index
	// into the corresponding table. Resolving it to a name/descriptor is
	// left to the caller (spec.md §4.8: "the core itself does not
	// construct runtime objects").
	Index uint32

	// Populated for ValueArray: the nested encoded_array.
	Array []EncodedValue

	// Populated for ValueAnnotation.
	Annotation *EncodedAnnotation
}

// EncodedAnnotationElement is one (name, value) pair of an
// encoded_annotation.
type EncodedAnnotationElement struct {
	NameIdx uint32
	Value   EncodedValue
}

// EncodedAnnotation is an encoded_annotation: a type index plus a set of
// named encoded values.
type EncodedAnnotation struct {
	TypeIdx  uint32
	Elements []EncodedAnnotationElement
}

// EncodedValueIterator walks an encoded_array of static field initializers
// or annotation values.
type EncodedValueIterator struct {
	r    *bytes.Reader
	size uint32
	pos  uint32
	cur  EncodedValue
}

// NewEncodedValueIterator decodes the ULEB128 size header of an
// encoded_array at raw and returns an iterator over its elements.
func NewEncodedValueIterator(raw []byte) (*EncodedValueIterator, error) {
	r := bytes.NewReader(raw)
	size, err := readULEB128(r)
	if err != nil {
		return nil, errors.Wrap(err, "encoded_array size")
	}
	return &EncodedValueIterator{r: r, size: uint32(size)}, nil
}

// HasNext reports whether another element remains.
func (it *EncodedValueIterator) HasNext() bool { return it.pos < it.size }

// Next decodes the next element into Value().
func (it *EncodedValueIterator) Next() error {
	v, err := decodeEncodedValue(it.r)
	if err != nil {
		return err
	}
	it.cur = v
	it.pos++
	return nil
}

// Value returns the most recently decoded element.
func (it *EncodedValueIterator) Value() EncodedValue { return it.cur }

func decodeEncodedValue(r *bytes.Reader) (EncodedValue, error) {
	header, err := r.ReadByte()
	if err != nil {
		return EncodedValue{}, errors.Wrap(err, "encoded_value header")
	}
	vt := ValueType(header & encodedValueTypeMask)
	argSize := int(header>>encodedValueArgShift) + 1

	switch vt {
	case ValueByte:
		b, err := r.ReadByte()
		if err != nil {
			return EncodedValue{}, errors.Wrap(err, "encoded byte")
		}
		return EncodedValue{Type: vt, Int: int64(int8(b))}, nil

	case ValueShort:
		n, err := readSignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: vt, Int: signExtend(n, argSize*8)}, nil

	case ValueChar:
		n, err := readUnsignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: vt, Int: int64(n)}, nil

	case ValueInt:
		n, err := readUnsignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: vt, Int: signExtend(n, argSize*8)}, nil

	case ValueLong:
		n, err := readUnsignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: vt, Int: signExtend(n, argSize*8)}, nil

	case ValueFloat:
		n, err := readUnsignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		bits := n << uint((4-argSize)*8)
		return EncodedValue{Type: vt, Float: float64(math.Float32frombits(uint32(bits)))}, nil

	case ValueDouble:
		n, err := readUnsignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		bits := n << uint((8-argSize)*8)
		return EncodedValue{Type: vt, Float: math.Float64frombits(bits)}, nil

	case ValueString, ValueType_, ValueField, ValueMethod, ValueEnum:
		n, err := readUnsignedWidth(r, argSize)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: vt, Index: uint32(n)}, nil

	case ValueArray:
		size, err := readULEB128(r)
		if err != nil {
			return EncodedValue{}, errors.Wrap(err, "nested encoded_array size")
		}
		arr := make([]EncodedValue, size)
		for i := range arr {
			v, err := decodeEncodedValue(r)
			if err != nil {
				return EncodedValue{}, err
			}
			arr[i] = v
		}
		return EncodedValue{Type: vt, Array: arr}, nil

	case ValueAnnotation:
		ann, err := decodeEncodedAnnotation(r)
		if err != nil {
			return EncodedValue{}, err
		}
		return EncodedValue{Type: vt, Annotation: ann}, nil

	case ValueNull:
		return EncodedValue{Type: vt}, nil

	case ValueBoolean:
		return EncodedValue{Type: vt, Bool: (int(header>>encodedValueArgShift) & 1) != 0}, nil

	default:
		return EncodedValue{}, errors.Wrapf(ErrMalformedImage, "unknown encoded_value type 0x%x", vt)
	}
}

func decodeEncodedAnnotation(r *bytes.Reader) (*EncodedAnnotation, error) {
	typeIdx, err := readULEB128(r)
	if err != nil {
		return nil, errors.Wrap(err, "encoded_annotation type_idx")
	}
	size, err := readULEB128(r)
	if err != nil {
		return nil, errors.Wrap(err, "encoded_annotation size")
	}
	ann := &EncodedAnnotation{TypeIdx: uint32(typeIdx), Elements: make([]EncodedAnnotationElement, size)}
	for i := range ann.Elements {
		nameIdx, err := readULEB128(r)
		if err != nil {
			return nil, errors.Wrap(err, "encoded_annotation name_idx")
		}
		v, err := decodeEncodedValue(r)
		if err != nil {
			return nil, err
		}
		ann.Elements[i] = EncodedAnnotationElement{NameIdx: uint32(nameIdx), Value: v}
	}
	return ann, nil
}

// readUnsignedWidth reads n little-endian bytes into a uint64.
func readUnsignedWidth(r *bytes.Reader, n int) (uint64, error) {
	buf := make([]byte, 8)
	if _, err := readFull(r, buf[:n]); err != nil {
		return 0, errors.Wrap(err, "encoded_value payload")
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v, nil
}

func readSignedWidth(r *bytes.Reader, n int) (uint64, error) { return readUnsignedWidth(r, n) }

func signExtend(v uint64, bits int) int64 {
	shift := 64 - bits
	return int64(v<<uint(shift)) >> uint(shift)
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
