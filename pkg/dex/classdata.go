package dex

import (
	"bytes"

	"github.com/pkg/errors"
)

// AccStatic is the access_flags bit marking a field or method static,
// shared by the field_id and method_id access flag encodings.
const AccStatic = 0x0008

// ClassDataItemIterator decodes a class_data_item: four LEB128-encoded
// sub-sequences (static fields, instance fields, direct methods, virtual
// methods), each delta-coding its member index against the previous entry
// in the same sub-sequence.
type ClassDataItemIterator struct {
	img *Image
	r   *bytes.Reader

	numStatic, numInstance, numDirect, numVirtual uint32
	pos                                            uint32
	lastIdx                                        uint32

	curIdx         uint32
	curAccessFlags uint32
	curCodeOff     uint32 // methods only
}

// NewClassDataItemIterator constructs an iterator over cd's class data, or
// returns (nil, nil) when the class carries no class_data_item.
func (img *Image) NewClassDataItemIterator(cd *ClassDef) (*ClassDataItemIterator, error) {
	raw := img.GetClassData(cd)
	if raw == nil {
		return nil, nil
	}
	it := &ClassDataItemIterator{img: img, r: bytes.NewReader(raw)}
	if err := it.readHeader(); err != nil {
		return nil, err
	}
	if it.endOfInstanceFields() > 0 {
		if err := it.readField(); err != nil {
			return nil, err
		}
	} else if it.endOfVirtualMethods() > 0 {
		if err := it.readMethod(); err != nil {
			return nil, err
		}
	}
	return it, nil
}

func (it *ClassDataItemIterator) readHeader() error {
	vals := make([]uint64, 4)
	for i := range vals {
		v, err := readULEB128(it.r)
		if err != nil {
			return errors.Wrap(err, "class_data_item header")
		}
		vals[i] = v
	}
	it.numStatic, it.numInstance, it.numDirect, it.numVirtual = uint32(vals[0]), uint32(vals[1]), uint32(vals[2]), uint32(vals[3])
	return nil
}

func (it *ClassDataItemIterator) endOfStaticFields() uint32   { return it.numStatic }
func (it *ClassDataItemIterator) endOfInstanceFields() uint32 { return it.endOfStaticFields() + it.numInstance }
func (it *ClassDataItemIterator) endOfDirectMethods() uint32  { return it.endOfInstanceFields() + it.numDirect }
func (it *ClassDataItemIterator) endOfVirtualMethods() uint32 { return it.endOfDirectMethods() + it.numVirtual }

func (it *ClassDataItemIterator) readField() error {
	delta, err := readULEB128(it.r)
	if err != nil {
		return errors.Wrap(err, "class_data field_idx_delta")
	}
	flags, err := readULEB128(it.r)
	if err != nil {
		return errors.Wrap(err, "class_data field access_flags")
	}
	it.curIdx = it.lastIdx + uint32(delta)
	it.curAccessFlags = uint32(flags)
	return nil
}

func (it *ClassDataItemIterator) readMethod() error {
	delta, err := readULEB128(it.r)
	if err != nil {
		return errors.Wrap(err, "class_data method_idx_delta")
	}
	flags, err := readULEB128(it.r)
	if err != nil {
		return errors.Wrap(err, "class_data method access_flags")
	}
	codeOff, err := readULEB128(it.r)
	if err != nil {
		return errors.Wrap(err, "class_data method code_off")
	}
	it.curIdx = it.lastIdx + uint32(delta)
	it.curAccessFlags = uint32(flags)
	it.curCodeOff = uint32(codeOff)
	return nil
}

// NumStaticFields, NumInstanceFields, NumDirectMethods and NumVirtualMethods
// report the size of each sub-sequence.
func (it *ClassDataItemIterator) NumStaticFields() uint32   { return it.numStatic }
func (it *ClassDataItemIterator) NumInstanceFields() uint32 { return it.numInstance }
func (it *ClassDataItemIterator) NumDirectMethods() uint32  { return it.numDirect }
func (it *ClassDataItemIterator) NumVirtualMethods() uint32 { return it.numVirtual }

func (it *ClassDataItemIterator) HasNextStaticField() bool {
	return it.pos < it.endOfStaticFields()
}
func (it *ClassDataItemIterator) HasNextInstanceField() bool {
	return it.pos >= it.endOfStaticFields() && it.pos < it.endOfInstanceFields()
}
func (it *ClassDataItemIterator) HasNextDirectMethod() bool {
	return it.pos >= it.endOfInstanceFields() && it.pos < it.endOfDirectMethods()
}
func (it *ClassDataItemIterator) HasNextVirtualMethod() bool {
	return it.pos >= it.endOfDirectMethods() && it.pos < it.endOfVirtualMethods()
}

// HasNext reports whether a current record is available to read via
// MemberIndex/AccessFlags/IsMethod/CodeItem. The constructor primes the
// first record, so the usage is read-then-advance:
//
//	for it.HasNext() {
//	    use(it.MemberIndex(), it.AccessFlags())
//	    it.Next()
//	}
func (it *ClassDataItemIterator) HasNext() bool { return it.pos < it.endOfVirtualMethods() }

// IsMethod reports whether the current record is a method (as opposed to
// a field).
func (it *ClassDataItemIterator) IsMethod() bool { return it.pos >= it.endOfInstanceFields() }

// Next discards the current record and decodes the next one, resetting the
// delta accumulator at each sub-sequence boundary.
func (it *ClassDataItemIterator) Next() error {
	it.pos++
	switch {
	case it.pos < it.endOfStaticFields():
		it.lastIdx = it.curIdx
		return it.readField()
	case it.pos == it.endOfStaticFields() && it.numInstance > 0:
		it.lastIdx = 0
		return it.readField()
	case it.pos < it.endOfInstanceFields():
		it.lastIdx = it.curIdx
		return it.readField()
	case it.pos == it.endOfInstanceFields() && it.numDirect > 0:
		it.lastIdx = 0
		return it.readMethod()
	case it.pos < it.endOfDirectMethods():
		it.lastIdx = it.curIdx
		return it.readMethod()
	case it.pos == it.endOfDirectMethods() && it.numVirtual > 0:
		it.lastIdx = 0
		return it.readMethod()
	case it.pos < it.endOfVirtualMethods():
		it.lastIdx = it.curIdx
		return it.readMethod()
	}
	return nil // past the end; caller should have checked HasNext()
}

// MemberIndex returns the field_ids or method_ids index of the current
// record (last_idx_ + the decoded delta).
func (it *ClassDataItemIterator) MemberIndex() uint32 { return it.curIdx }

// AccessFlags returns the decoded access flags of the current record.
func (it *ClassDataItemIterator) AccessFlags() uint32 { return it.curAccessFlags }

// CodeItem returns the current method's code item, or nil for a
// native/abstract method (code_off == 0). Only valid while the iterator is
// positioned on a method.
func (it *ClassDataItemIterator) CodeItem() (*CodeItem, error) {
	return it.img.GetCodeItem(it.curCodeOff)
}

// CodeItemOffset returns the raw code_off of the current method.
func (it *ClassDataItemIterator) CodeItemOffset() uint32 { return it.curCodeOff }
