package dex

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// TypeList is a zero-copy view over a type_list: a 32-bit size followed by
// that many 16-bit type_id indices.
type TypeList struct {
	buf []byte
	off uint32
}

func newTypeList(buf []byte, off uint32) (*TypeList, error) {
	if uint64(off)+4 > uint64(len(buf)) {
		return nil, errors.Wrap(ErrBadOffset, "type_list header out of range")
	}
	tl := &TypeList{buf: buf, off: off}
	size := tl.Size()
	end := uint64(off) + 4 + uint64(size)*2
	if end > uint64(len(buf)) {
		return nil, errors.Wrap(ErrBadOffset, "type_list entries out of range")
	}
	return tl, nil
}

// Size returns the number of entries in the list.
func (tl *TypeList) Size() uint32 {
	return binary.LittleEndian.Uint32(tl.buf[tl.off : tl.off+4])
}

// TypeIdx returns the type_ids index of the idx'th entry.
func (tl *TypeList) TypeIdx(idx uint32) (uint16, error) {
	if idx >= tl.Size() {
		return 0, errors.Wrapf(ErrOutOfRange, "type_list index %d >= size %d", idx, tl.Size())
	}
	p := tl.off + 4 + idx*2
	return binary.LittleEndian.Uint16(tl.buf[p : p+2]), nil
}

// GetInterfacesList returns cd's interfaces type_list, or nil when the
// class implements no interfaces.
func (img *Image) GetInterfacesList(cd *ClassDef) (*TypeList, error) {
	if cd.InterfacesOff == 0 {
		return nil, nil
	}
	return newTypeList(img.buf, cd.InterfacesOff)
}

// GetProtoParameters returns the ProtoId's parameter type_list, or nil for
// a zero-argument prototype.
func (img *Image) GetProtoParameters(p *ProtoId) (*TypeList, error) {
	if p.ParametersOff == 0 {
		return nil, nil
	}
	return newTypeList(img.buf, p.ParametersOff)
}

// ParameterIterator walks a ProtoId's parameter type_list, resolving each
// entry's type descriptor (spec.md §8 scenario 6, DexFileParameterIterator
// in the original ART source).
type ParameterIterator struct {
	img *Image
	tl  *TypeList
	pos uint32
	n   uint32
}

// NewParameterIterator constructs a ParameterIterator over proto's
// parameters. A nil parameter list (zero-argument method) yields an
// iterator with HasNext() == false.
func (img *Image) NewParameterIterator(proto *ProtoId) (*ParameterIterator, error) {
	tl, err := img.GetProtoParameters(proto)
	if err != nil {
		return nil, err
	}
	it := &ParameterIterator{img: img, tl: tl}
	if tl != nil {
		it.n = tl.Size()
	}
	return it, nil
}

// HasNext reports whether another parameter remains.
func (it *ParameterIterator) HasNext() bool { return it.pos < it.n }

// Next advances to the next parameter.
func (it *ParameterIterator) Next() { it.pos++ }

// TypeIdx returns the current parameter's type_ids index.
func (it *ParameterIterator) TypeIdx() (uint16, error) { return it.tl.TypeIdx(it.pos) }

// Descriptor returns the current parameter's raw MUTF-8 descriptor bytes.
func (it *ParameterIterator) Descriptor() ([]byte, error) {
	idx, err := it.TypeIdx()
	if err != nil {
		return nil, err
	}
	return it.img.StringByTypeIdx(uint32(idx))
}
