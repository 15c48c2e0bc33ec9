package dex

import (
	"bytes"
	"sort"
)

// NumProtoIds returns the number of entries in proto_ids.
func (img *Image) NumProtoIds() uint32 { return img.protoIds.Count() }

// GetProtoId returns the ProtoId record at index.
func (img *Image) GetProtoId(index uint32) (*ProtoId, error) { return img.protoIds.Get(index) }

// IndexOfProtoId returns the index of a ProtoId previously obtained from
// this image.
func (img *Image) IndexOfProtoId(p *ProtoId) (uint32, error) { return img.protoIds.IndexOf(p) }

// NumFieldIds returns the number of entries in field_ids.
func (img *Image) NumFieldIds() uint32 { return img.fieldIds.Count() }

// GetFieldId returns the FieldId record at index.
func (img *Image) GetFieldId(index uint32) (*FieldId, error) { return img.fieldIds.Get(index) }

// IndexOfFieldId returns the index of a FieldId previously obtained from
// this image.
func (img *Image) IndexOfFieldId(f *FieldId) (uint32, error) { return img.fieldIds.IndexOf(f) }

// NumMethodIds returns the number of entries in method_ids.
func (img *Image) NumMethodIds() uint32 { return img.methodIds.Count() }

// GetMethodId returns the MethodId record at index.
func (img *Image) GetMethodId(index uint32) (*MethodId, error) { return img.methodIds.Get(index) }

// IndexOfMethodId returns the index of a MethodId previously obtained from
// this image.
func (img *Image) IndexOfMethodId(m *MethodId) (uint32, error) { return img.methodIds.IndexOf(m) }

// FindTypeId performs a binary search of type_ids by descriptor (invariant
// I5: type_ids is sorted by descriptor string content, same ordering as
// string_ids).
func (img *Image) FindTypeId(descriptor []byte) (*TypeId, uint32, bool) {
	n := img.typeIds.Count()
	i := uint32(sort.Search(int(n), func(i int) bool {
		t, _ := img.typeIds.Get(uint32(i))
		return bytes.Compare(img.GetTypeDescriptor(t), descriptor) >= 0
	}))
	if i >= n {
		return nil, 0, false
	}
	t, err := img.typeIds.Get(i)
	if err != nil || !bytes.Equal(img.GetTypeDescriptor(t), descriptor) {
		return nil, 0, false
	}
	return t, i, true
}

// FindFieldId performs a binary search of field_ids by the composite key
// (class_idx, name string, type_idx), the table's documented sort order.
func (img *Image) FindFieldId(classIdx uint16, name []byte, typeIdx uint16) (*FieldId, uint32, bool) {
	n := img.fieldIds.Count()
	key := func(f *FieldId) int {
		if f.ClassIdx != classIdx {
			return int(f.ClassIdx) - int(classIdx)
		}
		if c := bytes.Compare(img.StringByIdx(f.NameIdx), name); c != 0 {
			return c
		}
		return int(f.TypeIdx) - int(typeIdx)
	}
	i := uint32(sort.Search(int(n), func(i int) bool {
		f, _ := img.fieldIds.Get(uint32(i))
		return key(f) >= 0
	}))
	if i >= n {
		return nil, 0, false
	}
	f, err := img.fieldIds.Get(i)
	if err != nil || key(f) != 0 {
		return nil, 0, false
	}
	return f, i, true
}

// FindProtoId performs a binary search of proto_ids by the composite key
// (return_type_idx, param_type_idxs), the table's documented sort order
// (invariant I5: "proto_ids by (return_type, parameter list) lex order").
// The parameter list is read via GetProtoParameters, matching every other
// consumer of a ProtoId's parameters.
func (img *Image) FindProtoId(returnTypeIdx uint16, paramTypeIdxs []uint16) (*ProtoId, uint32, bool) {
	n := img.protoIds.Count()
	key := func(p *ProtoId) int {
		if p.ReturnTypeIdx != returnTypeIdx {
			return int(p.ReturnTypeIdx) - int(returnTypeIdx)
		}
		tl, err := img.GetProtoParameters(p)
		if err != nil {
			return 0
		}
		var size uint32
		if tl != nil {
			size = tl.Size()
		}
		for i := 0; i < len(paramTypeIdxs) && uint32(i) < size; i++ {
			ti, err := tl.TypeIdx(uint32(i))
			if err != nil {
				return 0
			}
			if ti != paramTypeIdxs[i] {
				return int(ti) - int(paramTypeIdxs[i])
			}
		}
		return int(size) - len(paramTypeIdxs)
	}
	i := uint32(sort.Search(int(n), func(i int) bool {
		p, _ := img.protoIds.Get(uint32(i))
		return key(p) >= 0
	}))
	if i >= n {
		return nil, 0, false
	}
	p, err := img.protoIds.Get(i)
	if err != nil || key(p) != 0 {
		return nil, 0, false
	}
	return p, i, true
}

// FindMethodId performs a binary search of method_ids by the composite key
// (class_idx, name string, proto_idx).
func (img *Image) FindMethodId(classIdx uint16, name []byte, protoIdx uint16) (*MethodId, uint32, bool) {
	n := img.methodIds.Count()
	key := func(m *MethodId) int {
		if m.ClassIdx != classIdx {
			return int(m.ClassIdx) - int(classIdx)
		}
		if c := bytes.Compare(img.StringByIdx(m.NameIdx), name); c != 0 {
			return c
		}
		return int(m.ProtoIdx) - int(protoIdx)
	}
	i := uint32(sort.Search(int(n), func(i int) bool {
		m, _ := img.methodIds.Get(uint32(i))
		return key(m) >= 0
	}))
	if i >= n {
		return nil, 0, false
	}
	m, err := img.methodIds.Get(i)
	if err != nil || key(m) != 0 {
		return nil, 0, false
	}
	return m, i, true
}
