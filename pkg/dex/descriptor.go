package dex

// NumTypeIds returns the number of entries in type_ids.
func (img *Image) NumTypeIds() uint32 { return img.typeIds.Count() }

// GetTypeId returns the TypeId record at index.
func (img *Image) GetTypeId(index uint32) (*TypeId, error) { return img.typeIds.Get(index) }

// IndexOfTypeId returns the index of a TypeId previously obtained from
// this image.
func (img *Image) IndexOfTypeId(id *TypeId) (uint32, error) { return img.typeIds.IndexOf(id) }

// GetTypeDescriptor returns the raw MUTF-8 descriptor bytes named by a
// TypeId.
func (img *Image) GetTypeDescriptor(t *TypeId) []byte { return img.StringByIdx(t.DescriptorIdx) }

// StringByTypeIdx resolves a type_ids index straight through to its
// descriptor bytes.
func (img *Image) StringByTypeIdx(idx uint32) ([]byte, error) {
	t, err := img.typeIds.Get(idx)
	if err != nil {
		return nil, err
	}
	return img.GetTypeDescriptor(t), nil
}

// NumClassDefs returns the number of entries in class_defs.
func (img *Image) NumClassDefs() uint32 { return img.classDefs.Count() }

// GetClassDef returns the ClassDef record at index.
func (img *Image) GetClassDef(index uint32) (*ClassDef, error) { return img.classDefs.Get(index) }

// IndexOfClassDef returns the index of a ClassDef previously obtained from
// this image.
func (img *Image) IndexOfClassDef(cd *ClassDef) (uint32, error) { return img.classDefs.IndexOf(cd) }

// GetClassDescriptor returns the class descriptor of a class definition.
func (img *Image) GetClassDescriptor(cd *ClassDef) []byte {
	b, _ := img.StringByTypeIdx(uint32(cd.ClassIdx))
	return b
}

// FindClassDef looks up a class definition by its descriptor, e.g.
// "Lp/C;". The lookup is O(1) against the map built once in Open.
func (img *Image) FindClassDef(descriptor string) (*ClassDef, uint32, bool) {
	idx, ok := img.descIndex[descriptor]
	if !ok {
		return nil, 0, false
	}
	cd, err := img.classDefs.Get(idx)
	if err != nil {
		return nil, 0, false
	}
	return cd, idx, true
}

// FindClassDefIndex is FindClassDef without materializing the record.
func (img *Image) FindClassDefIndex(descriptor string) (uint32, bool) {
	idx, ok := img.descIndex[descriptor]
	return idx, ok
}

// GetSourceFile returns the source file name of a class definition, or nil
// when SourceFileIdx is NoIndex32 (spec.md invariant I7: only the sentinel
// 0xFFFFFFFF means "no source file"; 0 is a legal string id).
func (img *Image) GetSourceFile(cd *ClassDef) []byte {
	if cd.SourceFileIdx == NoIndex32 {
		return nil
	}
	return img.StringByIdx(cd.SourceFileIdx)
}

// GetClassData returns a pointer to the raw class_data_item bytes for a
// class definition, or nil when the class carries no class data.
func (img *Image) GetClassData(cd *ClassDef) []byte {
	if cd.ClassDataOff == 0 {
		return nil
	}
	return img.buf[cd.ClassDataOff:]
}

// GetEncodedStaticFieldValuesArray returns the raw encoded_array bytes
// holding a class's static field initializers, or nil when absent.
func (img *Image) GetEncodedStaticFieldValuesArray(cd *ClassDef) []byte {
	if cd.StaticValuesOff == 0 {
		return nil
	}
	return img.buf[cd.StaticValuesOff:]
}
