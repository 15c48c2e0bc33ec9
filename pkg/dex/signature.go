package dex

import "bytes"

// GetFieldDeclaringClassDescriptor returns the descriptor of the class that
// declares a field.
func (img *Image) GetFieldDeclaringClassDescriptor(f *FieldId) []byte {
	t, err := img.typeIds.Get(uint32(f.ClassIdx))
	if err != nil {
		return nil
	}
	return img.GetTypeDescriptor(t)
}

// GetFieldName returns a field's name string.
func (img *Image) GetFieldName(f *FieldId) []byte { return img.StringByIdx(f.NameIdx) }

// GetFieldTypeDescriptor returns a field's type descriptor.
func (img *Image) GetFieldTypeDescriptor(f *FieldId) []byte {
	t, err := img.typeIds.Get(uint32(f.TypeIdx))
	if err != nil {
		return nil
	}
	return img.GetTypeDescriptor(t)
}

// GetMethodDeclaringClassDescriptor returns the descriptor of the class
// that declares a method.
func (img *Image) GetMethodDeclaringClassDescriptor(m *MethodId) []byte {
	t, err := img.typeIds.Get(uint32(m.ClassIdx))
	if err != nil {
		return nil
	}
	return img.GetTypeDescriptor(t)
}

// GetMethodName returns a method's name string.
func (img *Image) GetMethodName(m *MethodId) []byte { return img.StringByIdx(m.NameIdx) }

// GetProtoShorty returns a prototype's shorty descriptor, e.g. "ILI".
func (img *Image) GetProtoShorty(p *ProtoId) []byte { return img.StringByIdx(p.ShortyIdx) }

// GetProtoReturnTypeDescriptor returns a prototype's return type descriptor.
func (img *Image) GetProtoReturnTypeDescriptor(p *ProtoId) []byte {
	t, err := img.typeIds.Get(uint32(p.ReturnTypeIdx))
	if err != nil {
		return nil
	}
	return img.GetTypeDescriptor(t)
}

// GetMethodReturnTypeDescriptor returns a method's return type descriptor.
func (img *Image) GetMethodReturnTypeDescriptor(m *MethodId) ([]byte, error) {
	p, err := img.protoIds.Get(uint32(m.ProtoIdx))
	if err != nil {
		return nil, err
	}
	return img.GetProtoReturnTypeDescriptor(p), nil
}

// GetMethodShorty returns a method's shorty descriptor.
func (img *Image) GetMethodShorty(m *MethodId) ([]byte, error) {
	p, err := img.protoIds.Get(uint32(m.ProtoIdx))
	if err != nil {
		return nil, err
	}
	return img.GetProtoShorty(p), nil
}

// GetMethodSignature renders a method's full descriptor-form signature,
// e.g. "(ILjava/lang/String;)V", by walking its ProtoId's parameter
// type_list and appending the return type descriptor.
func (img *Image) GetMethodSignature(m *MethodId) ([]byte, error) {
	p, err := img.protoIds.Get(uint32(m.ProtoIdx))
	if err != nil {
		return nil, err
	}
	return img.CreateMethodSignature(p)
}

// CreateMethodSignature renders a ProtoId's descriptor-form signature
// directly, without going through a MethodId.
func (img *Image) CreateMethodSignature(p *ProtoId) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('(')
	tl, err := img.GetProtoParameters(p)
	if err != nil {
		return nil, err
	}
	if tl != nil {
		it, err := img.NewParameterIterator(p)
		if err != nil {
			return nil, err
		}
		for it.HasNext() {
			d, err := it.Descriptor()
			if err != nil {
				return nil, err
			}
			buf.Write(d)
			it.Next()
		}
	}
	buf.WriteByte(')')
	buf.Write(img.GetProtoReturnTypeDescriptor(p))
	return buf.Bytes(), nil
}
