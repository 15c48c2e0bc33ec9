package dex

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Image is a validated, immutable view over a DEX file's bytes. All
// accessors returned from an Image (records, strings, iterators) borrow
// from the buffer passed to Open and must not outlive it.
//
// Image is read-only after construction and safe for concurrent use by
// any number of goroutines without external locking, except for the
// optional host-object handle set through Handle/SetHandle (see mmap.go).
type Image struct {
	buf      []byte
	location string
	header   Header

	stringIds table[StringId]
	typeIds   table[TypeId]
	protoIds  table[ProtoId]
	fieldIds  table[FieldId]
	methodIds table[MethodId]
	classDefs table[ClassDef]

	descIndex map[string]uint32

	handle handleSlot
}

// OpenBytes validates buf as a DEX image and builds the fixed-table views
// and descriptor index over it. location is an identifying string only;
// OpenBytes never reopens or revalidates it.
func OpenBytes(buf []byte, location string) (*Image, error) {
	h, err := parseHeader(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "dex %s", location)
	}

	img := &Image{
		buf:      buf,
		location: location,
		header:   h,
	}

	img.stringIds = newTable(decodeStringIds(buf, h.StringIdsOff, h.StringIdsSize))
	img.typeIds = newTable(decodeTypeIds(buf, h.TypeIdsOff, h.TypeIdsSize))
	img.protoIds = newTable(decodeProtoIds(buf, h.ProtoIdsOff, h.ProtoIdsSize))
	img.fieldIds = newTable(decodeFieldIds(buf, h.FieldIdsOff, h.FieldIdsSize))
	img.methodIds = newTable(decodeMethodIds(buf, h.MethodIdsOff, h.MethodIdsSize))
	img.classDefs = newTable(decodeClassDefs(buf, h.ClassDefsOff, h.ClassDefsSize))

	if err := img.buildDescriptorIndex(); err != nil {
		return nil, errors.Wrapf(err, "dex %s", location)
	}

	return img, nil
}

// OpenFile reads path in its entirety and validates it as a DEX image.
// stripPrefix, if present at the front of path, is removed before the
// path is stored as the image's Location; it never causes path itself to
// be reinterpreted or reopened.
func OpenFile(path, stripPrefix string) (*Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dex: unable to read %s", path)
	}
	loc := path
	if stripPrefix != "" {
		loc = strings.TrimPrefix(loc, stripPrefix)
	}
	return OpenBytes(buf, loc)
}

// Location returns the identifying string the image was opened with.
func (img *Image) Location() string { return img.location }

// Version returns the numeric DEX format version (e.g. 35, 37, 39).
func (img *Image) Version() int { return img.header.Version() }

// Size returns the length of the underlying buffer.
func (img *Image) Size() int { return len(img.buf) }

// Header returns the raw header_item.
func (img *Image) Header() Header { return img.header }

// buildDescriptorIndex walks class_defs once, resolving each class
// descriptor and inserting it into a map; a repeated descriptor signals a
// malformed image (spec.md §4.4: "an encountered duplicate signals
// MalformedImage").
func (img *Image) buildDescriptorIndex() error {
	n := img.classDefs.Count()
	img.descIndex = make(map[string]uint32, n)
	for i := uint32(0); i < n; i++ {
		cd, _ := img.classDefs.Get(i)
		desc, ok := img.classDescriptorString(cd)
		if !ok {
			return errors.Wrapf(ErrMalformedImage, "class_def %d has invalid descriptor", i)
		}
		if _, dup := img.descIndex[desc]; dup {
			return errors.Wrapf(ErrMalformedImage, "duplicate class descriptor %q", desc)
		}
		img.descIndex[desc] = i
	}
	return nil
}

func (img *Image) classDescriptorString(cd *ClassDef) (string, bool) {
	tid, err := img.typeIds.Get(uint32(cd.ClassIdx))
	if err != nil {
		return "", false
	}
	sid, err := img.stringIds.Get(tid.DescriptorIdx)
	if err != nil {
		return "", false
	}
	data, _, err := img.stringDataAt(sid.Off)
	if err != nil {
		return "", false
	}
	return string(data), true
}
