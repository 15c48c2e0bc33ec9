package dex

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
)

// StringData returns the raw MUTF-8 bytes (without the trailing NUL) and
// the declared UTF-16 code-unit length for the string named by a
// string_ids index. The returned slice is a sub-slice of the image's
// buffer; it is not copied and not decoded to UTF-8/UTF-16.
func (img *Image) StringData(index uint32) ([]byte, uint32, error) {
	sid, err := img.stringIds.Get(index)
	if err != nil {
		return nil, 0, err
	}
	return img.stringDataAt(sid.Off)
}

func (img *Image) stringDataAt(off uint32) ([]byte, uint32, error) {
	if uint64(off) >= uint64(len(img.buf)) {
		return nil, 0, errors.Wrapf(ErrBadOffset, "string_data offset %d out of range", off)
	}
	utf16Len, n, err := ulebFromBytes(img.buf[off:])
	if err != nil {
		return nil, 0, errors.Wrap(err, "string_data length")
	}
	start := int(off) + n
	term := bytes.IndexByte(img.buf[start:], 0x00)
	if term < 0 {
		return nil, 0, errors.Wrap(ErrTruncated, "string_data missing NUL terminator")
	}
	return img.buf[start : start+term], uint32(utf16Len), nil
}

// StringByIdx returns the raw MUTF-8 bytes for index, or nil when
// index == NoIndex32 (spec.md's "index-less convenience").
func (img *Image) StringByIdx(index uint32) []byte {
	if index == NoIndex32 {
		return nil
	}
	data, _, err := img.StringData(index)
	if err != nil {
		return nil
	}
	return data
}

// NumStringIds returns the number of entries in string_ids.
func (img *Image) NumStringIds() uint32 { return img.stringIds.Count() }

// GetStringId returns the StringId record at index.
func (img *Image) GetStringId(index uint32) (*StringId, error) { return img.stringIds.Get(index) }

// IndexOfStringId returns the index of a StringId previously obtained from
// GetStringId on this image.
func (img *Image) IndexOfStringId(id *StringId) (uint32, error) { return img.stringIds.IndexOf(id) }

// FindStringId performs a binary search over string_ids by MUTF-8 content,
// relying on invariant I5 (string_ids sorted by referenced content). It
// returns the matching record and true, or false when not found.
func (img *Image) FindStringId(needle []byte) (*StringId, uint32, bool) {
	n := int(img.stringIds.Count())
	i := sort.Search(n, func(i int) bool {
		sid, _ := img.stringIds.Get(uint32(i))
		data, _, err := img.stringDataAt(sid.Off)
		if err != nil {
			return false
		}
		return bytes.Compare(data, needle) >= 0
	})
	if i >= n {
		return nil, 0, false
	}
	sid, _ := img.stringIds.Get(uint32(i))
	data, _, err := img.stringDataAt(sid.Off)
	if err != nil || !bytes.Equal(data, needle) {
		return nil, 0, false
	}
	return sid, uint32(i), true
}
