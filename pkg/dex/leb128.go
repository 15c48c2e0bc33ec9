package dex

import (
	"bytes"

	"github.com/pkg/errors"
)

// NoIndex32 marks an absent 32-bit index (spec sentinel NO_INDEX_32).
const NoIndex32 = uint32(0xFFFFFFFF)

// NoIndex16 marks an absent 16-bit index (spec sentinel NO_INDEX_16).
const NoIndex16 = uint16(0xFFFF)

// readULEB128 decodes an unsigned LEB128 value from r, the way
// pkg/dyld/trie.go decodes trie edge offsets: a manual shift loop over
// individual bytes rather than encoding/binary's fixed-width helpers.
func readULEB128(r *bytes.Reader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "could not parse ULEB128 value")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			return 0, errors.Wrap(ErrMalformedImage, "ULEB128 value too long")
		}
	}
	return result, nil
}

// readULEB128p1 decodes a "ULEB128 plus 1" value: the encoded value minus
// one is the semantic value, with encoded 0 meaning NoIndex32.
func readULEB128p1(r *bytes.Reader) (uint32, error) {
	v, err := readULEB128(r)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return NoIndex32, nil
	}
	return uint32(v - 1), nil
}

// readSLEB128 decodes a signed LEB128 value from r.
func readSLEB128(r *bytes.Reader) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "could not parse SLEB128 value")
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift > 63 {
			return 0, errors.Wrap(ErrMalformedImage, "SLEB128 value too long")
		}
	}
	if shift < 64 && (b&0x40) != 0 {
		result |= -1 << shift
	}
	return result, nil
}

// ulebFromBytes decodes an unsigned LEB128 value directly out of a byte
// slice at offset 0, returning the value and the number of bytes consumed.
// Used on string_data and other spots addressed by a raw offset into the
// image rather than through a sequential reader.
func ulebFromBytes(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		result |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
		if shift > 63 {
			return 0, 0, errors.Wrap(ErrMalformedImage, "ULEB128 value too long")
		}
	}
	return 0, 0, errors.Wrap(ErrTruncated, "ULEB128 ran past end of buffer")
}
