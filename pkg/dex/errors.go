package dex

import "github.com/pkg/errors"

// Sentinel error kinds returned by Open and by accessors on a validated
// image. Use errors.Is to test for a specific kind; Open wraps these with
// the image's location and a short reason via errors.Wrap/Wrapf.
var (
	ErrBadMagic          = errors.New("dex: bad magic")
	ErrBadVersion        = errors.New("dex: bad version")
	ErrUnsupportedEndian = errors.New("dex: unsupported endian tag")
	ErrTruncated         = errors.New("dex: truncated image")
	ErrBadOffset         = errors.New("dex: offset out of range")
	ErrBadAlignment      = errors.New("dex: misaligned section")
	ErrMalformedImage    = errors.New("dex: malformed image")
	ErrOutOfRange        = errors.New("dex: index out of range")
)
