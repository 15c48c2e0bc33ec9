// Package dex parses Dalvik Executable (DEX) container files: the format
// Android uses to package classes, fields, methods, prototypes, bytecode
// and debug information for the managed runtime.
//
// The package is read-only: OpenBytes (and OpenFile/OpenArchive) validates a
// DEX image once and returns typed, bounds-checked accessors. The six
// fixed-record tables are decoded once into typed slices; strings, class
// data, code items and other variable-length data are read in place from
// the underlying byte buffer without copying.
// Every accessor is a pure function of the image and is safe for
// concurrent use by any number of readers; nothing in this package writes
// or mutates DEX bytes.
package dex
