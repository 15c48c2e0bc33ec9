package dex

import (
	"archive/zip"
	"io"

	"github.com/pkg/errors"
)

// classesDexEntry is the canonical entry name of an APK/JAR's primary DEX
// payload. Multi-dex archives (classes2.dex, classes3.dex, ...) are outside
// this package's scope (spec.md Non-goals: no multi-dex or class-path
// resolution); OpenArchive only ever looks for classes.dex.
const classesDexEntry = "classes.dex"

// OpenArchive reads a zip-format archive (APK or JAR) from path and opens
// its classes.dex entry as an Image. The returned Image's Location is
// "path!classes.dex", matching the "archive!member" convention the rest of
// the pack's archive-aware tools use for entries that don't have a
// standalone path on disk.
func OpenArchive(path string) (*Image, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dex: unable to open archive %s", path)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != classesDexEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "dex: unable to open %s in %s", classesDexEntry, path)
		}
		defer rc.Close()
		buf, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrapf(err, "dex: unable to read %s in %s", classesDexEntry, path)
		}
		return OpenBytes(buf, path+"!"+classesDexEntry)
	}
	return nil, errors.Wrapf(ErrMalformedImage, "dex: no %s entry in %s", classesDexEntry, path)
}
