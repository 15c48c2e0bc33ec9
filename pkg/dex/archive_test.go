package dex

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenArchiveExtractsClassesDex(t *testing.T) {
	dexBytes := sampleDex()

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	w, err := zw.Create("classes.dex")
	require.NoError(t, err)
	_, err = w.Write(dexBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	apkPath := filepath.Join(t.TempDir(), "sample.apk")
	require.NoError(t, os.WriteFile(apkPath, zbuf.Bytes(), 0o644))

	img, err := OpenArchive(apkPath)
	require.NoError(t, err)
	assert.Equal(t, apkPath+"!classes.dex", img.Location())
	assert.EqualValues(t, 1, img.NumClassDefs())
}

func TestOpenArchiveMissingEntry(t *testing.T) {
	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	w, err := zw.Create("not-classes.dex")
	require.NoError(t, err)
	_, err = w.Write([]byte("irrelevant"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	apkPath := filepath.Join(t.TempDir(), "empty.apk")
	require.NoError(t, os.WriteFile(apkPath, zbuf.Bytes(), 0o644))

	_, err = OpenArchive(apkPath)
	assert.Error(t, err)
}
