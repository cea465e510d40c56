package uploads

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pixelPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func TestSniff(t *testing.T) {
	r := bytes.NewReader(pixelPNG)
	ext, err := Sniff(r)
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pixelPNG, rest, "reader must be rewound")

	_, err = Sniff(strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDisk_Upload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	disk, err := NewDisk(dir)
	require.NoError(t, err)

	url, err := disk.Upload(context.Background(), bytes.NewReader(pixelPNG), "../../abc", ".png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pixelPNG, got)
}

func TestNew_FallsBackToDisk(t *testing.T) {
	up, err := New("", t.TempDir(), nil)
	require.NoError(t, err)
	assert.IsType(t, &Disk{}, up)
}
