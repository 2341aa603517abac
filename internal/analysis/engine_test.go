package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"jp2mi/internal/errors"
	"jp2mi/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codestream(width, height uint32, levels, order byte, reversible bool) []byte {
	return testutils.Codestream{Width: width, Height: height, Levels: levels, Order: order, Reversible: reversible}.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestAnalyzeBitmap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.bmp")
	testutils.WriteBMP(t, path, 16, 9)

	info, err := New().Analyze(path)
	require.NoError(t, err)
	assert.Equal(t, FormatBMP, info.Format)
	assert.Equal(t, 16, info.Width)
	assert.Equal(t, 9, info.Height)
	assert.False(t, info.IsCodestream())
	assert.Equal(t, "BMP 16x9", info.Summary())
}

func TestAnalyzeCodestream(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.j2k", codestream(640, 480, 5, 2, true))

	info, err := New().Analyze(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJ2K, info.Format)
	assert.Equal(t, 640, info.Width)
	assert.Equal(t, 480, info.Height)
	assert.Equal(t, 3, info.Components)
	assert.Equal(t, 8, info.BitDepth)
	assert.Equal(t, 6, info.Resolutions)
	assert.Equal(t, 5, info.Layers)
	assert.Equal(t, "RPCL", info.Progression)
	assert.Equal(t, "32*64", info.Codeblock)
	assert.True(t, info.Reversible)
	assert.Equal(t, "J2K 640x480, 6 resolution levels, lossless", info.Summary())
	assert.Contains(t, info.String(), "Profile: lossless")
}

func TestAnalyzeJP2(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.jp2", testutils.JP2(codestream(100, 50, 3, 0, false)))

	info, err := New().Analyze(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJP2, info.Format)
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 50, info.Height)
	assert.Equal(t, 4, info.Resolutions)
	assert.Equal(t, "LRCP", info.Progression)
	assert.False(t, info.Reversible)
	assert.Contains(t, info.ToJSON(), `"format": "jp2"`)
}

func TestAnalyzeErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		path  string
		check func(error) bool
	}{
		{"missing", filepath.Join(dir, "missing.bmp"), errors.IsFileNotFound},
		{"directory", dir, func(err error) bool { return errors.KindOf(err) == errors.InvalidPath }},
		{"text file", writeFile(t, dir, "notes.bmp", []byte("hello world")), errors.IsUnsupportedFormat},
		{"truncated codestream", writeFile(t, dir, "cut.j2k", codestream(8, 8, 1, 0, false)[:20]), errors.IsUnsupportedFormat},
		{"jp2 without codestream", writeFile(t, dir, "empty.jp2", testutils.JP2(nil)[:len(testutils.JP2(nil))-8]), errors.IsUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Analyze(tt.path)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}
