package testutils

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

// CreateTestImages writes one small raw image and the same 8x8 codestream as
// JP2 and J2K into dir, and returns their paths.
func CreateTestImages(t *testing.T, dir string) (raw, jp2, j2k string) {
	raw = filepath.Join(dir, "sample.bmp")
	WriteBMP(t, raw, 8, 8)
	cs := Codestream{Width: 8, Height: 8, Levels: 2}.Bytes()
	CreateTestFilesWithContent(t, dir, map[string]string{
		"sample.jp2": string(JP2(cs)),
		"sample.j2k": string(cs),
	})
	return raw, filepath.Join(dir, "sample.jp2"), filepath.Join(dir, "sample.j2k")
}

// WriteBMP writes a grey 24-bit uncompressed bitmap of the given size
func WriteBMP(t *testing.T, path string, width, height int) {
	t.Helper()

	stride := (width*3 + 3) &^ 3
	pixels := stride * height
	buf := make([]byte, 54+pixels)

	// File header
	copy(buf, "BM")
	binary.LittleEndian.PutUint32(buf[2:], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[10:], 54)

	// Info header
	binary.LittleEndian.PutUint32(buf[14:], 40)
	binary.LittleEndian.PutUint32(buf[18:], uint32(width))
	binary.LittleEndian.PutUint32(buf[22:], uint32(height))
	binary.LittleEndian.PutUint16(buf[26:], 1)
	binary.LittleEndian.PutUint16(buf[28:], 24)
	binary.LittleEndian.PutUint32(buf[34:], uint32(pixels))

	for i := 54; i < len(buf); i++ {
		buf[i] = 0x80
	}
	require.NoError(t, os.WriteFile(path, buf, 0644))
}

// Codestream describes a synthetic JPEG 2000 main header
type Codestream struct {
	Width      uint32
	Height     uint32
	Levels     byte // decomposition levels, one less than resolution levels
	Order      byte // progression order code, 0 is LRCP
	Reversible bool
}

// Bytes builds SOC, SIZ with three 8-bit components, a comment, COD with five
// layers and 32*64 codeblocks, and the start of an empty tile.
func (c Codestream) Bytes() []byte {
	var b bytes.Buffer
	w := func(v interface{}) { _ = binary.Write(&b, binary.BigEndian, v) }

	w(uint16(0xff4f))

	w(uint16(0xff51))
	w(uint16(2 + 2 + 8*4 + 2 + 3*3))
	w(uint16(0))
	w([]uint32{c.Width + 4, c.Height + 2, 4, 2, c.Width, c.Height, 0, 0})
	w(uint16(3))
	for i := 0; i < 3; i++ {
		w([]byte{7, 1, 1})
	}

	comment := []byte("jp2mi")
	w(uint16(0xff64))
	w(uint16(2 + 2 + len(comment)))
	w(uint16(1))
	w(comment)

	transform := byte(0)
	if c.Reversible {
		transform = 1
	}
	w(uint16(0xff52))
	w(uint16(12))
	w([]byte{0, c.Order})
	w(uint16(5))
	w([]byte{1, c.Levels, 3, 4, 0, transform})

	w(uint16(0xff90))
	return b.Bytes()
}

// Box encodes one JP2 box
func Box(kind string, content []byte) []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, uint32(8+len(content)))
	b.WriteString(kind)
	b.Write(content)
	return b.Bytes()
}

// JP2 wraps a codestream in signature, file type and header boxes
func JP2(cs []byte) []byte {
	var b bytes.Buffer
	b.WriteString("\x00\x00\x00\x0cjP  \r\n\x87\n")
	b.Write(Box("ftyp", []byte("jp2 \x00\x00\x00\x00jp2 ")))
	b.Write(Box("jp2h", Box("ihdr", make([]byte, 14))))
	b.Write(Box("jp2c", cs))
	return b.Bytes()
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
