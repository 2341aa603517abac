// Package analysis identifies input images and reads their headers: size of
// raw bitmaps, and the coding parameters of JPEG 2000 codestreams.
package analysis

import (
	"bufio"
	"bytes"
	"io"
	"os"

	serr "jp2mi/internal/errors"
	log "jp2mi/internal/log"
	"jp2mi/pkg/types"
)

// Format names reported in ImageInfo.Format
const (
	FormatBMP = "bmp"
	FormatJP2 = "jp2"
	FormatJ2K = "j2k"
)

var (
	bmpMagic = []byte("BM")
	jp2Magic = []byte("\x00\x00\x00\x0cjP  \r\n\x87\n")
	j2kMagic = []byte{0xff, 0x4f, 0xff, 0x51}
)

// Analyzer reads the header of one image format
type Analyzer interface {
	// CanHandle reports whether this analyzer reads format
	CanHandle(format string) bool
	// Analyze fills info from the file content in r
	Analyze(r io.Reader, info *types.ImageInfo) error
}

// Engine detects image formats and delegates header parsing to analyzers
type Engine struct {
	analyzers []Analyzer
}

// registerAnalyzer adds an analyzer to the engine's list
func (e *Engine) registerAnalyzer(analyzer Analyzer) {
	e.analyzers = append(e.analyzers, analyzer)
}

// New creates an engine with the bitmap and JPEG 2000 analyzers
func New() *Engine {
	engine := &Engine{}
	engine.registerAnalyzer(&BMPAnalyzer{})
	engine.registerAnalyzer(&CodestreamAnalyzer{})
	engine.registerAnalyzer(&JP2Analyzer{})
	return engine
}

// Detect names the format of the content at the start of r, or "" when it is
// none of the supported ones.
func Detect(r *bufio.Reader) string {
	head, _ := r.Peek(len(jp2Magic))
	switch {
	case bytes.HasPrefix(head, jp2Magic):
		return FormatJP2
	case bytes.HasPrefix(head, j2kMagic):
		return FormatJ2K
	case bytes.HasPrefix(head, bmpMagic):
		return FormatBMP
	}
	return ""
}

// Analyze identifies the file at path and reads its header
func (e *Engine) Analyze(path string) (*types.ImageInfo, error) {
	logger := log.LogWithFields(log.F("path", path))

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewFileError("failed to stat file", path, serr.FileNotFound, err)
		}
		return nil, serr.NewFileError("failed to stat file", path, serr.InvalidPath, err)
	}
	if stat.IsDir() {
		return nil, serr.NewFileError("not a file", path, serr.InvalidPath, nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, serr.NewFileError("failed to open file", path, serr.InvalidPath, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	info := &types.ImageInfo{Path: path, Size: stat.Size(), Format: Detect(r)}
	if info.Format == "" {
		return nil, serr.NewFileError("not a bitmap or JPEG 2000 file", path, serr.UnsupportedFormat, nil)
	}

	for _, analyzer := range e.analyzers {
		if !analyzer.CanHandle(info.Format) {
			continue
		}
		logger.Debugf("Using analyzer %T for format %s", analyzer, info.Format)
		if err := analyzer.Analyze(r, info); err != nil {
			return nil, serr.NewFileError("failed to read image header", path, serr.UnsupportedFormat, err)
		}
		break
	}

	logger.With(log.F("format", info.Format), log.F("width", info.Width), log.F("height", info.Height)).Debug("Image analyzed")
	return info, nil
}
