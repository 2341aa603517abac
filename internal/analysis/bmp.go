package analysis

import (
	"io"

	"jp2mi/pkg/types"

	"golang.org/x/image/bmp"
)

// BMPAnalyzer reads the dimensions of Windows bitmaps
type BMPAnalyzer struct{}

func (a *BMPAnalyzer) CanHandle(format string) bool {
	return format == FormatBMP
}

func (a *BMPAnalyzer) Analyze(r io.Reader, info *types.ImageInfo) error {
	cfg, err := bmp.DecodeConfig(r)
	if err != nil {
		return err
	}
	info.Width = cfg.Width
	info.Height = cfg.Height
	return nil
}
