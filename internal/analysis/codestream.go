package analysis

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"jp2mi/internal/invocation"
	"jp2mi/pkg/types"
)

// Codestream markers
const (
	markerSOC = 0xff4f
	markerSIZ = 0xff51
	markerCOD = 0xff52
	markerSOT = 0xff90
	markerSOD = 0xff93
	markerEOC = 0xffd9
)

// CodestreamAnalyzer reads the SIZ and COD segments of a raw codestream
type CodestreamAnalyzer struct{}

func (a *CodestreamAnalyzer) CanHandle(format string) bool {
	return format == FormatJ2K
}

func (a *CodestreamAnalyzer) Analyze(r io.Reader, info *types.ImageInfo) error {
	return readMainHeader(r, info)
}

// JP2Analyzer finds the contiguous codestream box of a JP2 file and reads its
// main header.
type JP2Analyzer struct{}

func (a *JP2Analyzer) CanHandle(format string) bool {
	return format == FormatJP2
}

func (a *JP2Analyzer) Analyze(r io.Reader, info *types.ImageInfo) error {
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return fmt.Errorf("no codestream box: %w", err)
		}
		length := uint64(binary.BigEndian.Uint32(hdr[:4]))
		kind := string(hdr[4:])
		header := uint64(8)
		if length == 1 {
			var ext [8]byte
			if _, err := io.ReadFull(r, ext[:]); err != nil {
				return err
			}
			length = binary.BigEndian.Uint64(ext[:])
			header = 16
		}

		if kind == "jp2c" {
			return readMainHeader(r, info)
		}
		if length == 0 {
			return fmt.Errorf("box %q runs to the end of the file", kind)
		}
		if length < header {
			return fmt.Errorf("box %q has bad length %d", kind, length)
		}
		if _, err := io.CopyN(io.Discard, r, int64(length-header)); err != nil {
			return err
		}
	}
}

// readMainHeader walks the main header marker segments up to the first tile
// and fills in the image and coding style fields.
func readMainHeader(r io.Reader, info *types.ImageInfo) error {
	var soc uint16
	if err := binary.Read(r, binary.BigEndian, &soc); err != nil {
		return err
	}
	if soc != markerSOC {
		return fmt.Errorf("missing start of codestream, found %#04x", soc)
	}

	var sawSIZ, sawCOD bool
	for !(sawSIZ && sawCOD) {
		var marker uint16
		if err := binary.Read(r, binary.BigEndian, &marker); err != nil {
			return err
		}
		switch marker {
		case markerSOT, markerSOD, markerEOC:
			if !sawSIZ {
				return fmt.Errorf("main header without SIZ segment")
			}
			return nil
		}

		var length uint16
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return err
		}
		if length < 2 {
			return fmt.Errorf("marker %#04x has bad length %d", marker, length)
		}
		seg := make([]byte, length-2)
		if _, err := io.ReadFull(r, seg); err != nil {
			return err
		}

		switch marker {
		case markerSIZ:
			if err := parseSIZ(seg, info); err != nil {
				return err
			}
			sawSIZ = true
		case markerCOD:
			if err := parseCOD(seg, info); err != nil {
				return err
			}
			sawCOD = true
		}
	}
	return nil
}

// parseSIZ reads the image size and component layout
func parseSIZ(seg []byte, info *types.ImageInfo) error {
	// Rsiz(2) Xsiz Ysiz XOsiz YOsiz XTsiz YTsiz XTOsiz YTOsiz(4 each) Csiz(2)
	const fixed = 2 + 8*4 + 2
	if len(seg) < fixed+3 {
		return fmt.Errorf("SIZ segment too short")
	}
	be := binary.BigEndian
	x, y := be.Uint32(seg[2:]), be.Uint32(seg[6:])
	xo, yo := be.Uint32(seg[10:]), be.Uint32(seg[14:])
	if xo > x || yo > y {
		return fmt.Errorf("image offset outside the reference grid")
	}
	info.Width = int(x - xo)
	info.Height = int(y - yo)
	info.Components = int(be.Uint16(seg[fixed-2:]))
	info.BitDepth = int(seg[fixed]&0x7f) + 1
	return nil
}

// parseCOD reads the default coding style
func parseCOD(seg []byte, info *types.ImageInfo) error {
	// Scod(1) order(1) layers(2) mct(1) levels(1) xcb(1) ycb(1) style(1) transform(1)
	if len(seg) < 10 {
		return fmt.Errorf("COD segment too short")
	}
	order := int(seg[1])
	if order < len(invocation.ProgressionOrders) {
		info.Progression = invocation.ProgressionOrders[order]
	} else {
		info.Progression = "unknown(" + strconv.Itoa(order) + ")"
	}
	info.Layers = int(binary.BigEndian.Uint16(seg[2:]))
	info.Resolutions = int(seg[5]) + 1
	info.Codeblock = strconv.Itoa(1<<(seg[6]+2)) + "*" + strconv.Itoa(1<<(seg[7]+2))
	info.Reversible = seg[9] == 1
	return nil
}
