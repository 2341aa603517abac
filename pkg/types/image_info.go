package types

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// ImageInfo is what analysis learned about an input image
type ImageInfo struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Size        int64  `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Components  int    `json:"components,omitempty"`
	BitDepth    int    `json:"bit_depth,omitempty"`
	Resolutions int    `json:"resolutions,omitempty"`
	Layers      int    `json:"layers,omitempty"`
	Progression string `json:"progression,omitempty"`
	Codeblock   string `json:"codeblock,omitempty"`
	Reversible  bool   `json:"reversible,omitempty"`
}

// Name returns the base name of the file
func (i *ImageInfo) Name() string {
	return filepath.Base(i.Path)
}

// IsCodestream reports whether the file carries a JPEG 2000 codestream
func (i *ImageInfo) IsCodestream() bool {
	return i.Resolutions > 0
}

// Summary is a one-line description for status bars
func (i *ImageInfo) Summary() string {
	s := fmt.Sprintf("%s %dx%d", strings.ToUpper(i.Format), i.Width, i.Height)
	if i.IsCodestream() {
		s += fmt.Sprintf(", %d resolution levels", i.Resolutions)
		if i.Reversible {
			s += ", lossless"
		}
	}
	return s
}

// ToJSON converts ImageInfo to JSON string
func (i *ImageInfo) ToJSON() string {
	jsonBytes, _ := json.MarshalIndent(i, "", "  ")
	return string(jsonBytes)
}

// String returns a human-readable representation
func (i *ImageInfo) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File: %s\n", i.Path))
	sb.WriteString(fmt.Sprintf("Format: %s\n", strings.ToUpper(i.Format)))
	sb.WriteString(fmt.Sprintf("Size: %d bytes\n", i.Size))
	sb.WriteString(fmt.Sprintf("Dimensions: %dx%d\n", i.Width, i.Height))
	if i.Components > 0 {
		sb.WriteString(fmt.Sprintf("Components: %d x %d bit\n", i.Components, i.BitDepth))
	}
	if i.IsCodestream() {
		sb.WriteString(fmt.Sprintf("Resolution levels: %d\n", i.Resolutions))
		sb.WriteString(fmt.Sprintf("Quality layers: %d\n", i.Layers))
		sb.WriteString(fmt.Sprintf("Progression: %s\n", i.Progression))
		sb.WriteString(fmt.Sprintf("Codeblock: %s\n", i.Codeblock))
		profile := "lossy"
		if i.Reversible {
			profile = "lossless"
		}
		sb.WriteString(fmt.Sprintf("Profile: %s\n", profile))
	}
	return sb.String()
}
