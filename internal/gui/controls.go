//go:build !nogui

package gui

import (
	"fmt"
	"strconv"

	"jp2mi/internal/invocation"
	"jp2mi/internal/mode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// section is the set of widgets one control group enables and disables
// together, with an optional header that carries the group's emphasis.
type section struct {
	header *widget.Label
	items  []fyne.Disableable
}

type controls struct {
	sections map[mode.ControlGroup]*section

	selectButton *widget.Button
	inputLabel   *widget.Label
	outputLabel  *widget.Label
	status       *widget.Label

	format      *widget.RadioGroup
	profile     *widget.RadioGroup
	progression *widget.RadioGroup
	codeblock   *widget.RadioGroup
	rgb         *widget.RadioGroup

	ratio       *widget.Entry
	resolutions *widget.Entry
	decodeLevel *widget.Entry

	rawPreview        *widget.Button
	compress          *widget.Button
	compressPreview   *widget.Button
	decompress        *widget.Button
	decompressPreview *widget.Button
}

func numberEntry(initial int, least int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(initial))
	e.Validator = func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < least {
			return fmt.Errorf("enter a whole number of at least %d", least)
		}
		return nil
	}
	return e
}

func (a *App) buildControls() *controls {
	c := &controls{
		sections:    make(map[mode.ControlGroup]*section),
		inputLabel:  widget.NewLabel("No file selected"),
		outputLabel: widget.NewLabel(""),
		status:      widget.NewLabel(""),
	}
	c.inputLabel.Truncation = fyne.TextTruncateEllipsis
	c.outputLabel.Truncation = fyne.TextTruncateEllipsis

	g := a.groups
	c.format = newRadio(g.Format.Options, g.Format.Selected, g.Format.Check)
	c.profile = newRadio(g.Profile.Options, g.Profile.Selected, g.Profile.Check)
	c.progression = newRadio(g.Progression.Options, g.Progression.Selected, g.Progression.Check)
	c.codeblock = newRadio(g.Codeblock.Options, g.Codeblock.Selected, g.Codeblock.Check)
	c.rgb = newRadio(g.ForceRGB.Options, g.ForceRGB.Selected, g.ForceRGB.Check)

	d := a.cfg.Defaults
	c.ratio = numberEntry(d.Ratio, 1)
	c.resolutions = numberEntry(d.Resolutions, 1)
	c.decodeLevel = numberEntry(d.DecodeResolution, 0)

	c.selectButton = widget.NewButton("Select image...", a.selectFile)
	c.rawPreview = widget.NewButton("Show original", func() { a.preview(mode.RawPreview) })
	c.compress = widget.NewButton("Compress", a.compress)
	c.compress.Importance = widget.HighImportance
	c.compressPreview = widget.NewButton("Show compressed", func() { a.preview(mode.CompressPreviewAction) })
	c.decompress = widget.NewButton("Decompress", a.decompress)
	c.decompress.Importance = widget.HighImportance
	c.decompressPreview = widget.NewButton("Show decompressed", func() { a.preview(mode.DecompressPreviewAction) })

	c.add(mode.FileFormat, "File format", c.format)
	c.add(mode.CompressionProfile, "Profile", c.profile)
	c.add(mode.Progression, "Progression order", c.progression)
	c.add(mode.CodeblockSize, "Codeblock size", c.codeblock)
	c.add(mode.ResolutionNumber, "Resolution levels", c.resolutions)
	c.add(mode.CompressionValue, "Compression ratio", c.ratio)
	c.add(mode.RawPreview, "", c.rawPreview)
	c.add(mode.CompressAction, "", c.compress)
	c.add(mode.CompressPreviewAction, "", c.compressPreview)
	c.add(mode.DecompressRGBProfile, "Colour", c.rgb)
	c.add(mode.DecompressResolution, "Resolution to discard", c.decodeLevel)
	c.add(mode.DecompressAction, "", c.decompress)
	c.add(mode.DecompressPreviewAction, "", c.decompressPreview)
	return c
}

func newRadio(options []string, selected string, onChanged func(string)) *widget.RadioGroup {
	r := widget.NewRadioGroup(options, onChanged)
	r.Horizontal = true
	r.Selected = selected
	return r
}

func (c *controls) add(g mode.ControlGroup, title string, items ...fyne.Disableable) {
	s := &section{items: items}
	if title != "" {
		s.header = widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	c.sections[g] = s
}

func (c *controls) row(g mode.ControlGroup, w fyne.CanvasObject) fyne.CanvasObject {
	s := c.sections[g]
	if s.header == nil {
		return w
	}
	return container.NewVBox(s.header, w)
}

func (c *controls) layout() fyne.CanvasObject {
	compression := widget.NewCard("Compression", "", container.NewVBox(
		c.row(mode.FileFormat, c.format),
		c.row(mode.CompressionProfile, c.profile),
		c.row(mode.Progression, c.progression),
		c.row(mode.CodeblockSize, c.codeblock),
		container.NewGridWithColumns(2,
			c.row(mode.ResolutionNumber, c.resolutions),
			c.row(mode.CompressionValue, c.ratio),
		),
		container.NewHBox(c.compress, c.compressPreview),
	))
	decompression := widget.NewCard("Decompression", "", container.NewVBox(
		c.row(mode.DecompressRGBProfile, c.rgb),
		c.row(mode.DecompressResolution, c.decodeLevel),
		container.NewHBox(c.decompress, c.decompressPreview),
	))

	top := container.NewVBox(
		container.NewBorder(nil, nil, c.selectButton, c.rawPreview, c.inputLabel),
		c.outputLabel,
	)
	return container.NewBorder(
		top,
		container.NewHBox(c.status, layout.NewSpacer()),
		nil,
		nil,
		container.NewVScroll(container.NewVBox(compression, decompression)),
	)
}

// apply renders a visibility snapshot: every group is enabled or disabled as
// a whole and its header shows the group's emphasis.
func (c *controls) apply(_ mode.Mode, v mode.Visibility) {
	for _, g := range mode.ControlGroups() {
		s, ok := c.sections[g]
		if !ok {
			continue
		}
		st := v.Of(g)
		for _, item := range s.items {
			if st.Enabled {
				item.Enable()
			} else {
				item.Disable()
			}
		}
		if s.header != nil {
			s.header.Importance = importanceFor(st.Emphasis)
			s.header.Refresh()
		}
	}
}

func importanceFor(e mode.Emphasis) widget.Importance {
	if e == mode.Full {
		return widget.MediumImportance
	}
	return widget.LowImportance
}

// compressionConfig snapshots the compression controls
func (a *App) compressionConfig() invocation.CompressionConfig {
	return invocation.CompressionConfig{
		Format:      a.groups.Format.Selected,
		Profile:     a.groups.Profile.Selected,
		Progression: a.groups.Progression.Selected,
		Codeblock:   a.groups.Codeblock.Selected,
		Ratio:       a.controls.ratio.Text,
		Resolutions: a.controls.resolutions.Text,
	}
}

// decompressionConfig snapshots the decompression controls
func (a *App) decompressionConfig() invocation.DecompressionConfig {
	return invocation.DecompressionConfig{
		Resolutions: a.controls.decodeLevel.Text,
		RGB:         a.groups.ForceRGB.Selected,
	}
}
