// Package choice reads the checked option out of a group of mutually
// exclusive choices, the way a set of radio buttons is read.
package choice

import (
	"jp2mi/internal/errors"
)

// Group names used by the compression and decompression controls
const (
	Format      = "format"
	Profile     = "profile"
	Progression = "progression"
	Codeblock   = "codeblock"
	ForceRGB    = "force-rgb"
)

// Compression profile labels
const (
	Lossy    = "lossy"
	Lossless = "lossless"
)

// RGB handling labels for decompression
const (
	RGBNative = "native"
	RGBForce  = "force-rgb"
)

// Group is a set of mutually exclusive options with at most one checked
type Group struct {
	Name     string
	Options  []string
	Selected string
}

// NewGroup creates a group with nothing checked
func NewGroup(name string, options ...string) *Group {
	return &Group{Name: name, Options: options}
}

// Check marks label as the checked option. Labels that are not part of the
// group clear the selection.
func (g *Group) Check(label string) {
	if g.Has(label) {
		g.Selected = label
		return
	}
	g.Selected = ""
}

// Clear unchecks every option
func (g *Group) Clear() {
	g.Selected = ""
}

// Has reports whether label is one of the group's options
func (g *Group) Has(label string) bool {
	for _, o := range g.Options {
		if o == label {
			return true
		}
	}
	return false
}

// Next checks the option after the current one, wrapping around. With nothing
// checked it checks the first option.
func (g *Group) Next() {
	g.step(1)
}

// Prev checks the option before the current one, wrapping around.
func (g *Group) Prev() {
	g.step(-1)
}

func (g *Group) step(delta int) {
	n := len(g.Options)
	if n == 0 {
		return
	}
	i := g.index()
	if i < 0 {
		g.Selected = g.Options[0]
		return
	}
	g.Selected = g.Options[((i+delta)%n+n)%n]
}

func (g *Group) index() int {
	for i, o := range g.Options {
		if o == g.Selected {
			return i
		}
	}
	return -1
}

// Pick returns the checked label or a NoSelection error
func (g *Group) Pick() (string, error) {
	return Pick(g.Name, g.Options, g.Selected)
}

// Pick returns selected when it is one of options. An empty or foreign
// selection means nothing in the group is checked.
func Pick(group string, options []string, selected string) (string, error) {
	if selected == "" {
		return "", errors.NewSelectionError(group)
	}
	for _, o := range options {
		if o == selected {
			return selected, nil
		}
	}
	return "", errors.NewSelectionError(group)
}
