// Package mode holds the front end's mode state machine: which of Idle,
// CompressReady or DecompressReady is active, what file is selected, and the
// control-group visibility derived from the mode.
package mode

import (
	"path/filepath"

	"jp2mi/internal/errors"
	"jp2mi/internal/log"

	"github.com/gobwas/glob"
)

// DefaultRawPattern matches the raw image files the encoder accepts
const DefaultRawPattern = "*.bmp"

// InputKind tags the selected input file
type InputKind int

const (
	NoInput InputKind = iota
	RawImage
	CodecContainer
)

func (k InputKind) String() string {
	switch k {
	case RawImage:
		return "raw"
	case CodecContainer:
		return "codec"
	default:
		return "none"
	}
}

// Selection is the selected input plus the output paths confirmed for it.
// At most one of InputRaw and InputCodec is set.
type Selection struct {
	InputRaw         string
	InputCodec       string
	CompressOutput   string
	DecompressOutput string
}

// Kind reports which input is populated
func (s Selection) Kind() InputKind {
	switch {
	case s.InputRaw != "":
		return RawImage
	case s.InputCodec != "":
		return CodecContainer
	default:
		return NoInput
	}
}

// Input returns whichever input path is set
func (s Selection) Input() string {
	if s.InputRaw != "" {
		return s.InputRaw
	}
	return s.InputCodec
}

// Listener is notified after every state change with the new mode and the
// complete visibility for it.
type Listener func(Mode, Visibility)

// Machine is the mode state machine. It is owned by the UI event loop and is
// not safe for concurrent use.
type Machine struct {
	raw         glob.Glob
	mode        Mode
	sel         Selection
	outputReady bool
	visibility  Visibility
	listeners   []Listener
}

// NewMachine creates a machine in Idle. rawPattern is a glob matched against
// a selected file's base name; an empty pattern means DefaultRawPattern.
func NewMachine(rawPattern string) (*Machine, error) {
	if rawPattern == "" {
		rawPattern = DefaultRawPattern
	}
	g, err := glob.Compile(rawPattern)
	if err != nil {
		return nil, errors.NewConfigError("invalid raw image pattern", rawPattern, errors.InvalidConfig, err)
	}
	return &Machine{
		raw:        g,
		mode:       Idle,
		visibility: VisibilityFor(Idle),
	}, nil
}

// Subscribe registers fn for state changes and calls it once with the
// current state.
func (m *Machine) Subscribe(fn Listener) {
	m.listeners = append(m.listeners, fn)
	fn(m.mode, m.visibility)
}

// Mode returns the active mode
func (m *Machine) Mode() Mode {
	return m.mode
}

// Selection returns a copy of the current selection
func (m *Machine) Selection() Selection {
	return m.sel
}

// Visibility returns the control-group states currently in force
func (m *Machine) Visibility() Visibility {
	return m.visibility
}

// OutputReady reports whether the current output path has been seen on disk
func (m *Machine) OutputReady() bool {
	return m.outputReady
}

// IsRawImage reports whether path would select CompressReady
func (m *Machine) IsRawImage(path string) bool {
	return m.raw.Match(filepath.Base(path))
}

// OnFileSelected moves to CompressReady for raw images and DecompressReady for
// anything else, replacing the selection and clearing all outputs. An empty
// path is a cancelled picker and leaves the state alone.
func (m *Machine) OnFileSelected(path string) {
	if path == "" {
		log.Debug("file selection cancelled")
		return
	}

	if m.IsRawImage(path) {
		m.sel = Selection{InputRaw: path}
		m.mode = CompressReady
	} else {
		m.sel = Selection{InputCodec: path}
		m.mode = DecompressReady
	}
	m.outputReady = false

	log.LogWithFields(log.F("path", path), log.F("mode", m.mode.String())).Info("input selected")
	m.refresh()
}

// SetOutput records the confirmed output path for the active mode. Any
// earlier output, and its readiness, is discarded.
func (m *Machine) SetOutput(path string) error {
	if path == "" {
		return errors.NewFieldError("missing value", "output", "", nil)
	}
	switch m.mode {
	case CompressReady:
		m.sel.CompressOutput = path
	case DecompressReady:
		m.sel.DecompressOutput = path
	default:
		return errors.NewFieldError("no input selected", "input", "", nil)
	}
	m.outputReady = false
	m.refresh()
	return nil
}

// Output returns the output path confirmed for the active mode
func (m *Machine) Output() string {
	switch m.mode {
	case CompressReady:
		return m.sel.CompressOutput
	case DecompressReady:
		return m.sel.DecompressOutput
	default:
		return ""
	}
}

// MarkOutputReady unlocks the active mode's preview action when path is the
// current output. It reports whether anything changed.
func (m *Machine) MarkOutputReady(path string) bool {
	out := m.Output()
	if out == "" || m.outputReady || filepath.Clean(out) != filepath.Clean(path) {
		return false
	}
	m.outputReady = true
	log.LogWithFields(log.F("path", path)).Debug("output ready")
	m.refresh()
	return true
}

// PreviewTarget returns the file a preview action should show
func (m *Machine) PreviewTarget(action ControlGroup) (string, error) {
	if !m.visibility.Enabled(action) {
		return "", errors.NewFieldError("preview not available", action.String(), "", nil)
	}
	var path string
	switch action {
	case RawPreview:
		path = m.sel.Input()
	case CompressPreviewAction:
		path = m.sel.CompressOutput
	case DecompressPreviewAction:
		path = m.sel.DecompressOutput
	}
	if path == "" {
		return "", errors.NewFieldError("nothing to preview", action.String(), "", nil)
	}
	return path, nil
}

// refresh rebuilds the whole visibility from the mode row and notifies
// listeners.
func (m *Machine) refresh() {
	v := VisibilityFor(m.mode)
	if m.outputReady {
		if g, ok := previewActionFor(m.mode); ok {
			v[g] = on
		}
	}
	m.visibility = v
	for _, fn := range m.listeners {
		fn(m.mode, v)
	}
}
