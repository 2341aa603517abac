package common

import "jp2mi/internal/mode"

// RowKind tells the view how a control row is edited
type RowKind int

const (
	ChoiceRow RowKind = iota
	NumberRow
	ActionRow
)

// Row is one control group as the view shows it
type Row struct {
	Group mode.ControlGroup
	Kind  RowKind
	Label string
	Value string
	State mode.State
}

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Rows() []Row
	Cursor() int
	Mode() mode.Mode
	Selection() mode.Selection
	Prompt() (label string, view string, active bool)
	ShowHelp() bool
}
