package invocation

import (
	"jp2mi/internal/errors"
)

type flagKind int

const (
	// valueFlag is emitted as "<flag> <value>" and its value is required
	valueFlag flagKind = iota
	// switchFlag is emitted bare when set and omitted otherwise
	switchFlag
)

type flagSpec struct {
	flag  string
	field string
	kind  flagKind
}

// grammar is the ordered flag list an external codec's argument parser
// expects.
type grammar []flagSpec

var compressGrammar = grammar{
	{flag: "-i", field: "input", kind: valueFlag},
	{flag: "-o", field: "output", kind: valueFlag},
	{flag: "-OutFor", field: "format", kind: valueFlag},
	{flag: "-r", field: "ratio", kind: valueFlag},
	{flag: "-n", field: "resolutions", kind: valueFlag},
	{flag: "-b", field: "codeblock", kind: valueFlag},
	{flag: "-I", field: "irreversible", kind: switchFlag},
	{flag: "-p", field: "progression", kind: valueFlag},
}

var decompressGrammar = grammar{
	{flag: "-i", field: "input", kind: valueFlag},
	{flag: "-o", field: "output", kind: valueFlag},
	{flag: "-OutFor", field: "format", kind: valueFlag},
	{flag: "-r", field: "resolutions", kind: valueFlag},
	{flag: "-force-rgb", field: "force-rgb", kind: switchFlag},
}

// arguments collects validated values keyed by field name
type arguments struct {
	values   map[string]string
	switches map[string]bool
}

func newArguments() *arguments {
	return &arguments{
		values:   make(map[string]string),
		switches: make(map[string]bool),
	}
}

func (a *arguments) set(field, value string) {
	a.values[field] = value
}

func (a *arguments) toggle(field string, on bool) {
	a.switches[field] = on
}

// render lays the arguments out in grammar order. Every value flag must have
// a non-empty value; no bare value flag is ever emitted.
func (g grammar) render(a *arguments) ([]string, error) {
	args := make([]string, 0, 2*len(g))
	for _, spec := range g {
		switch spec.kind {
		case valueFlag:
			v := a.values[spec.field]
			if v == "" {
				return nil, errors.NewFieldError("missing value", spec.field, "", nil)
			}
			args = append(args, spec.flag, v)
		case switchFlag:
			if a.switches[spec.field] {
				args = append(args, spec.flag)
			}
		}
	}
	return args, nil
}
