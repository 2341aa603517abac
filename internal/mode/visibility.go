package mode

// Mode is the front end's top-level intent
type Mode int

const (
	// Idle is the start mode: nothing selected, every control inactive
	Idle Mode = iota
	// CompressReady means a raw image is selected
	CompressReady
	// DecompressReady means a codec container is selected
	DecompressReady
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case CompressReady:
		return "CompressReady"
	case DecompressReady:
		return "DecompressReady"
	default:
		return "Unknown"
	}
}

// ControlGroup identifies a cluster of controls toggled together
type ControlGroup int

const (
	FileFormat ControlGroup = iota
	CompressionProfile
	Progression
	CodeblockSize
	ResolutionNumber
	CompressionValue
	RawPreview
	CompressAction
	CompressPreviewAction
	DecompressRGBProfile
	DecompressResolution
	DecompressAction
	DecompressPreviewAction

	controlGroupCount
)

var controlGroupNames = [controlGroupCount]string{
	"FileFormat",
	"CompressionProfile",
	"Progression",
	"CodeblockSize",
	"ResolutionNumber",
	"CompressionValue",
	"RawPreview",
	"CompressAction",
	"CompressPreviewAction",
	"DecompressRGBProfile",
	"DecompressResolution",
	"DecompressAction",
	"DecompressPreviewAction",
}

func (g ControlGroup) String() string {
	if g < 0 || g >= controlGroupCount {
		return "Unknown"
	}
	return controlGroupNames[g]
}

// ControlGroups lists every tracked group in display order
func ControlGroups() []ControlGroup {
	groups := make([]ControlGroup, controlGroupCount)
	for i := range groups {
		groups[i] = ControlGroup(i)
	}
	return groups
}

// Emphasis is how strongly a control group is drawn
type Emphasis int

const (
	Dimmed Emphasis = iota
	Full
)

// Opacity maps the emphasis onto an alpha value for renderers
func (e Emphasis) Opacity() float32 {
	if e == Full {
		return 1
	}
	return 0.2
}

func (e Emphasis) String() string {
	if e == Full {
		return "full"
	}
	return "dimmed"
}

// State is the rendering state of one control group
type State struct {
	Enabled  bool
	Emphasis Emphasis
}

var (
	on  = State{Enabled: true, Emphasis: Full}
	off = State{Enabled: false, Emphasis: Dimmed}
)

// Visibility holds the state of every control group. It is a value type:
// copies never alias.
type Visibility [controlGroupCount]State

// Of returns the state of a single group
func (v Visibility) Of(g ControlGroup) State {
	if g < 0 || g >= controlGroupCount {
		return off
	}
	return v[g]
}

// Enabled reports whether g is enabled
func (v Visibility) Enabled(g ControlGroup) bool {
	return v.Of(g).Enabled
}

// visibilityTable has one row per mode and nothing else feeds VisibilityFor.
var visibilityTable = map[Mode]Visibility{
	Idle: {
		FileFormat:              off,
		CompressionProfile:      off,
		Progression:             off,
		CodeblockSize:           off,
		ResolutionNumber:        off,
		CompressionValue:        off,
		RawPreview:              off,
		CompressAction:          off,
		CompressPreviewAction:   off,
		DecompressRGBProfile:    off,
		DecompressResolution:    off,
		DecompressAction:        off,
		DecompressPreviewAction: off,
	},
	CompressReady: {
		FileFormat:              on,
		CompressionProfile:      on,
		Progression:             on,
		CodeblockSize:           on,
		ResolutionNumber:        on,
		CompressionValue:        on,
		RawPreview:              on,
		CompressAction:          on,
		CompressPreviewAction:   off,
		DecompressRGBProfile:    off,
		DecompressResolution:    off,
		DecompressAction:        off,
		DecompressPreviewAction: off,
	},
	DecompressReady: {
		FileFormat:              off,
		CompressionProfile:      off,
		Progression:             off,
		CodeblockSize:           off,
		ResolutionNumber:        off,
		CompressionValue:        off,
		RawPreview:              on,
		CompressAction:          off,
		CompressPreviewAction:   off,
		DecompressRGBProfile:    on,
		DecompressResolution:    on,
		DecompressAction:        on,
		DecompressPreviewAction: off,
	},
}

// VisibilityFor returns the control-group row for m. Unknown modes get the
// Idle row.
func VisibilityFor(m Mode) Visibility {
	v, ok := visibilityTable[m]
	if !ok {
		return visibilityTable[Idle]
	}
	return v
}

// previewActionFor is the preview action that unlocks once a run's output exists
func previewActionFor(m Mode) (ControlGroup, bool) {
	switch m {
	case CompressReady:
		return CompressPreviewAction, true
	case DecompressReady:
		return DecompressPreviewAction, true
	default:
		return 0, false
	}
}
