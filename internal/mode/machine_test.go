package mode

import (
	"testing"

	"jp2mi/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := NewMachine("")
	require.NoError(t, err)
	return m
}

func TestNewMachineStartsIdle(t *testing.T) {
	m := newMachine(t)
	assert.Equal(t, Idle, m.Mode())
	assert.Equal(t, Selection{}, m.Selection())
	assert.Equal(t, VisibilityFor(Idle), m.Visibility())
	for _, g := range ControlGroups() {
		assert.False(t, m.Visibility().Enabled(g), g.String())
	}
}

func TestNewMachineRejectsBadPattern(t *testing.T) {
	_, err := NewMachine("[bmp")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestOnFileSelected(t *testing.T) {
	raw := []string{"photo.bmp", "/tmp/dir.with.dots/scan.bmp", "C:\\images\\a.bmp", ".bmp"}
	other := []string{"photo.jp2", "photo.j2k", "photo.j2c", "notes.txt", "noext", "photo.BMP", "photo.bmp.jp2"}

	for _, p := range raw {
		t.Run("raw "+p, func(t *testing.T) {
			m := newMachine(t)
			m.OnFileSelected(p)
			assert.Equal(t, CompressReady, m.Mode())
			assert.Equal(t, VisibilityFor(CompressReady), m.Visibility())
			assert.Equal(t, p, m.Selection().InputRaw)
			assert.Empty(t, m.Selection().InputCodec)
			assert.Equal(t, RawImage, m.Selection().Kind())
		})
	}

	for _, p := range other {
		t.Run("codec "+p, func(t *testing.T) {
			m := newMachine(t)
			m.OnFileSelected(p)
			assert.Equal(t, DecompressReady, m.Mode())
			assert.Equal(t, VisibilityFor(DecompressReady), m.Visibility())
			assert.Equal(t, p, m.Selection().InputCodec)
			assert.Empty(t, m.Selection().InputRaw)
			assert.Equal(t, CodecContainer, m.Selection().Kind())
		})
	}
}

func TestCancelledSelectionIsNoop(t *testing.T) {
	m := newMachine(t)
	m.OnFileSelected("photo.bmp")
	require.NoError(t, m.SetOutput("out.jp2"))

	m.OnFileSelected("")
	assert.Equal(t, CompressReady, m.Mode())
	assert.Equal(t, "photo.bmp", m.Selection().InputRaw)
	assert.Equal(t, "out.jp2", m.Selection().CompressOutput)
}

func TestNewSelectionClearsOutputs(t *testing.T) {
	m := newMachine(t)

	m.OnFileSelected("photo.bmp")
	require.NoError(t, m.SetOutput("out.jp2"))
	assert.Equal(t, "out.jp2", m.Output())

	m.OnFileSelected("other.bmp")
	assert.Empty(t, m.Output())
	assert.Equal(t, Selection{InputRaw: "other.bmp"}, m.Selection())

	require.NoError(t, m.SetOutput("other.jp2"))
	m.OnFileSelected("photo.jp2")
	assert.Equal(t, Selection{InputCodec: "photo.jp2"}, m.Selection())

	require.NoError(t, m.SetOutput("decoded.bmp"))
	assert.Equal(t, "decoded.bmp", m.Selection().DecompressOutput)
	m.OnFileSelected("photo.bmp")
	assert.Equal(t, Selection{InputRaw: "photo.bmp"}, m.Selection())
}

func TestSetOutput(t *testing.T) {
	m := newMachine(t)

	err := m.SetOutput("out.jp2")
	require.Error(t, err)
	assert.True(t, errors.IsMissingField(err))

	m.OnFileSelected("photo.bmp")
	err = m.SetOutput("")
	assert.True(t, errors.IsMissingField(err))
	assert.Empty(t, m.Output())
}

func TestVisibilityRows(t *testing.T) {
	compress := VisibilityFor(CompressReady)
	for _, g := range []ControlGroup{FileFormat, CompressionProfile, Progression, CodeblockSize, ResolutionNumber, CompressionValue, RawPreview, CompressAction} {
		assert.Equal(t, State{Enabled: true, Emphasis: Full}, compress.Of(g), g.String())
	}
	for _, g := range []ControlGroup{CompressPreviewAction, DecompressRGBProfile, DecompressResolution, DecompressAction, DecompressPreviewAction} {
		assert.Equal(t, State{Enabled: false, Emphasis: Dimmed}, compress.Of(g), g.String())
	}

	decompress := VisibilityFor(DecompressReady)
	for _, g := range []ControlGroup{RawPreview, DecompressRGBProfile, DecompressResolution, DecompressAction} {
		assert.True(t, decompress.Enabled(g), g.String())
	}
	for _, g := range []ControlGroup{FileFormat, CompressionProfile, Progression, CodeblockSize, ResolutionNumber, CompressionValue, CompressAction, CompressPreviewAction, DecompressPreviewAction} {
		assert.False(t, decompress.Enabled(g), g.String())
		assert.Equal(t, Dimmed, decompress.Of(g).Emphasis, g.String())
	}

	assert.Equal(t, VisibilityFor(Idle), VisibilityFor(Mode(42)))
	assert.Equal(t, float32(1), Full.Opacity())
	assert.Equal(t, float32(0.2), Dimmed.Opacity())
}

func TestVisibilityIsPure(t *testing.T) {
	for _, m := range []Mode{Idle, CompressReady, DecompressReady} {
		first := VisibilityFor(m)
		first[CompressAction] = State{Enabled: true, Emphasis: Full}
		first[FileFormat] = State{}

		assert.Equal(t, VisibilityFor(m), VisibilityFor(m), m.String())
		assert.Equal(t, visibilityTable[m], VisibilityFor(m), m.String())
	}
}

func TestTransitionOrderDoesNotLeakState(t *testing.T) {
	a := newMachine(t)
	a.OnFileSelected("x.jp2")
	a.OnFileSelected("x.bmp")
	a.OnFileSelected("y.j2k")

	b := newMachine(t)
	b.OnFileSelected("y.j2k")

	assert.Equal(t, b.Mode(), a.Mode())
	assert.Equal(t, b.Visibility(), a.Visibility())
}

func TestOutputReadyUnlocksPreview(t *testing.T) {
	m := newMachine(t)
	m.OnFileSelected("photo.bmp")
	assert.False(t, m.MarkOutputReady("out.jp2"), "no output confirmed yet")

	require.NoError(t, m.SetOutput("out.jp2"))
	assert.False(t, m.Visibility().Enabled(CompressPreviewAction))
	assert.False(t, m.MarkOutputReady("elsewhere.jp2"))

	assert.True(t, m.MarkOutputReady("./out.jp2"))
	assert.True(t, m.OutputReady())
	assert.True(t, m.Visibility().Enabled(CompressPreviewAction))
	assert.False(t, m.Visibility().Enabled(DecompressPreviewAction))
	assert.False(t, m.MarkOutputReady("out.jp2"), "already ready")

	target, err := m.PreviewTarget(CompressPreviewAction)
	require.NoError(t, err)
	assert.Equal(t, "out.jp2", target)

	m.OnFileSelected("photo.jp2")
	assert.False(t, m.OutputReady())
	assert.Equal(t, VisibilityFor(DecompressReady), m.Visibility())
}

func TestPreviewTarget(t *testing.T) {
	m := newMachine(t)
	_, err := m.PreviewTarget(RawPreview)
	assert.True(t, errors.IsMissingField(err))

	m.OnFileSelected("photo.jp2")
	target, err := m.PreviewTarget(RawPreview)
	require.NoError(t, err)
	assert.Equal(t, "photo.jp2", target)

	_, err = m.PreviewTarget(DecompressPreviewAction)
	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	m := newMachine(t)

	var modes []Mode
	var last Visibility
	m.Subscribe(func(md Mode, v Visibility) {
		modes = append(modes, md)
		last = v
	})
	m.OnFileSelected("a.bmp")
	m.OnFileSelected("a.jp2")

	assert.Equal(t, []Mode{Idle, CompressReady, DecompressReady}, modes)
	assert.Equal(t, VisibilityFor(DecompressReady), last)
}

func TestCustomRawPattern(t *testing.T) {
	m, err := NewMachine("*.{bmp,BMP}")
	require.NoError(t, err)
	m.OnFileSelected("SCAN.BMP")
	assert.Equal(t, CompressReady, m.Mode())
	assert.True(t, m.IsRawImage("x.bmp"))
	assert.False(t, m.IsRawImage("x.png"))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "CompressReady", CompressReady.String())
	assert.Equal(t, "Unknown", Mode(9).String())
	assert.Equal(t, "DecompressPreviewAction", DecompressPreviewAction.String())
	assert.Equal(t, "Unknown", ControlGroup(-1).String())
	assert.Len(t, ControlGroups(), 13)
	assert.Equal(t, "codec", CodecContainer.String())
}
