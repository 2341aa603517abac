package tui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"jp2mi/internal/config"
	"jp2mi/internal/errors"
	"jp2mi/internal/invocation"
	"jp2mi/internal/launch"
	"jp2mi/internal/mode"
	"jp2mi/internal/tui/common"
	"jp2mi/internal/tui/messages"
	"jp2mi/pkg/testutils"

	alsrt "github.com/alecthomas/assert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	mu   sync.Mutex
	cmds []invocation.CommandLine
	err  error
}

func (l *fakeLauncher) Launch(cmd invocation.CommandLine) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.cmds = append(l.cmds, cmd)
	return nil
}

type harness struct {
	m        *Model
	cfg      *config.Config
	launcher *fakeLauncher
	opened   []string
	dir      string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		cfg:      config.New(),
		launcher: &fakeLauncher{},
		dir:      t.TempDir(),
	}
	h.cfg.Codec.Dir = t.TempDir()

	viewer := launch.NewViewer(func(path string) error {
		h.opened = append(h.opened, path)
		return nil
	})
	m, err := New(h.cfg, WithLauncher(h.launcher), WithViewer(viewer))
	require.NoError(t, err)
	t.Cleanup(m.cancelWatch)
	h.m = m
	return h
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		h.m.Update(msg)
	}
}

// typeText replaces the prompt content with s
func (h *harness) typeText(s string) {
	h.m.input.SetValue("")
	h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) open(path string) {
	h.press("o")
	h.typeText(path)
	h.press("enter")
}

// focus moves the cursor onto g
func (h *harness) focus(t *testing.T, g mode.ControlGroup) {
	t.Helper()
	for i := 0; i < len(rowOrder) && h.m.focused() != g; i++ {
		h.press("down")
	}
	require.Equal(t, g, h.m.focused())
}

func (h *harness) row(g mode.ControlGroup) common.Row {
	for _, r := range h.m.Rows() {
		if r.Group == g {
			return r
		}
	}
	return common.Row{}
}

func TestModelInitialization(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, mode.Idle, h.m.Mode())
	assert.Len(t, h.m.Rows(), len(mode.ControlGroups()))
	for _, r := range h.m.Rows() {
		assert.False(t, r.State.Enabled, r.Label)
	}
	assert.NotNil(t, h.m.Init())

	output := testutils.StripANSI(h.m.View())
	assert.Contains(t, output, "(none selected)")
	assert.Contains(t, output, "[Idle]")
}

func TestIdleIgnoresNavigation(t *testing.T) {
	h := newHarness(t)

	h.press("down", "down", "right", "enter")
	alsrt.Equal(t, 0, h.m.Cursor())
	_, _, active := h.m.Prompt()
	alsrt.False(t, active)
	assert.Empty(t, h.launcher.cmds)
}

func TestOpenRawImageEntersCompress(t *testing.T) {
	h := newHarness(t)

	h.open(filepath.Join(h.dir, "photo.bmp"))
	assert.Equal(t, mode.CompressReady, h.m.Mode())
	assert.True(t, h.row(mode.FileFormat).State.Enabled)
	assert.False(t, h.row(mode.DecompressAction).State.Enabled)
	assert.Equal(t, "(•) jp2  ( ) j2k  ( ) j2c", h.row(mode.FileFormat).Value)

	// Disabled decompression rows are skipped
	for i := 0; i < 20; i++ {
		h.press("down")
	}
	alsrt.Equal(t, mode.CompressAction, h.m.focused())
}

func TestOpenPromptCancel(t *testing.T) {
	h := newHarness(t)

	h.press("o")
	label, _, active := h.m.Prompt()
	require.True(t, active)
	assert.Equal(t, "Open", label)

	h.typeText("photo.bmp")
	h.press("esc")
	_, _, active = h.m.Prompt()
	assert.False(t, active)
	assert.Equal(t, mode.Idle, h.m.Mode())

	// Quit is not bound while typing
	h.press("o", "q")
	_, _, active = h.m.Prompt()
	assert.True(t, active)
}

func TestChangeChoicesAndNumbers(t *testing.T) {
	h := newHarness(t)
	h.open(filepath.Join(h.dir, "photo.bmp"))

	h.focus(t, mode.FileFormat)
	h.press("right")
	assert.Equal(t, "j2k", h.m.choices[mode.FileFormat].Selected)
	h.press("left", "left")
	assert.Equal(t, "j2c", h.m.choices[mode.FileFormat].Selected)
	h.press("x")
	assert.Empty(t, h.m.choices[mode.FileFormat].Selected)

	h.focus(t, mode.CompressionValue)
	h.press("right", "right")
	assert.Equal(t, "12", h.row(mode.CompressionValue).Value)

	h.m.numbers[mode.CompressionValue].value = config.MaxRatio
	h.press("right")
	assert.Equal(t, config.MaxRatio, h.m.numbers[mode.CompressionValue].value, "ratio stays in range")
}

func TestCompressRunsCodecAndUnlocksPreview(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(h.dir, "photo.bmp")
	output := filepath.Join(h.dir, "photo.jp2")

	h.open(input)
	h.focus(t, mode.ResolutionNumber)
	h.press("left")
	h.focus(t, mode.CompressAction)
	h.press("enter")

	label, _, active := h.m.Prompt()
	require.True(t, active)
	assert.Equal(t, "Save as", label)
	assert.Equal(t, output, h.m.input.Value())
	h.press("enter")

	require.Len(t, h.launcher.cmds, 1)
	cmd := h.launcher.cmds[0]
	assert.Equal(t, invocation.ResolveExecutable(h.cfg.Codec.Dir, invocation.DefaultEncoder), cmd.Executable)
	assert.Equal(t, []string{
		"-i", input, "-o", output, "-OutFor", "JP2",
		"-r", "10", "-n", "5", "-b", "64,64", "-p", "LRCP",
	}, cmd.Args)
	assert.Equal(t, output, h.m.Selection().CompressOutput)
	assert.True(t, h.m.status.Loading())
	assert.False(t, h.row(mode.CompressPreviewAction).State.Enabled)

	require.NoError(t, os.WriteFile(output, []byte("jp2"), 0644))
	select {
	case msg := <-h.m.events:
		ready, ok := msg.(messages.OutputReadyMsg)
		require.True(t, ok)
		assert.Equal(t, output, ready.Path)
		h.m.Update(msg)
	case <-time.After(3 * time.Second):
		t.Fatal("output was not reported")
	}
	assert.True(t, h.row(mode.CompressPreviewAction).State.Enabled)

	h.m.Update(messages.CodecExitMsg{Result: launch.Result{Command: cmd, Duration: time.Second}})
	assert.False(t, h.m.status.Loading())
	assert.Contains(t, h.m.Status(), "Codec finished")

	h.focus(t, mode.CompressPreviewAction)
	h.press("enter")
	assert.Equal(t, []string{output}, h.opened)
}

func TestCompressLosslessAddsExtension(t *testing.T) {
	h := newHarness(t)
	h.open(filepath.Join(h.dir, "photo.bmp"))

	h.focus(t, mode.CompressionProfile)
	h.press("right")
	h.focus(t, mode.CompressAction)
	h.press("enter")
	h.typeText(filepath.Join(h.dir, "out"))
	h.press("enter")

	require.Len(t, h.launcher.cmds, 1)
	args := h.launcher.cmds[0].Args
	assert.Contains(t, args, "-I")
	assert.Equal(t, filepath.Join(h.dir, "out.jp2"), args[3])
}

func TestCompressWithoutFormatShowsError(t *testing.T) {
	h := newHarness(t)
	h.open(filepath.Join(h.dir, "photo.bmp"))

	h.focus(t, mode.FileFormat)
	h.press("x")
	h.focus(t, mode.CompressAction)
	h.press("enter")

	_, _, active := h.m.Prompt()
	assert.False(t, active)
	assert.Empty(t, h.launcher.cmds)
	assert.Contains(t, h.m.Status(), "format")
}

func TestDecompressRunsCodec(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(h.dir, "photo.jp2")

	h.open(input)
	assert.Equal(t, mode.DecompressReady, h.m.Mode())
	h.focus(t, mode.DecompressRGBProfile)
	h.press("right")
	h.focus(t, mode.DecompressResolution)
	h.press("right", "right")
	h.focus(t, mode.DecompressAction)
	h.press("enter")
	assert.Equal(t, filepath.Join(h.dir, "photo.bmp"), h.m.input.Value())
	h.typeText(filepath.Join(h.dir, "decoded"))
	h.press("enter")

	require.Len(t, h.launcher.cmds, 1)
	cmd := h.launcher.cmds[0]
	assert.Equal(t, invocation.ResolveExecutable(h.cfg.Codec.Dir, invocation.DefaultDecoder), cmd.Executable)
	assert.Equal(t, []string{
		"-i", input, "-o", filepath.Join(h.dir, "decoded.bmp"), "-OutFor", "BMP", "-r", "2", "-force-rgb",
	}, cmd.Args)
}

func TestLaunchFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.launcher.err = errors.ErrLaunchBusy
	h.open(filepath.Join(h.dir, "photo.bmp"))

	h.focus(t, mode.CompressAction)
	h.press("enter", "enter")

	assert.False(t, h.m.status.Loading())
	assert.True(t, strings.HasPrefix(h.m.Status(), "Cannot start codec"))
	assert.Contains(t, testutils.StripANSI(h.m.View()), "already in progress")
}

func TestRefusedRunKeepsRunningOutput(t *testing.T) {
	h := newHarness(t)
	first := filepath.Join(h.dir, "first.jp2")
	second := filepath.Join(h.dir, "second.jp2")

	h.open(filepath.Join(h.dir, "photo.bmp"))
	h.focus(t, mode.CompressAction)
	h.press("enter")
	h.typeText(first)
	h.press("enter")
	require.Len(t, h.launcher.cmds, 1)
	require.NotNil(t, h.m.stopWatch)

	h.launcher.err = errors.ErrLaunchBusy
	h.press("enter")
	h.typeText(second)
	h.press("enter")

	assert.Equal(t, first, h.m.machine.Output())
	assert.NotNil(t, h.m.stopWatch)
	assert.Contains(t, h.m.Status(), "already in progress")

	require.NoError(t, os.WriteFile(first, []byte("jp2"), 0644))
	select {
	case msg := <-h.m.events:
		ready, ok := msg.(messages.OutputReadyMsg)
		require.True(t, ok)
		assert.Equal(t, first, ready.Path)
		h.m.Update(msg)
	case <-time.After(3 * time.Second):
		t.Fatal("output was not reported")
	}
	assert.True(t, h.row(mode.CompressPreviewAction).State.Enabled)
}

func TestRawPreviewOpensInput(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(h.dir, "photo.bmp")
	testutils.WriteBMP(t, input, 4, 4)

	h.open(input)
	alsrt.Equal(t, mode.RawPreview, h.m.focused())
	h.press("enter")
	assert.Equal(t, []string{input}, h.opened)
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)

	h.press("?")
	assert.True(t, h.m.ShowHelp())
	assert.Contains(t, testutils.StripANSI(h.m.View()), "Open a .bmp image")
	h.press("?")
	assert.False(t, h.m.ShowHelp())
}

func TestQuit(t *testing.T) {
	h := newHarness(t)

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestOpenCodestreamShowsHeaderAndBoundsDiscard(t *testing.T) {
	h := newHarness(t)
	_, jp2, _ := testutils.CreateTestImages(t, h.dir)

	h.open(jp2)
	assert.Equal(t, mode.DecompressReady, h.m.Mode())
	assert.Equal(t, "JP2 8x8, 3 resolution levels", h.m.Status())

	h.focus(t, mode.DecompressResolution)
	h.press("right", "right", "right", "right")
	assert.Equal(t, "2", h.row(mode.DecompressResolution).Value, "cannot discard every level")
}
