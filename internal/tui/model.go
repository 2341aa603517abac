// Package tui is the terminal front end. It drives the same mode machine and
// invocation builder as the desktop window, one keypress at a time.
package tui

import (
	"path/filepath"
	"strconv"
	"strings"

	"jp2mi/internal/analysis"
	"jp2mi/internal/choice"
	"jp2mi/internal/config"
	"jp2mi/internal/invocation"
	"jp2mi/internal/launch"
	"jp2mi/internal/log"
	"jp2mi/internal/mode"
	"jp2mi/internal/tui/common"
	"jp2mi/internal/tui/components"
	"jp2mi/internal/tui/messages"
	"jp2mi/internal/tui/styles"
	"jp2mi/internal/tui/views"
	"jp2mi/internal/watch"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptInput
	promptOutput
)

// rowOrder is the top-to-bottom order of the control rows
var rowOrder = []mode.ControlGroup{
	mode.RawPreview,
	mode.FileFormat,
	mode.CompressionProfile,
	mode.Progression,
	mode.CodeblockSize,
	mode.ResolutionNumber,
	mode.CompressionValue,
	mode.CompressAction,
	mode.CompressPreviewAction,
	mode.DecompressRGBProfile,
	mode.DecompressResolution,
	mode.DecompressAction,
	mode.DecompressPreviewAction,
}

var rowLabels = map[mode.ControlGroup]string{
	mode.RawPreview:              "Show original",
	mode.FileFormat:              "File format",
	mode.CompressionProfile:      "Profile",
	mode.Progression:             "Progression order",
	mode.CodeblockSize:           "Codeblock size",
	mode.ResolutionNumber:        "Resolution levels",
	mode.CompressionValue:        "Compression ratio",
	mode.CompressAction:          "Compress",
	mode.CompressPreviewAction:   "Show compressed",
	mode.DecompressRGBProfile:    "Colour",
	mode.DecompressResolution:    "Resolution to discard",
	mode.DecompressAction:        "Decompress",
	mode.DecompressPreviewAction: "Show decompressed",
}

// number is a bounded integer control
type number struct {
	value int
	least int
	most  int
}

func (n *number) step(delta int) {
	v := n.value + delta
	if v < n.least || v > n.most {
		return
	}
	n.value = v
}

func (n number) String() string {
	return strconv.Itoa(n.value)
}

type Model struct {
	cfg      *config.Config
	machine  *mode.Machine
	builder  *invocation.Builder
	launcher launch.Launcher
	viewer   *launch.Viewer
	analyzer *analysis.Engine
	keys     KeyMap

	choices map[mode.ControlGroup]*choice.Group
	numbers map[mode.ControlGroup]*number

	cursor   int
	showHelp bool

	// Prompt state
	prompt  promptKind
	pending mode.ControlGroup
	input   textinput.Model

	status    *components.StatusBar
	events    chan tea.Msg
	stopWatch func()
}

// Option customizes a Model
type Option func(*Model)

// WithLauncher replaces the process launcher
func WithLauncher(l launch.Launcher) Option {
	return func(m *Model) { m.launcher = l }
}

// WithViewer replaces the preview viewer
func WithViewer(v *launch.Viewer) Option {
	return func(m *Model) { m.viewer = v }
}

// New creates the terminal model
func New(cfg *config.Config, opts ...Option) (*Model, error) {
	if cfg == nil {
		cfg = config.New()
	}
	machine, err := cfg.NewMachine()
	if err != nil {
		return nil, err
	}
	builder, err := cfg.NewBuilder()
	if err != nil {
		return nil, err
	}
	styles.Apply(cfg.Theme.Name)

	g := cfg.Groups()
	d := cfg.Defaults
	m := &Model{
		cfg:      cfg,
		machine:  machine,
		builder:  builder,
		analyzer: analysis.New(),
		keys:     DefaultKeyMap(),
		choices: map[mode.ControlGroup]*choice.Group{
			mode.FileFormat:           g.Format,
			mode.CompressionProfile:   g.Profile,
			mode.Progression:          g.Progression,
			mode.CodeblockSize:        g.Codeblock,
			mode.DecompressRGBProfile: g.ForceRGB,
		},
		numbers: map[mode.ControlGroup]*number{
			mode.ResolutionNumber:     {value: d.Resolutions, least: 1, most: config.MaxResolutions},
			mode.CompressionValue:     {value: d.Ratio, least: 1, most: config.MaxRatio},
			mode.DecompressResolution: {value: d.DecodeResolution, least: 0, most: config.MaxDecodeResolution},
		},
		input:  textinput.New(),
		status: components.NewStatusBar(),
		events: make(chan tea.Msg, 8),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.viewer == nil {
		m.viewer = launch.NewViewer(nil)
	}
	if m.launcher == nil {
		runner := launch.NewRunner()
		events := m.events
		runner.OnExit = func(res launch.Result) {
			send(events, messages.CodecExitMsg{Result: res})
		}
		m.launcher = runner
	}
	return m, nil
}

// Run starts the terminal UI and blocks until the user quits
func Run(cfg *config.Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	defer m.cancelWatch()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// send delivers msg to the event loop without blocking the caller
func send(events chan<- tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
		log.Warn("TUI event queue full, dropped event")
	}
}

// listen waits for the next background event
func (m *Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.listen()
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m, m.status.View())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.handlePromptKey(msg)
		}
		return m.handleKeyMsg(msg)

	case messages.OutputReadyMsg:
		if m.machine.MarkOutputReady(msg.Path) {
			m.status.SetText("Output ready: " + msg.Path)
		}
		return m, m.listen()

	case messages.CodecExitMsg:
		m.status.SetLoading(false)
		if msg.Result.Err != nil {
			m.setError("Codec failed", msg.Result.Err)
		} else {
			m.status.SetText("Codec finished in " + msg.Result.Duration.String())
		}
		return m, m.listen()

	case messages.ErrorMsg:
		m.setError("Error", msg.Err)
		return m, m.listen()

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelWatch()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Open):
		return m, m.openPrompt(promptInput, "Image file", "")
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Prev):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Next):
		m.adjust(1)
	case key.Matches(msg, m.keys.Clear):
		if g, ok := m.focusedChoice(); ok {
			g.Clear()
		}
	case key.Matches(msg, m.keys.Activate):
		return m, m.activate()
	}
	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.closePrompt()
		switch kind {
		case promptInput:
			m.selectInput(value)
			return m, nil
		case promptOutput:
			return m, m.run(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(kind promptKind, placeholder, value string) tea.Cmd {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) selectInput(path string) {
	if path == "" {
		return
	}
	m.cancelWatch()
	m.machine.OnFileSelected(path)
	m.status.SetText("")
	m.cursor = 0
	m.fixCursor()

	discard := m.numbers[mode.DecompressResolution]
	discard.most = config.MaxDecodeResolution
	info, err := m.analyzer.Analyze(path)
	if err != nil {
		log.LogWithError(err).Debug("Input header not read")
		return
	}
	m.status.SetText(info.Summary())
	if info.IsCodestream() && info.Resolutions-1 < discard.most {
		discard.most = info.Resolutions - 1
		if discard.value > discard.most {
			discard.value = discard.most
		}
	}
}

// focused returns the group under the cursor
func (m *Model) focused() mode.ControlGroup {
	return rowOrder[m.cursor]
}

func (m *Model) focusedChoice() (*choice.Group, bool) {
	g := m.focused()
	if !m.machine.Visibility().Enabled(g) {
		return nil, false
	}
	c, ok := m.choices[g]
	return c, ok
}

// moveCursor steps to the next enabled row in direction delta
func (m *Model) moveCursor(delta int) {
	v := m.machine.Visibility()
	for i := m.cursor + delta; i >= 0 && i < len(rowOrder); i += delta {
		if v.Enabled(rowOrder[i]) {
			m.cursor = i
			return
		}
	}
}

// fixCursor moves the cursor onto the first enabled row when its row is
// disabled.
func (m *Model) fixCursor() {
	v := m.machine.Visibility()
	if v.Enabled(m.focused()) {
		return
	}
	for i, g := range rowOrder {
		if v.Enabled(g) {
			m.cursor = i
			return
		}
	}
}

func (m *Model) adjust(delta int) {
	g := m.focused()
	if !m.machine.Visibility().Enabled(g) {
		return
	}
	if c, ok := m.choices[g]; ok {
		if delta < 0 {
			c.Prev()
		} else {
			c.Next()
		}
		return
	}
	if n, ok := m.numbers[g]; ok {
		n.step(delta)
	}
}

func (m *Model) activate() tea.Cmd {
	g := m.focused()
	if !m.machine.Visibility().Enabled(g) {
		return nil
	}
	switch g {
	case mode.RawPreview, mode.CompressPreviewAction, mode.DecompressPreviewAction:
		m.preview(g)
	case mode.CompressAction:
		format, err := m.choices[mode.FileFormat].Pick()
		if err != nil {
			m.setError("Cannot compress", err)
			return nil
		}
		m.pending = g
		return m.openPrompt(promptOutput, "Output file", m.suggest(format))
	case mode.DecompressAction:
		m.pending = g
		return m.openPrompt(promptOutput, "Output file", m.suggest(m.builder.RawFormat))
	}
	return nil
}

func (m *Model) suggest(ext string) string {
	in := m.machine.Selection().Input()
	if in == "" {
		return invocation.SuggestOutput(in, ext)
	}
	return filepath.Join(filepath.Dir(in), invocation.SuggestOutput(in, ext))
}

func (m *Model) preview(g mode.ControlGroup) {
	target, err := m.machine.PreviewTarget(g)
	if err != nil {
		m.setError("Nothing to show", err)
		return
	}
	if err := m.viewer.Open(target); err != nil {
		m.setError("Cannot show image", err)
	}
}

func (m *Model) compressionConfig() invocation.CompressionConfig {
	return invocation.CompressionConfig{
		Format:      m.choices[mode.FileFormat].Selected,
		Profile:     m.choices[mode.CompressionProfile].Selected,
		Progression: m.choices[mode.Progression].Selected,
		Codeblock:   m.choices[mode.CodeblockSize].Selected,
		Ratio:       m.numbers[mode.CompressionValue].String(),
		Resolutions: m.numbers[mode.ResolutionNumber].String(),
	}
}

func (m *Model) decompressionConfig() invocation.DecompressionConfig {
	return invocation.DecompressionConfig{
		Resolutions: m.numbers[mode.DecompressResolution].String(),
		RGB:         m.choices[mode.DecompressRGBProfile].Selected,
	}
}

// run builds the pending action's invocation for path and launches it
func (m *Model) run(path string) tea.Cmd {
	if path == "" {
		return nil
	}

	var (
		cmd invocation.CommandLine
		err error
	)
	switch m.pending {
	case mode.CompressAction:
		format := m.choices[mode.FileFormat].Selected
		path = invocation.WithExtension(path, format)
		out := invocation.OutputTarget{Path: path, Format: format}
		cmd, err = m.builder.Compress(m.machine.Selection(), out, m.compressionConfig())
	case mode.DecompressAction:
		format := m.builder.RawFormat
		path = invocation.WithExtension(path, format)
		out := invocation.OutputTarget{Path: path, Format: format}
		cmd, err = m.builder.Decompress(m.machine.Selection(), out, m.decompressionConfig())
	default:
		return nil
	}
	if err != nil {
		m.setError("Cannot build command", err)
		return nil
	}

	events := m.events
	stop, err := watch.Notify(path, func(ev watch.OutputEvent) {
		send(events, messages.OutputReadyMsg{Path: ev.Path})
	})
	if err != nil {
		log.LogWithError(err).Warn("Output will not be watched")
	}

	log.LogWithFields(log.F("executable", cmd.Executable), log.F("args", cmd.ArgString())).Debug("Launching codec")
	if err := m.launcher.Launch(cmd); err != nil {
		// The run in progress keeps its output and watcher
		if stop != nil {
			stop()
		}
		m.setError("Cannot start codec", err)
		return nil
	}

	m.cancelWatch()
	m.stopWatch = stop
	if err := m.machine.SetOutput(path); err != nil {
		m.setError("Cannot record output", err)
		return nil
	}

	m.status.SetText("Running " + filepath.Base(cmd.Executable))
	m.status.SetLoading(true)
	return m.status.Tick()
}

func (m *Model) cancelWatch() {
	if m.stopWatch != nil {
		m.stopWatch()
		m.stopWatch = nil
	}
}

func (m *Model) setError(title string, err error) {
	log.LogWithError(err).Error(title)
	m.status.SetError(title + ": " + err.Error())
}

// Rows returns every control row with its current value and state
func (m *Model) Rows() []common.Row {
	v := m.machine.Visibility()
	rows := make([]common.Row, len(rowOrder))
	for i, g := range rowOrder {
		row := common.Row{Group: g, Kind: common.ActionRow, Label: rowLabels[g], State: v.Of(g)}
		if c, ok := m.choices[g]; ok {
			row.Kind = common.ChoiceRow
			row.Value = renderChoice(c)
		} else if n, ok := m.numbers[g]; ok {
			row.Kind = common.NumberRow
			row.Value = n.String()
		}
		rows[i] = row
	}
	return rows
}

func renderChoice(g *choice.Group) string {
	parts := make([]string, len(g.Options))
	for i, o := range g.Options {
		mark := "( )"
		if o == g.Selected {
			mark = "(•)"
		}
		parts[i] = mark + " " + o
	}
	return strings.Join(parts, "  ")
}

// Getters

func (m *Model) Cursor() int {
	return m.cursor
}

func (m *Model) Mode() mode.Mode {
	return m.machine.Mode()
}

func (m *Model) Selection() mode.Selection {
	return m.machine.Selection()
}

func (m *Model) ShowHelp() bool {
	return m.showHelp
}

// Prompt reports the active path prompt, if any
func (m *Model) Prompt() (string, string, bool) {
	switch m.prompt {
	case promptInput:
		return "Open", m.input.View(), true
	case promptOutput:
		return "Save as", m.input.View(), true
	}
	return "", "", false
}

// Status returns the status line text
func (m *Model) Status() string {
	return m.status.Text()
}
