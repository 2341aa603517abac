//go:build !nogui

package gui

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"jp2mi/internal/analysis"
	"jp2mi/internal/config"
	"jp2mi/internal/invocation"
	"jp2mi/internal/launch"
	"jp2mi/internal/log"
	"jp2mi/internal/mode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config

	// mu serializes access to the machine between UI callbacks and the
	// output watcher.
	mu        sync.Mutex
	machine   *mode.Machine
	builder   *invocation.Builder
	launcher  launch.Launcher
	viewer    *launch.Viewer
	analyzer  *analysis.Engine
	picker    Picker
	groups    config.Groups
	stopWatch func()

	controls *controls
}

// Option customizes an App
type Option func(*App)

// WithFyneApp runs the GUI on an existing fyne application, such as
// fyne.io/fyne/v2/test.NewApp().
func WithFyneApp(fa fyne.App) Option {
	return func(a *App) { a.fyneApp = fa }
}

// WithLauncher replaces the process launcher
func WithLauncher(l launch.Launcher) Option {
	return func(a *App) { a.launcher = l }
}

// WithViewer replaces the preview viewer
func WithViewer(v *launch.Viewer) Option {
	return func(a *App) { a.viewer = v }
}

// WithPicker replaces the file dialogs
func WithPicker(p Picker) Option {
	return func(a *App) { a.picker = p }
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
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

	a := &App{
		cfg:      cfg,
		machine:  machine,
		builder:  builder,
		analyzer: analysis.New(),
		groups:   cfg.Groups(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.fyneApp == nil {
		a.fyneApp = app.NewWithID("io.github.jp2mi")
	}
	a.mainWindow = a.fyneApp.NewWindow("JPEG2000 MI")

	if a.picker == nil {
		a.picker = &dialogPicker{window: a.mainWindow, initialDir: cfg.InitialDir()}
	}
	if a.viewer == nil {
		a.viewer = launch.NewViewer(a.openURL)
	}
	if a.launcher == nil {
		runner := launch.NewRunner()
		runner.OnExit = a.onCodecExit
		a.launcher = runner
	}

	a.controls = a.buildControls()
	a.mainWindow.SetContent(a.controls.layout())
	a.mainWindow.Resize(fyne.NewSize(720, 560))

	a.machine.Subscribe(a.controls.apply)
	return a, nil
}

var _ Interface = (*App)(nil)

// Start opens the main window and blocks until it is closed
func Start(cfg *config.Config) error {
	a, err := NewApp(cfg)
	if err != nil {
		return err
	}
	a.Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.SetOnClosed(a.cancelWatch)
	a.mainWindow.ShowAndRun()
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.LogWithError(err).Error(title)
	a.controls.status.SetText(title + ": " + err.Error())
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	a.controls.status.SetText(message)
	dialog.ShowInformation("Information", message, a.mainWindow)
}

func (a *App) setStatus(text string) {
	a.controls.status.SetText(text)
}

// openURL hands path to the desktop through fyne
func (a *App) openURL(path string) error {
	u, err := url.Parse(storage.NewFileURI(path).String())
	if err != nil {
		return err
	}
	return a.fyneApp.OpenURL(u)
}

func (a *App) onCodecExit(res launch.Result) {
	if res.Err != nil {
		a.ShowError("Codec failed", res.Err)
		return
	}
	a.setStatus(fmt.Sprintf("Finished in %s", res.Duration.Round(time.Millisecond)))
}
