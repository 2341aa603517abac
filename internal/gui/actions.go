//go:build !nogui

package gui

import (
	"path/filepath"

	"jp2mi/internal/invocation"
	"jp2mi/internal/log"
	"jp2mi/internal/mode"
	"jp2mi/internal/watch"
)

// inputExtensions lists the file types the open dialog offers
func (a *App) inputExtensions() []string {
	exts := []string{"." + a.cfg.Formats.RawFormat}
	for _, c := range a.cfg.Formats.Containers {
		exts = append(exts, "."+c)
	}
	return exts
}

func (a *App) selectFile() {
	a.picker.OpenFile(a.inputExtensions(), a.onFileSelected)
}

func (a *App) onFileSelected(path string) {
	if path == "" {
		return
	}
	a.cancelWatch()

	a.mu.Lock()
	a.machine.OnFileSelected(path)
	a.mu.Unlock()

	a.controls.inputLabel.SetText(path)
	a.controls.outputLabel.SetText("")
	a.setStatus("")

	if info, err := a.analyzer.Analyze(path); err == nil {
		a.setStatus(info.Summary())
	} else {
		log.LogWithError(err).Debug("Input header not read")
	}
}

func (a *App) compress() {
	format, err := a.groups.Format.Pick()
	if err != nil {
		a.ShowError("Cannot compress", err)
		return
	}
	a.picker.SaveFile(a.suggestedOutput(format), format, func(path string) {
		if path == "" {
			return
		}
		path = invocation.WithExtension(path, format)
		a.run(path, func(sel mode.Selection) (invocation.CommandLine, error) {
			out := invocation.OutputTarget{Path: path, Format: format}
			return a.builder.Compress(sel, out, a.compressionConfig())
		})
	})
}

func (a *App) decompress() {
	format := a.builder.RawFormat
	a.picker.SaveFile(a.suggestedOutput(format), format, func(path string) {
		if path == "" {
			return
		}
		path = invocation.WithExtension(path, format)
		a.run(path, func(sel mode.Selection) (invocation.CommandLine, error) {
			out := invocation.OutputTarget{Path: path, Format: format}
			return a.builder.Decompress(sel, out, a.decompressionConfig())
		})
	})
}

// run builds the invocation for the current selection and starts the codec.
// The output is recorded and the previous run's watcher replaced only once the
// launch succeeds. The output's directory is watched so the preview action
// unlocks once the file appears.
func (a *App) run(path string, build func(mode.Selection) (invocation.CommandLine, error)) {
	a.mu.Lock()
	cmd, err := build(a.machine.Selection())
	a.mu.Unlock()
	if err != nil {
		a.ShowError("Cannot build command", err)
		return
	}

	stop, err := watch.Notify(path, a.onOutputReady)
	if err != nil {
		log.LogWithError(err).Warn("Output will not be watched")
	}

	log.LogWithFields(log.F("executable", cmd.Executable), log.F("args", cmd.ArgString())).Debug("Launching codec")
	if err := a.launcher.Launch(cmd); err != nil {
		if stop != nil {
			stop()
		}
		a.ShowError("Cannot start codec", err)
		return
	}

	a.cancelWatch()
	a.mu.Lock()
	err = a.machine.SetOutput(path)
	a.stopWatch = stop
	a.mu.Unlock()
	if err != nil {
		a.ShowError("Cannot record output", err)
		return
	}

	a.controls.outputLabel.SetText("Output: " + path)
	a.setStatus("Running " + filepath.Base(cmd.Executable))
}

func (a *App) onOutputReady(ev watch.OutputEvent) {
	a.mu.Lock()
	changed := a.machine.MarkOutputReady(ev.Path)
	a.mu.Unlock()
	if changed {
		a.setStatus("Output ready: " + ev.Path)
	}
}

func (a *App) cancelWatch() {
	a.mu.Lock()
	stop := a.stopWatch
	a.stopWatch = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (a *App) preview(action mode.ControlGroup) {
	a.mu.Lock()
	target, err := a.machine.PreviewTarget(action)
	a.mu.Unlock()
	if err != nil {
		a.ShowError("Nothing to show", err)
		return
	}
	if err := a.viewer.Open(target); err != nil {
		a.ShowError("Cannot show image", err)
	}
}

// suggestedOutput names the output after the input with the new extension
func (a *App) suggestedOutput(ext string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return invocation.SuggestOutput(a.machine.Selection().Input(), ext)
}
