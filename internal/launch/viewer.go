package launch

import (
	"os"
	"os/exec"
	"runtime"

	"jp2mi/internal/errors"
	"jp2mi/internal/log"
)

// Opener hands a file to whatever shows it
type Opener func(path string) error

// Viewer opens image files in an external viewer
type Viewer struct {
	open Opener
}

// NewViewer creates a viewer using open, or the operating system's default
// file association when open is nil.
func NewViewer(open Opener) *Viewer {
	if open == nil {
		open = ShellOpen
	}
	return &Viewer{open: open}
}

// Open shows path. Empty or missing paths are ignored.
func (v *Viewer) Open(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		log.LogWithFields(log.F("path", path)).Debug("Preview skipped, file does not exist")
		return nil
	}
	if err := v.open(path); err != nil {
		return errors.NewFileError("failed to open viewer", path, errors.LaunchFailed, err)
	}
	log.LogWithFields(log.F("path", path)).Info("Preview opened")
	return nil
}

// ShellOpen opens path with the platform's default application
func ShellOpen(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
