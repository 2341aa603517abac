//go:build !nogui

package gui

import (
	"os"

	"jp2mi/internal/log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// Picker asks the user for input and output files. onChosen receives an
// empty path when the dialog is cancelled.
type Picker interface {
	OpenFile(extensions []string, onChosen func(path string))
	SaveFile(suggested string, extension string, onChosen func(path string))
}

// dialogPicker shows fyne's file dialogs on the main window
type dialogPicker struct {
	window     fyne.Window
	initialDir string
}

func (p *dialogPicker) location() fyne.ListableURI {
	if p.initialDir == "" {
		return nil
	}
	l, err := storage.ListerForURI(storage.NewFileURI(p.initialDir))
	if err != nil {
		log.LogWithFields(log.F("dir", p.initialDir), log.F("error", err)).Debug("Dialog start directory unavailable")
		return nil
	}
	return l
}

func (p *dialogPicker) OpenFile(extensions []string, onChosen func(string)) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			log.LogError(err, "Open dialog failed")
			onChosen("")
			return
		}
		if r == nil {
			onChosen("")
			return
		}
		path := r.URI().Path()
		r.Close()
		onChosen(path)
	}, p.window)
	d.SetFilter(storage.NewExtensionFileFilter(extensions))
	if l := p.location(); l != nil {
		d.SetLocation(l)
	}
	d.Show()
}

func (p *dialogPicker) SaveFile(suggested, extension string, onChosen func(string)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			log.LogError(err, "Save dialog failed")
			onChosen("")
			return
		}
		if w == nil {
			onChosen("")
			return
		}
		path := w.URI().Path()
		w.Close()
		// The save dialog has already created an empty file; the codec
		// writes the real one.
		if info, err := os.Stat(path); err == nil && info.Size() == 0 {
			os.Remove(path)
		}
		onChosen(path)
	}, p.window)
	d.SetFileName(suggested)
	d.SetFilter(storage.NewExtensionFileFilter([]string{"." + extension}))
	if l := p.location(); l != nil {
		d.SetLocation(l)
	}
	d.Show()
}
