//go:build nogui
// +build nogui

package gui

import (
	"fmt"

	"jp2mi/internal/config"
)

// Start is a stub implementation for builds with GUI disabled
func Start(cfg *config.Config) error {
	fmt.Println("GUI is disabled in this build. Please use the tui or compress/decompress commands.")
	return fmt.Errorf("GUI not available in this build")
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}
