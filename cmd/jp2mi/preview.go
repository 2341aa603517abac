package main

import (
	"os"

	"jp2mi/internal/errors"
	"jp2mi/internal/launch"

	"github.com/spf13/cobra"
)

// NewPreviewCmd creates the preview command
func NewPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <image>",
		Short: "Open an image in the system viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return errors.NewFileError("cannot preview", path, errors.FileNotFound, err)
			}
			return launch.NewViewer(openImage).Open(path)
		},
	}
}
