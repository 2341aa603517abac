package main

import (
	"os"

	"jp2mi/internal/errors"
	"jp2mi/internal/gui"
	"jp2mi/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewGUICmd creates the GUI command for the CLI
func NewGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical user interface",
		Long:  `Open the desktop window with the compression and decompression panels.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gui.IsGUIAvailable() {
				return errors.New("this build has no graphical interface, use 'jp2mi tui'")
			}
			return gui.Start(cfg)
		},
	}
}

// NewTUICmd creates the terminal interface command
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal user interface",
		Long:  `Drive the encoder and decoder from an interactive terminal screen.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("the terminal interface needs an interactive terminal")
			}
			return tui.Run(cfg)
		},
	}
}
