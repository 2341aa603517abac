package main

import (
	"fmt"

	"jp2mi/cmd/jp2mi/cli"
	"jp2mi/internal/analysis"

	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command
func NewInfoCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Show the header of a bitmap or JPEG 2000 file",
		Long: `Read the header of a raw bitmap or a JPEG 2000 file and print its size and,
for JPEG 2000, the coding parameters it was compressed with.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := analysis.New().Analyze(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				fmt.Fprintln(w, info.ToJSON())
				return nil
			}
			cli.PrintHeader(w, info.Name())
			fmt.Fprint(w, info.String())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	return cmd
}
