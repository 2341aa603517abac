package main

import (
	"fmt"

	"jp2mi/cmd/jp2mi/cli"
	"jp2mi/internal/config"
	"jp2mi/internal/log"
	"jp2mi/internal/tui/styles"

	"github.com/spf13/cobra"
)

// allowMissingConfig marks commands that accept a --config file that does not
// exist yet
const allowMissingConfig = "allow-missing-config"

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jp2mi",
		Short: "Compress and decompress JPEG 2000 images",
		Long: `jp2mi drives the JPEG 2000 MI encoder and decoder.

Open a .bmp image to compress it, or a .jp2/.j2k/.j2c file to decompress it,
either from the desktop window (gui), the terminal (tui) or directly from
the command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	helpTemplate := cli.Logo() + "\n\n" + rootCmd.HelpTemplate()
	rootCmd.SetHelpTemplate(helpTemplate)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/jp2mi/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewGUICmd())
	rootCmd.AddCommand(NewTUICmd())
	rootCmd.AddCommand(NewCompressCmd())
	rootCmd.AddCommand(NewDecompressCmd())
	rootCmd.AddCommand(NewPreviewCmd())
	rootCmd.AddCommand(NewInfoCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// loadConfig reads the configuration and sets up logging and themes. An
// explicit --config file must exist and load, unless the command is marked
// with allowMissingConfig; the default file falls back to the built-in
// settings with a warning.
func loadConfig(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		load := config.LoadExistingConfigFile
		if cmd.Annotations[allowMissingConfig] == "true" {
			load = config.LoadConfigFile
		}
		cfg, err = load(cfgFile)
		if err != nil {
			return err
		}
	} else {
		cfg, err = config.LoadConfig()
		if err != nil {
			cli.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%v", err))
			cli.PrintInfo(cmd.ErrOrStderr(), "Using default settings. Run 'jp2mi config init' to write a fresh config.")
			cfg = config.New()
		}
	}

	opts := []log.Option{log.WithOutput(cmd.ErrOrStderr())}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	log.Configure(opts...)
	log.SetDebug(debug || cfg.Log.Debug)

	cli.SetTheme(cfg.Theme.Name)
	styles.Apply(cfg.Theme.Name)

	log.LogWithFields(log.F("config", cfgFile), log.F("theme", cfg.Theme.Name)).Debug("Configuration loaded")
	return nil
}
