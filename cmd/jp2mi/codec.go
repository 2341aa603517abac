package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"jp2mi/cmd/jp2mi/cli"
	"jp2mi/internal/analysis"
	"jp2mi/internal/choice"
	"jp2mi/internal/errors"
	"jp2mi/internal/invocation"
	"jp2mi/internal/launch"
	"jp2mi/internal/log"
	"jp2mi/internal/mode"
	"jp2mi/internal/watch"

	"github.com/spf13/cobra"
)

// previewTimeout bounds the wait for the output after the codec exits
const previewTimeout = 5 * time.Second

// openImage shows a file in the system viewer
var openImage launch.Opener = launch.ShellOpen

// runOptions are the flags shared by compress and decompress
type runOptions struct {
	output  string
	dryRun  bool
	preview bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file (default is the input name with the new extension)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print the codec command without running it")
	cmd.Flags().BoolVar(&o.preview, "preview", false, "Open the output in the system viewer when it is written")
}

// NewCompressCmd creates the compress command
func NewCompressCmd() *cobra.Command {
	var (
		opts        runOptions
		format      string
		profile     string
		progression string
		codeblock   string
		ratio       int
		resolutions int
	)

	cmd := &cobra.Command{
		Use:   "compress <image.bmp>",
		Short: "Compress a raw image into JPEG 2000",
		Long: `Compress a raw image with the JPEG 2000 MI encoder. Options not given on
the command line take their values from the configuration defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := selectInput(args[0], mode.CompressReady)
			if err != nil {
				return err
			}

			g := cfg.Groups()
			checks := []struct {
				flag  string
				group *choice.Group
				value string
			}{
				{"format", g.Format, format},
				{"profile", g.Profile, profile},
				{"progression", g.Progression, progression},
				{"codeblock", g.Codeblock, codeblock},
			}
			for _, c := range checks {
				if !cmd.Flags().Changed(c.flag) {
					continue
				}
				if !c.group.Has(c.value) {
					return errors.NewFieldError("unknown option", c.flag, c.value, nil)
				}
				c.group.Check(c.value)
			}

			conf := invocation.CompressionConfig{
				Format:      g.Format.Selected,
				Profile:     g.Profile.Selected,
				Progression: g.Progression.Selected,
				Codeblock:   g.Codeblock.Selected,
				Ratio:       strconv.Itoa(cfg.Defaults.Ratio),
				Resolutions: strconv.Itoa(cfg.Defaults.Resolutions),
			}
			if cmd.Flags().Changed("ratio") {
				conf.Ratio = strconv.Itoa(ratio)
			}
			if cmd.Flags().Changed("resolutions") {
				conf.Resolutions = strconv.Itoa(resolutions)
			}

			target, err := g.Format.Pick()
			if err != nil {
				return err
			}
			out := outputPath(args[0], opts.output, target)

			builder, err := cfg.NewBuilder()
			if err != nil {
				return err
			}
			line, err := builder.Compress(machine.Selection(), invocation.OutputTarget{Path: out, Format: target}, conf)
			if err != nil {
				return err
			}
			return execute(cmd, machine, line, out, mode.CompressPreviewAction, opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Container format (jp2, j2k or j2c)")
	cmd.Flags().StringVar(&profile, "profile", "", "Compression profile (lossy or lossless)")
	cmd.Flags().StringVarP(&progression, "progression", "p", "", "Progression order (LRCP, RLCP, RPCL, PCRL or CPRL)")
	cmd.Flags().StringVarP(&codeblock, "codeblock", "b", "", "Codeblock size as W*H")
	cmd.Flags().IntVarP(&ratio, "ratio", "r", 0, "Compression ratio")
	cmd.Flags().IntVarP(&resolutions, "resolutions", "n", 0, "Number of resolution levels")

	return cmd
}

// NewDecompressCmd creates the decompress command
func NewDecompressCmd() *cobra.Command {
	var (
		opts        runOptions
		resolutions int
		forceRGB    bool
	)

	cmd := &cobra.Command{
		Use:   "decompress <image.jp2>",
		Short: "Decompress a JPEG 2000 file into a raw image",
		Long:  `Decompress a JPEG 2000 codestream or container with the JPEG 2000 MI decoder.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := selectInput(args[0], mode.DecompressReady)
			if err != nil {
				return err
			}

			builder, err := cfg.NewBuilder()
			if err != nil {
				return err
			}

			g := cfg.Groups()
			conf := invocation.DecompressionConfig{
				Resolutions: strconv.Itoa(cfg.Defaults.DecodeResolution),
				RGB:         g.ForceRGB.Selected,
			}
			if cmd.Flags().Changed("resolutions") {
				conf.Resolutions = strconv.Itoa(resolutions)
				if err := checkDiscard(args[0], resolutions); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("force-rgb") {
				conf.RGB = choice.RGBNative
				if forceRGB {
					conf.RGB = choice.RGBForce
				}
			}

			out := outputPath(args[0], opts.output, builder.RawFormat)
			line, err := builder.Decompress(machine.Selection(), invocation.OutputTarget{Path: out, Format: builder.RawFormat}, conf)
			if err != nil {
				return err
			}
			return execute(cmd, machine, line, out, mode.DecompressPreviewAction, opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVarP(&resolutions, "resolutions", "r", 0, "Number of highest resolution levels to discard")
	cmd.Flags().BoolVar(&forceRGB, "force-rgb", false, "Force RGB output")

	return cmd
}

// selectInput runs path through the mode machine and checks it lands in want
func selectInput(path string, want mode.Mode) (*mode.Machine, error) {
	machine, err := cfg.NewMachine()
	if err != nil {
		return nil, err
	}
	machine.OnFileSelected(path)
	if machine.Mode() != want {
		if want == mode.CompressReady {
			return nil, errors.NewFieldError("not a raw image", "input", path, nil)
		}
		return nil, errors.NewFieldError("not a JPEG 2000 file", "input", path, nil)
	}
	return machine, nil
}

// checkDiscard rejects discarding as many resolution levels as the
// codestream has. Inputs whose header cannot be read are left to the decoder.
func checkDiscard(input string, discard int) error {
	info, err := analysis.New().Analyze(input)
	if err != nil {
		log.LogWithError(err).Debug("Input header not checked")
		return nil
	}
	if info.IsCodestream() && discard >= info.Resolutions {
		return errors.NewFieldError(
			fmt.Sprintf("the input has only %d resolution levels", info.Resolutions),
			"resolutions", strconv.Itoa(discard), nil)
	}
	return nil
}

// outputPath returns the explicit output with ext appended, or the input's
// name with ext in the input's directory.
func outputPath(input, output, ext string) string {
	if output == "" {
		return filepath.Join(filepath.Dir(input), invocation.SuggestOutput(input, ext))
	}
	return invocation.WithExtension(output, ext)
}

// execute prints line and, unless this is a dry run, runs it to completion.
// With preview set the output is watched and opened once it is written.
func execute(cmd *cobra.Command, machine *mode.Machine, line invocation.CommandLine, out string, action mode.ControlGroup, opts runOptions) error {
	w := cmd.OutOrStdout()
	if err := machine.SetOutput(out); err != nil {
		return err
	}

	fmt.Fprintln(w, line.String())
	if opts.dryRun {
		return nil
	}

	var watcher *watch.OutputWatcher
	if opts.preview {
		var err error
		watcher, err = watch.New(out)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	done := make(chan launch.Result, 1)
	runner := launch.NewRunner()
	runner.OnExit = func(res launch.Result) { done <- res }
	if err := runner.Launch(line); err != nil {
		return err
	}
	res := <-done
	if res.Err != nil {
		return errors.NewLaunchError("codec failed", line.Executable, errors.LaunchFailed, res.Err)
	}
	cli.PrintSuccess(w, fmt.Sprintf("Wrote %s in %s", out, res.Duration.Round(time.Millisecond)))

	if watcher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), previewTimeout)
	defer cancel()
	ev, err := watch.WaitFor(ctx, watcher)
	if err != nil {
		return errors.NewFileError("output was not written", out, errors.FileNotFound, err)
	}
	machine.MarkOutputReady(ev.Path)

	target, err := machine.PreviewTarget(action)
	if err != nil {
		return err
	}
	log.LogWithFields(log.F("path", target)).Debug("Opening preview")
	return launch.NewViewer(openImage).Open(target)
}
