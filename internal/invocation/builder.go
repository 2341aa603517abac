// Package invocation turns a snapshot of the front end's selections into the
// command line of the external encoder or decoder.
package invocation

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"jp2mi/internal/choice"
	"jp2mi/internal/errors"
	"jp2mi/internal/mode"
)

// Default executable names of the external codecs
const (
	DefaultEncoder   = "JPEG2000_MI_Encoding"
	DefaultDecoder   = "JPEG2000_MI_Decoding"
	DefaultRawFormat = "bmp"
)

// ProgressionOrders are the packet orders the encoder understands
var ProgressionOrders = []string{"LRCP", "RLCP", "RPCL", "PCRL", "CPRL"}

// OutputTarget is where a run writes and in which format
type OutputTarget struct {
	Path   string
	Format string
}

// CompressionConfig is a snapshot of the compression controls. Choice fields
// hold the checked label of their group, empty when nothing is checked.
type CompressionConfig struct {
	Format      string
	Profile     string
	Progression string
	Codeblock   string
	Ratio       string
	Resolutions string
}

// DecompressionConfig is a snapshot of the decompression controls
type DecompressionConfig struct {
	Resolutions string
	RGB         string
}

// CommandLine is a ready-to-launch invocation
type CommandLine struct {
	Executable string
	Args       []string
}

// ArgString joins the arguments with spaces, quoting any that contain
// whitespace.
func (c CommandLine) ArgString() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = quote(a)
	}
	return strings.Join(parts, " ")
}

func (c CommandLine) String() string {
	if len(c.Args) == 0 {
		return quote(c.Executable)
	}
	return quote(c.Executable) + " " + c.ArgString()
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return strconv.Quote(s)
	}
	return s
}

// Builder builds codec invocations. It has no state beyond the resolved
// executable paths and never launches anything.
type Builder struct {
	Encoder   string
	Decoder   string
	RawFormat string
}

// NewBuilder resolves the encoder and decoder names against dir. An empty
// dir means the process working directory.
func NewBuilder(dir, encoder, decoder, rawFormat string) (*Builder, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "resolve working directory")
		}
		dir = wd
	}
	if encoder == "" {
		encoder = DefaultEncoder
	}
	if decoder == "" {
		decoder = DefaultDecoder
	}
	if rawFormat == "" {
		rawFormat = DefaultRawFormat
	}
	return &Builder{
		Encoder:   ResolveExecutable(dir, encoder),
		Decoder:   ResolveExecutable(dir, decoder),
		RawFormat: rawFormat,
	}, nil
}

// ResolveExecutable joins name onto dir unless it is already absolute, and
// appends .exe on Windows when name has no extension.
func ResolveExecutable(dir, name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Compress builds the encoder invocation for a raw image selection:
//
//	-i <in> -o <out> -OutFor <FMT> -r <ratio> -n <levels> -b <W>,<H> [-I] -p <order>
func (b *Builder) Compress(sel mode.Selection, out OutputTarget, cfg CompressionConfig) (CommandLine, error) {
	a := newArguments()

	if sel.Kind() != mode.RawImage {
		return CommandLine{}, errors.NewFieldError("missing value", "input", sel.Input(), nil)
	}
	a.set("input", sel.InputRaw)

	if out.Path == "" {
		return CommandLine{}, errors.NewFieldError("missing value", "output", "", nil)
	}
	a.set("output", out.Path)

	format, err := compressFormat(out.Format, cfg.Format)
	if err != nil {
		return CommandLine{}, err
	}
	a.set("format", strings.ToUpper(format))

	ratio, err := parseRatio(cfg.Ratio)
	if err != nil {
		return CommandLine{}, err
	}
	a.set("ratio", ratio)

	levels, err := parseLevels("resolutions", cfg.Resolutions, 1)
	if err != nil {
		return CommandLine{}, err
	}
	a.set("resolutions", levels)

	if cfg.Codeblock == "" {
		return CommandLine{}, errors.NewSelectionError(choice.Codeblock)
	}
	w, h, err := ParseCodeblock(cfg.Codeblock)
	if err != nil {
		return CommandLine{}, err
	}
	a.set("codeblock", strconv.Itoa(w)+","+strconv.Itoa(h))

	irreversible, err := profileSwitch(cfg.Profile)
	if err != nil {
		return CommandLine{}, err
	}
	a.toggle("irreversible", irreversible)

	order, err := progressionOrder(cfg.Progression)
	if err != nil {
		return CommandLine{}, err
	}
	a.set("progression", order)

	args, err := compressGrammar.render(a)
	if err != nil {
		return CommandLine{}, err
	}
	return CommandLine{Executable: b.Encoder, Args: args}, nil
}

// Decompress builds the decoder invocation for a codec container selection:
//
//	-i <in> -o <out> -OutFor <RAW> -r <levels> [-force-rgb]
func (b *Builder) Decompress(sel mode.Selection, out OutputTarget, cfg DecompressionConfig) (CommandLine, error) {
	a := newArguments()

	if sel.Kind() != mode.CodecContainer {
		return CommandLine{}, errors.NewFieldError("missing value", "input", sel.Input(), nil)
	}
	a.set("input", sel.InputCodec)

	if out.Path == "" {
		return CommandLine{}, errors.NewFieldError("missing value", "output", "", nil)
	}
	a.set("output", out.Path)

	raw := b.RawFormat
	if raw == "" {
		raw = DefaultRawFormat
	}
	if out.Format != "" && !strings.EqualFold(out.Format, raw) {
		return CommandLine{}, errors.NewFieldError("decompression always writes "+raw, "format", out.Format, nil)
	}
	a.set("format", strings.ToUpper(raw))

	levels, err := parseLevels("resolutions", cfg.Resolutions, 0)
	if err != nil {
		return CommandLine{}, err
	}
	a.set("resolutions", levels)

	switch cfg.RGB {
	case "":
		return CommandLine{}, errors.NewSelectionError(choice.ForceRGB)
	case choice.RGBForce:
		a.toggle("force-rgb", true)
	case choice.RGBNative:
		a.toggle("force-rgb", false)
	default:
		return CommandLine{}, errors.NewFieldError("unknown option", choice.ForceRGB, cfg.RGB, nil)
	}

	args, err := decompressGrammar.render(a)
	if err != nil {
		return CommandLine{}, err
	}
	return CommandLine{Executable: b.Decoder, Args: args}, nil
}

// ParseCodeblock splits a "W*H" codeblock size into two positive integers
func ParseCodeblock(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.TrimSpace(s), "*")
	if !ok {
		return 0, 0, errors.NewCodeblockError(s, nil)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, errors.NewCodeblockError(s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, errors.NewCodeblockError(s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.NewCodeblockError(s, nil)
	}
	return w, h, nil
}

func compressFormat(target, chosen string) (string, error) {
	switch {
	case chosen == "":
		return "", errors.NewSelectionError(choice.Format)
	case target == "" || strings.EqualFold(target, chosen):
		return chosen, nil
	default:
		return "", errors.NewFieldError("output format does not match the chosen format "+chosen, "format", target, nil)
	}
}

// profileSwitch reports whether -I is emitted. The front end's contract puts
// -I on the lossless profile and leaves lossy bare, whatever the encoder's own
// help text calls the switch.
func profileSwitch(profile string) (bool, error) {
	switch profile {
	case "":
		return false, errors.NewSelectionError(choice.Profile)
	case choice.Lossless:
		return true, nil
	case choice.Lossy:
		return false, nil
	default:
		return false, errors.NewFieldError("unknown option", choice.Profile, profile, nil)
	}
}

func progressionOrder(order string) (string, error) {
	if order == "" {
		return "", errors.NewSelectionError(choice.Progression)
	}
	for _, o := range ProgressionOrders {
		if strings.EqualFold(o, order) {
			return o, nil
		}
	}
	return "", errors.NewFieldError("unknown option", choice.Progression, order, nil)
}

func parseRatio(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewFieldError("missing value", "ratio", "", nil)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", errors.NewFieldError("unparsable value", "ratio", s, err)
	}
	if f <= 0 {
		return "", errors.NewFieldError("ratio must be positive", "ratio", s, nil)
	}
	return s, nil
}

func parseLevels(field, s string, least int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewFieldError("missing value", field, "", nil)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", errors.NewFieldError("unparsable value", field, s, err)
	}
	if n < least {
		return "", errors.NewFieldError("value out of range", field, s, nil)
	}
	return strconv.Itoa(n), nil
}

// WithExtension appends .ext to path unless it already ends with it, in any
// case.
func WithExtension(path, ext string) string {
	if strings.EqualFold(filepath.Ext(path), "."+ext) {
		return path
	}
	return path + "." + ext
}

// SuggestOutput names an output after input with the extension swapped
func SuggestOutput(input, ext string) string {
	if input == "" {
		return "output." + ext
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
}
