package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"jp2mi/internal/choice"
	"jp2mi/internal/errors"
	"jp2mi/internal/invocation"
	"jp2mi/internal/mode"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// It names the external codecs, how input files are classified, the options
// offered by each control group and the values the controls start with.
type Config struct {
	Codec struct {
		Dir     string `yaml:"dir"`     // Directory holding the codecs ("" = working directory)
		Encoder string `yaml:"encoder"` // Encoder executable name
		Decoder string `yaml:"decoder"` // Decoder executable name
	} `yaml:"codec"`
	Formats struct {
		RawPattern string   `yaml:"raw_pattern"` // Glob selecting raw images by base name
		RawFormat  string   `yaml:"raw_format"`  // Format the decoder always writes
		Containers []string `yaml:"containers"`  // Output container formats offered for compression
	} `yaml:"formats"`
	Options struct {
		Profiles     []string `yaml:"profiles"`
		Progressions []string `yaml:"progressions"`
		Codeblocks   []string `yaml:"codeblocks"`
		ForceRGB     []string `yaml:"force_rgb"`
	} `yaml:"options"`
	Defaults Defaults `yaml:"defaults"`
	Dialogs  struct {
		InitialDir string `yaml:"initial_dir"` // Where file dialogs open ("" = home)
	} `yaml:"dialogs"`
	Log struct {
		Debug bool   `yaml:"debug"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Theme struct {
		Name string `yaml:"name"` // default, dark or light
	} `yaml:"theme"`
}

// Defaults are the values controls hold before the user changes them
type Defaults struct {
	Format           string `yaml:"format"`
	Profile          string `yaml:"profile"`
	Progression      string `yaml:"progression"`
	Codeblock        string `yaml:"codeblock"`
	Ratio            int    `yaml:"ratio"`
	Resolutions      int    `yaml:"resolutions"`
	DecodeResolution int    `yaml:"decode_resolution"`
	ForceRGB         string `yaml:"force_rgb"`
}

// Limits for the numeric controls
const (
	MaxRatio            = 100
	MaxResolutions      = 10
	MaxDecodeResolution = 10
)

// DefaultPath returns ~/.config/jp2mi/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jp2mi", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/jp2mi/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	tempCfg.Defaults.Ratio = -1
	tempCfg.Defaults.Resolutions = -1
	tempCfg.Defaults.DecodeResolution = -1
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.merge(&tempCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadExistingConfigFile loads configuration from a file that must exist.
// It is used for paths the user named explicitly.
func LoadExistingConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NewConfigError("config file not found", path, errors.ConfigNotFound, err)
	}
	return LoadConfigFile(path)
}

func (c *Config) merge(t *Config) {
	setString(&c.Codec.Dir, t.Codec.Dir)
	setString(&c.Codec.Encoder, t.Codec.Encoder)
	setString(&c.Codec.Decoder, t.Codec.Decoder)

	setString(&c.Formats.RawPattern, t.Formats.RawPattern)
	setString(&c.Formats.RawFormat, t.Formats.RawFormat)
	setList(&c.Formats.Containers, t.Formats.Containers)

	setList(&c.Options.Profiles, t.Options.Profiles)
	setList(&c.Options.Progressions, t.Options.Progressions)
	setList(&c.Options.Codeblocks, t.Options.Codeblocks)
	setList(&c.Options.ForceRGB, t.Options.ForceRGB)

	setString(&c.Defaults.Format, t.Defaults.Format)
	setString(&c.Defaults.Profile, t.Defaults.Profile)
	setString(&c.Defaults.Progression, t.Defaults.Progression)
	setString(&c.Defaults.Codeblock, t.Defaults.Codeblock)
	setString(&c.Defaults.ForceRGB, t.Defaults.ForceRGB)
	if t.Defaults.Ratio >= 0 {
		c.Defaults.Ratio = t.Defaults.Ratio
	}
	if t.Defaults.Resolutions >= 0 {
		c.Defaults.Resolutions = t.Defaults.Resolutions
	}
	if t.Defaults.DecodeResolution >= 0 {
		c.Defaults.DecodeResolution = t.Defaults.DecodeResolution
	}

	setString(&c.Dialogs.InitialDir, t.Dialogs.InitialDir)
	c.Log.Debug = t.Log.Debug
	setString(&c.Log.File, t.Log.File)
	setString(&c.Theme.Name, t.Theme.Name)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = v
	}
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Codec.Encoder = invocation.DefaultEncoder
	cfg.Codec.Decoder = invocation.DefaultDecoder

	cfg.Formats.RawPattern = mode.DefaultRawPattern
	cfg.Formats.RawFormat = invocation.DefaultRawFormat
	cfg.Formats.Containers = []string{"jp2", "j2k", "j2c"}

	cfg.Options.Profiles = []string{choice.Lossy, choice.Lossless}
	cfg.Options.Progressions = append([]string(nil), invocation.ProgressionOrders...)
	cfg.Options.Codeblocks = []string{"64*64", "32*32", "16*16"}
	cfg.Options.ForceRGB = []string{choice.RGBNative, choice.RGBForce}

	cfg.Defaults = Defaults{
		Format:           "jp2",
		Profile:          choice.Lossy,
		Progression:      "LRCP",
		Codeblock:        "64*64",
		Ratio:            10,
		Resolutions:      6,
		DecodeResolution: 0,
		ForceRGB:         choice.RGBNative,
	}

	cfg.Theme.Name = "default"
	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns error if any settings are invalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if c.Codec.Encoder == "" {
		return invalid("codec.encoder", "executable name is required", nil)
	}
	if c.Codec.Decoder == "" {
		return invalid("codec.decoder", "executable name is required", nil)
	}
	if c.Codec.Dir != "" {
		info, err := os.Stat(c.Codec.Dir)
		if err != nil {
			return invalid("codec.dir", "error accessing codec directory", err)
		}
		if !info.IsDir() {
			return invalid("codec.dir", "not a directory", nil)
		}
	}

	if _, err := glob.Compile(c.Formats.RawPattern); err != nil {
		return invalid("formats.raw_pattern", "pattern does not compile", err)
	}
	if c.Formats.RawFormat == "" {
		return invalid("formats.raw_format", "raw format is required", nil)
	}
	if len(c.Formats.Containers) == 0 {
		return invalid("formats.containers", "at least one container format is required", nil)
	}

	for _, p := range c.Options.Profiles {
		if p != choice.Lossy && p != choice.Lossless {
			return invalid("options.profiles", "unknown profile "+strconv.Quote(p), nil)
		}
	}
	for _, p := range c.Options.Progressions {
		if !contains(invocation.ProgressionOrders, p) {
			return invalid("options.progressions", "unknown progression order "+strconv.Quote(p), nil)
		}
	}
	for _, cb := range c.Options.Codeblocks {
		if _, _, err := invocation.ParseCodeblock(cb); err != nil {
			return invalid("options.codeblocks", "bad codeblock size", err)
		}
	}
	for _, r := range c.Options.ForceRGB {
		if r != choice.RGBNative && r != choice.RGBForce {
			return invalid("options.force_rgb", "unknown option "+strconv.Quote(r), nil)
		}
	}

	d := c.Defaults
	checks := []struct {
		param   string
		value   string
		options []string
	}{
		{"defaults.format", d.Format, c.Formats.Containers},
		{"defaults.profile", d.Profile, c.Options.Profiles},
		{"defaults.progression", d.Progression, c.Options.Progressions},
		{"defaults.codeblock", d.Codeblock, c.Options.Codeblocks},
		{"defaults.force_rgb", d.ForceRGB, c.Options.ForceRGB},
	}
	for _, chk := range checks {
		// An empty default leaves the group unchecked.
		if chk.value != "" && !contains(chk.options, chk.value) {
			return invalid(chk.param, strconv.Quote(chk.value)+" is not one of the offered options", nil)
		}
	}
	if d.Ratio < 1 || d.Ratio > MaxRatio {
		return invalid("defaults.ratio", fmt.Sprintf("must be between 1 and %d", MaxRatio), nil)
	}
	if d.Resolutions < 1 || d.Resolutions > MaxResolutions {
		return invalid("defaults.resolutions", fmt.Sprintf("must be between 1 and %d", MaxResolutions), nil)
	}
	if d.DecodeResolution < 0 || d.DecodeResolution > MaxDecodeResolution {
		return invalid("defaults.decode_resolution", fmt.Sprintf("must be between 0 and %d", MaxDecodeResolution), nil)
	}

	if !contains(ListThemes(), c.Theme.Name) {
		return invalid("theme.name", "unknown theme "+strconv.Quote(c.Theme.Name), nil)
	}

	return nil
}

func invalid(param, msg string, err error) error {
	return errors.NewConfigError(msg, param, errors.InvalidConfig, err)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// NewMachine creates a mode state machine using the configured raw pattern
func (c *Config) NewMachine() (*mode.Machine, error) {
	return mode.NewMachine(c.Formats.RawPattern)
}

// NewBuilder creates an invocation builder for the configured codecs
func (c *Config) NewBuilder() (*invocation.Builder, error) {
	return invocation.NewBuilder(c.Codec.Dir, c.Codec.Encoder, c.Codec.Decoder, c.Formats.RawFormat)
}

// InitialDir returns the directory file dialogs should open in
func (c *Config) InitialDir() string {
	if c.Dialogs.InitialDir != "" {
		return c.Dialogs.InitialDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// Groups returns fresh choice groups for every radio control, checked with
// the configured defaults.
func (c *Config) Groups() Groups {
	g := Groups{
		Format:      choice.NewGroup(choice.Format, c.Formats.Containers...),
		Profile:     choice.NewGroup(choice.Profile, c.Options.Profiles...),
		Progression: choice.NewGroup(choice.Progression, c.Options.Progressions...),
		Codeblock:   choice.NewGroup(choice.Codeblock, c.Options.Codeblocks...),
		ForceRGB:    choice.NewGroup(choice.ForceRGB, c.Options.ForceRGB...),
	}
	g.Format.Check(c.Defaults.Format)
	g.Profile.Check(c.Defaults.Profile)
	g.Progression.Check(c.Defaults.Progression)
	g.Codeblock.Check(c.Defaults.Codeblock)
	g.ForceRGB.Check(c.Defaults.ForceRGB)
	return g
}

// Groups bundles the radio groups shown by the front ends
type Groups struct {
	Format      *choice.Group
	Profile     *choice.Group
	Progression *choice.Group
	Codeblock   *choice.Group
	ForceRGB    *choice.Group
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary": "213", // Purple
			"dimmed":  "240", // Grey
			"error":   "196", // Red
			"info":    "39",  // Blue
			"border":  "213", // Purple
		},
		"dark": {
			"primary": "105",
			"dimmed":  "238",
			"error":   "160",
			"info":    "33",
			"border":  "105",
		},
		"light": {
			"primary": "135",
			"dimmed":  "250",
			"error":   "210",
			"info":    "117",
			"border":  "135",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light"}
}
