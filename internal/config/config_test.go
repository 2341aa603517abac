package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"jp2mi/internal/config"
	"jp2mi/internal/errors"
	"jp2mi/internal/mode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
codec:
  encoder: my_encoder
formats:
  raw_pattern: "*.{bmp,BMP}"
  containers: [jp2, j2k]
defaults:
  format: j2k
  profile: lossless
  ratio: 20
  decode_resolution: 2
log:
  debug: true
theme:
  name: dark
`
	invalidSyntaxYAML = `
codec:
  encoder: "unterminated
defaults: [
`
	invalidPatternYAML = `
formats:
  raw_pattern: "[bmp"
`
	invalidDefaultYAML = `
defaults:
  progression: XYZW
`
	invalidCodeblockYAML = `
options:
  codeblocks: ["64x64"]
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, "my_encoder", cfg.Codec.Encoder)
		assert.Equal(t, "JPEG2000_MI_Decoding", cfg.Codec.Decoder, "unset fields keep defaults")
		assert.Equal(t, "*.{bmp,BMP}", cfg.Formats.RawPattern)
		assert.Equal(t, []string{"jp2", "j2k"}, cfg.Formats.Containers)
		assert.Equal(t, "j2k", cfg.Defaults.Format)
		assert.Equal(t, "lossless", cfg.Defaults.Profile)
		assert.Equal(t, "LRCP", cfg.Defaults.Progression)
		assert.Equal(t, 20, cfg.Defaults.Ratio)
		assert.Equal(t, 6, cfg.Defaults.Resolutions)
		assert.Equal(t, 2, cfg.Defaults.DecodeResolution)
		assert.True(t, cfg.Log.Debug)
		assert.Equal(t, "dark", cfg.Theme.Name)
	})

	t.Run("MissingFileReturnsDefaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.New(), cfg)
	})

	t.Run("ExplicitFileMustExist", func(t *testing.T) {
		_, err := config.LoadExistingConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsConfigNotFound(err), err.Error())

		cfg, err := config.LoadExistingConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)
		assert.Equal(t, "my_encoder", cfg.Codec.Encoder)
	})

	t.Run("InvalidSyntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	for name, content := range map[string]string{
		"InvalidPattern":   invalidPatternYAML,
		"InvalidDefault":   invalidDefaultYAML,
		"InvalidCodeblock": invalidCodeblockYAML,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfigFile(createTestYAML(t, content))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfig(err), err.Error())
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, mode.DefaultRawPattern, cfg.Formats.RawPattern)
	assert.Equal(t, "bmp", cfg.Formats.RawFormat)
	assert.Equal(t, []string{"64*64", "32*32", "16*16"}, cfg.Options.Codeblocks)
	assert.Equal(t, []string{"LRCP", "RLCP", "RPCL", "PCRL", "CPRL"}, cfg.Options.Progressions)
	assert.Equal(t, 10, cfg.Defaults.Ratio)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		param  string
	}{
		{"empty encoder", func(c *config.Config) { c.Codec.Encoder = "" }, "codec.encoder"},
		{"missing codec dir", func(c *config.Config) { c.Codec.Dir = "/does/not/exist/jp2mi" }, "codec.dir"},
		{"no containers", func(c *config.Config) { c.Formats.Containers = nil }, "formats.containers"},
		{"unknown profile", func(c *config.Config) { c.Options.Profiles = []string{"lossy", "fancy"} }, "options.profiles"},
		{"zero ratio", func(c *config.Config) { c.Defaults.Ratio = 0 }, "defaults.ratio"},
		{"zero resolutions", func(c *config.Config) { c.Defaults.Resolutions = 0 }, "defaults.resolutions"},
		{"negative decode", func(c *config.Config) { c.Defaults.DecodeResolution = -1 }, "defaults.decode_resolution"},
		{"format not offered", func(c *config.Config) { c.Defaults.Format = "png" }, "defaults.format"},
		{"unknown theme", func(c *config.Config) { c.Theme.Name = "neon" }, "theme.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *errors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.param, cfgErr.Param())
		})
	}

	t.Run("empty default leaves group unchecked", func(t *testing.T) {
		cfg := config.New()
		cfg.Defaults.Profile = ""
		require.NoError(t, cfg.Validate())
		assert.Empty(t, cfg.Groups().Profile.Selected)
	})

	t.Run("existing codec dir", func(t *testing.T) {
		cfg := config.New()
		cfg.Codec.Dir = t.TempDir()
		assert.NoError(t, cfg.Validate())
	})

	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.New()
	cfg.Defaults.Codeblock = "32*32"
	cfg.Defaults.ForceRGB = "force-rgb"
	cfg.Dialogs.InitialDir = "/srv/images"
	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGroupsFollowDefaults(t *testing.T) {
	g := config.New().Groups()
	assert.Equal(t, "jp2", g.Format.Selected)
	assert.Equal(t, "lossy", g.Profile.Selected)
	assert.Equal(t, "LRCP", g.Progression.Selected)
	assert.Equal(t, "64*64", g.Codeblock.Selected)
	assert.Equal(t, "native", g.ForceRGB.Selected)
	assert.Equal(t, "codeblock", g.Codeblock.Name)
}

func TestFactories(t *testing.T) {
	cfg := config.New()
	cfg.Codec.Dir = "/opt/codecs"

	b, err := cfg.NewBuilder()
	require.NoError(t, err)
	assert.Contains(t, b.Encoder, filepath.Join("/opt/codecs", "JPEG2000_MI_Encoding"))

	m, err := cfg.NewMachine()
	require.NoError(t, err)
	assert.True(t, m.IsRawImage("a.bmp"))

	cfg.Dialogs.InitialDir = "/srv"
	assert.Equal(t, "/srv", cfg.InitialDir())
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"default", "dark", "light"}, config.ListThemes())
	assert.Equal(t, config.GetTheme("default"), config.GetTheme("missing"))
	assert.Equal(t, "105", config.GetTheme("dark")["primary"])
}
