// Package config provides configuration types, defaults and loading for
// fuzzyhl.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fuzzyhl/internal/highlighter"
	"fuzzyhl/internal/lang"
	"fuzzyhl/internal/log"
	"fuzzyhl/internal/render"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. FUZZYHL_THEME.
const EnvPrefix = "FUZZYHL"

// Config holds all configuration options for fuzzyhl.
type Config struct {
	Format          string `mapstructure:"format" yaml:"format" toml:"format"`
	Output          string `mapstructure:"output" yaml:"output" toml:"output"`
	Theme           string `mapstructure:"theme" yaml:"theme" toml:"theme"`
	Color           string `mapstructure:"color" yaml:"color" toml:"color"` // auto, always or never
	Engine          string `mapstructure:"engine" yaml:"engine" toml:"engine"`
	Lang            string `mapstructure:"lang" yaml:"lang" toml:"lang"` // auto, c or cpp
	IdentifiersOnly bool   `mapstructure:"identifiers_only" yaml:"identifiers_only" toml:"identifiers_only"`
	DumpAST         bool   `mapstructure:"dump_ast" yaml:"dump_ast" toml:"dump_ast"`
	Standalone      bool   `mapstructure:"standalone" yaml:"standalone" toml:"standalone"`
	Pager           bool   `mapstructure:"pager" yaml:"pager" toml:"pager"`
	Workers         int    `mapstructure:"workers" yaml:"workers" toml:"workers"` // 0 means one per CPU
	CacheSize       int    `mapstructure:"cache_size" yaml:"cache_size" toml:"cache_size"`
	DebugLog        string `mapstructure:"debug_log" yaml:"debug_log" toml:"debug_log"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Format:    render.TerminalColor.String(),
		Theme:     render.DefaultTheme,
		Color:     render.ModeAuto.String(),
		Engine:    string(highlighter.EngineFuzzy),
		Lang:      "auto",
		CacheSize: 256,
	}
}

// Resolved is a validated Config with every enumerated option parsed.
type Resolved struct {
	Format  render.Format
	Color   render.ColorMode
	Engine  highlighter.Engine
	Dialect lang.ID
	Palette render.ThemePalette
}

// Resolve parses the enumerated options, failing on the first bad one.
func (c Config) Resolve() (Resolved, error) {
	var r Resolved
	var err error
	if r.Format, err = render.ParseFormat(c.Format); err != nil {
		return r, fmt.Errorf("format: %w", err)
	}
	if r.Color, err = render.ParseColorMode(c.Color); err != nil {
		return r, fmt.Errorf("color: %w", err)
	}
	if r.Engine, err = highlighter.ParseEngine(c.Engine); err != nil {
		return r, fmt.Errorf("engine: %w", err)
	}
	if r.Dialect, err = lang.Parse(c.Lang); err != nil {
		return r, fmt.Errorf("lang: %w", err)
	}
	if r.Palette, err = render.LoadThemePalette(c.Theme); err != nil {
		return r, fmt.Errorf("theme: %w", err)
	}
	return r, nil
}

// Validate checks every option.
func (c Config) Validate() error {
	if _, err := c.Resolve(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers: must be >= 0, got %d", c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size: must be >= 0, got %d", c.CacheSize)
	}
	return nil
}

// SetDefaults registers every key with v so env overrides and Unmarshal
// see them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("format", d.Format)
	v.SetDefault("output", d.Output)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("color", d.Color)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("lang", d.Lang)
	v.SetDefault("identifiers_only", d.IdentifiersOnly)
	v.SetDefault("dump_ast", d.DumpAST)
	v.SetDefault("standalone", d.Standalone)
	v.SetDefault("pager", d.Pager)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("debug_log", d.DebugLog)
}

// Load merges defaults, the config file and FUZZYHL_* variables into v and
// decodes the result. An explicit path must exist; otherwise the lookup is
// ./.fuzzyhl.yaml, then ~/.config/fuzzyhl/config.yaml, and a missing file
// is fine.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(".fuzzyhl.yaml"); err == nil {
		v.SetConfigFile(".fuzzyhl.yaml")
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fuzzyhl"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Debug(log.CatConfig, "loaded config", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Marshal encodes c as "yaml" or "toml".
func Marshal(c Config, as string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(as)) {
	case "", "yaml", "yml":
		out, err := yaml.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return out, nil
	case "toml":
		out, err := toml.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid config encoding %q (use yaml or toml)", as)
	}
}
