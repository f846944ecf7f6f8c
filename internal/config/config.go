// Package config loads gitpilot.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/spf13/viper"
)

const FileName = "gitpilot"

type Config struct {
	Repo  RepoConfig  `mapstructure:"repo"`
	UI    UIConfig    `mapstructure:"ui"`
	Watch WatchConfig `mapstructure:"watch"`
	Graph GraphConfig `mapstructure:"graph"`
	Log   LogConfig   `mapstructure:"log"`
}

type RepoConfig struct {
	PerBranch      int  `mapstructure:"per_branch"`
	IncludeRemotes bool `mapstructure:"include_remotes"`
	ShowWIP        bool `mapstructure:"show_wip"`
}

type UIConfig struct {
	// Theme is auto, light or dark.
	Theme           string `mapstructure:"theme"`
	SyntaxHighlight bool   `mapstructure:"syntax_highlight"`
}

type WatchConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Debounce     time.Duration `mapstructure:"debounce"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type GraphConfig struct {
	MaxLanes     int           `mapstructure:"max_lanes"`
	ColorSeed    uint64        `mapstructure:"color_seed"`
	BranchColors []BranchColor `mapstructure:"branch_colors"`
}

// BranchColor pins a branch to a color. It is a list entry rather than a map
// key because viper lower-cases keys and branch names are case sensitive.
type BranchColor struct {
	Branch string `mapstructure:"branch"`
	Color  string `mapstructure:"color"`
}

type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

var ErrInvalidTheme = errors.New("invalid theme")

// Load reads gitpilot.yaml from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads configuration from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return decode(v)
		}
		return nil, err
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

// LoadWithFile uses path when set, and the user config directory otherwise.
func LoadWithFile(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	dir, err := Dir()
	if err != nil {
		return Default(), nil
	}
	return Load(dir)
}

func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("repo.per_branch", 50)
	v.SetDefault("repo.include_remotes", true)
	v.SetDefault("repo.show_wip", true)

	v.SetDefault("ui.theme", "auto")
	v.SetDefault("ui.syntax_highlight", true)

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", 350*time.Millisecond)
	v.SetDefault("watch.poll_interval", 30*time.Second)

	v.SetDefault("graph.max_lanes", 0)
	v.SetDefault("graph.color_seed", 0)
	v.SetDefault("graph.branch_colors", []BranchColor{})

	v.SetDefault("log.verbose", false)
}

func (c *Config) Validate() error {
	switch c.UI.Theme {
	case "auto", "light", "dark":
	default:
		return fmt.Errorf("ui.theme %q: %w", c.UI.Theme, ErrInvalidTheme)
	}
	if c.Repo.PerBranch <= 0 {
		return fmt.Errorf("repo.per_branch must be positive, got %d", c.Repo.PerBranch)
	}
	if c.Graph.MaxLanes < 0 {
		return fmt.Errorf("graph.max_lanes must not be negative, got %d", c.Graph.MaxLanes)
	}
	_, err := c.Graph.Overrides()
	return err
}

// Overrides parses the configured branch colors.
func (g GraphConfig) Overrides() (map[string]graph.RGB, error) {
	out := make(map[string]graph.RGB, len(g.BranchColors))
	for _, bc := range g.BranchColors {
		rgb, err := graph.ParseHex(bc.Color)
		if err != nil {
			return nil, fmt.Errorf("graph.branch_colors[%s]: %w", bc.Branch, err)
		}
		out[bc.Branch] = rgb
	}
	return out, nil
}

// Palette builds the session branch palette from the graph settings.
func (g GraphConfig) Palette() (*graph.BranchPalette, error) {
	overrides, err := g.Overrides()
	if err != nil {
		return nil, err
	}
	return graph.NewBranchPalette(g.ColorSeed, overrides), nil
}

var userConfigDir = os.UserConfigDir

// Dir is the gitpilot directory below the user config directory.
func Dir() (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "gitpilot"), nil
}
