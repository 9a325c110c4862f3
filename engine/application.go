package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/unify/engine/core"
)

const (
	OverlayTerminal = "terminal"
	OverlayNone     = "none"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name" yaml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x" yaml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y" yaml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width" yaml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height" yaml:"start_height"`
	// debug, info, warn, error or fatal.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Registered host name: headless, glfw or ebiten.
	Host      string `toml:"host" yaml:"host"`
	TargetFPS int    `toml:"target_fps" yaml:"target_fps"`
	// Directory the assets are served from, watched when WatchAssets is set.
	AssetDir    string `toml:"asset_dir" yaml:"asset_dir"`
	WatchAssets bool   `toml:"watch_assets" yaml:"watch_assets"`
	// Loader workers and their queue size.
	Workers   int `toml:"workers" yaml:"workers"`
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
	// Attach the frame loop once the first batch of assets has loaded.
	AutoStart bool `toml:"auto_start" yaml:"auto_start"`
	// Log every frame call registration.
	Verbose bool `toml:"verbose" yaml:"verbose"`
	// Load progress presentation: terminal or none.
	Overlay string `toml:"overlay" yaml:"overlay"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "Unify",
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		LogLevel:    "info",
		Host:        "headless",
		TargetFPS:   60,
		AssetDir:    "assets",
		Workers:     4,
		QueueSize:   64,
		AutoStart:   true,
		Overlay:     OverlayTerminal,
	}
}

// LoadConfig reads a .toml, .yaml or .yml file on top of the defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultApplicationConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot start with.
func (c *ApplicationConfig) Validate() error {
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Workers < 1 {
		return core.ErrNoWorkers
	}
	if c.QueueSize < 0 {
		return core.ErrNegativeChannelSize
	}
	switch c.Overlay {
	case "", OverlayTerminal, OverlayNone:
	default:
		return fmt.Errorf("unknown overlay %q", c.Overlay)
	}
	return nil
}
