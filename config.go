package render

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Config holds the settings of a rendering application, read from TOML.
//
//	[window]
//	title = "demo"
//	width = 1280
//	height = 720
//	samples = 4
//	swap_interval = 1
//
//	[render]
//	debug = true
//	verbose = false
//	pool_granularity = 16384
//	shader_dir = "shaders"
//	hot_reload = true
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
}

// WindowConfig configures the window and its default framebuffer.
type WindowConfig struct {
	Title        string `toml:"title"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Samples      int    `toml:"samples"`       // Multisample count; 0 disables
	SwapInterval int    `toml:"swap_interval"` // 0 disables vsync
	Resizable    bool   `toml:"resizable"`
	Hidden       bool   `toml:"hidden"` // Offscreen tools render without showing the window
}

// RenderConfig configures the Context.
type RenderConfig struct {
	Debug           bool   `toml:"debug"`   // Validate programs before each draw
	Verbose         bool   `toml:"verbose"` // Debug-level logging
	PoolGranularity int    `toml:"pool_granularity"`
	ShaderDir       string `toml:"shader_dir"`
	HotReload       bool   `toml:"hot_reload"` // Watch ShaderDir for changes
}

// DefaultConfig returns the settings used for keys a config file omits.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:        "render",
			Width:        1280,
			Height:       720,
			SwapInterval: 1,
			Resizable:    true,
		},
		Render: RenderConfig{
			PoolGranularity: DefaultPoolGranularity,
			ShaderDir:       "shaders",
		},
	}
}

// LoadConfig reads a TOML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	warnUndecoded(md)
	return cfg, cfg.Validate()
}

// DecodeConfig reads TOML from r over DefaultConfig.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	warnUndecoded(md)
	return cfg, cfg.Validate()
}

// Encode writes cfg as TOML.
func (cfg Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate reports the first setting that is out of range.
func (cfg Config) Validate() error {
	switch {
	case cfg.Window.Width <= 0 || cfg.Window.Height <= 0:
		return fmt.Errorf("config: window size %dx%d must be positive", cfg.Window.Width, cfg.Window.Height)
	case cfg.Window.Samples < 0:
		return fmt.Errorf("config: samples %d must not be negative", cfg.Window.Samples)
	case cfg.Window.SwapInterval < 0:
		return fmt.Errorf("config: swap interval %d must not be negative", cfg.Window.SwapInterval)
	case cfg.Render.PoolGranularity < 0:
		return fmt.Errorf("config: pool granularity %d must not be negative", cfg.Render.PoolGranularity)
	}
	return nil
}

func warnUndecoded(md toml.MetaData) {
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "key", key.String())
	}
}
