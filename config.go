package ember

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config carries engine-level settings. Zero values are filled in from
// DefaultConfig, so a partial TOML file is enough.
type Config struct {
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	WindowTitle  string `toml:"window_title"`
	VSync        bool   `toml:"vsync"`

	ClearColor Color `toml:"clear_color"`

	// Initial element capacities of the per-frame binding set. The index
	// buffer is sized at 3/2 of the vertex capacity.
	VertexCapacity  int `toml:"vertex_capacity"`
	UniformCapacity int `toml:"uniform_capacity"`

	// FrameIntervalMs is the minimum time between ticks while running.
	// 0 leaves pacing to the presentation surface (vsync).
	FrameIntervalMs int `toml:"frame_interval_ms"`
	// PausedFrameIntervalMs throttles redraws while paused.
	PausedFrameIntervalMs int `toml:"paused_frame_interval_ms"`

	Debug bool `toml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		WindowWidth:           1280,
		WindowHeight:          720,
		WindowTitle:           "Ember",
		VSync:                 true,
		ClearColor:            ColorSlateBlue,
		VertexCapacity:        16384,
		UniformCapacity:       256,
		FrameIntervalMs:       0,
		PausedFrameIntervalMs: 250,
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file is an error;
// missing keys fall back to their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.WindowWidth <= 0 {
		c.WindowWidth = d.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = d.WindowHeight
	}
	if c.WindowTitle == "" {
		c.WindowTitle = d.WindowTitle
	}
	if c.VertexCapacity <= 0 {
		c.VertexCapacity = d.VertexCapacity
	}
	if c.UniformCapacity <= 0 {
		c.UniformCapacity = d.UniformCapacity
	}
	if c.PausedFrameIntervalMs <= 0 {
		c.PausedFrameIntervalMs = d.PausedFrameIntervalMs
	}
	return c
}

func (c Config) frameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

func (c Config) pausedFrameInterval() time.Duration {
	return time.Duration(c.PausedFrameIntervalMs) * time.Millisecond
}
