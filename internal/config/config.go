// Package config loads the scape-bot runtime configuration.
//
// Configuration sources, lowest to highest precedence:
//  1. Defaults registered by SetDefaults
//  2. scape-bot.yaml in the working directory or $HOME/.config/scape-bot
//  3. SCAPEBOT_* environment variables (dots become underscores)
//  4. Command-line flags bound by the CLI
//
// The resulting Config is passed explicitly into every session and backend.
// There is no package-level configuration state.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Timing  TimingConfig  `mapstructure:"timing" yaml:"timing"`
	Breaks  BreakConfig   `mapstructure:"breaks" yaml:"breaks"`
	Vision  VisionConfig  `mapstructure:"vision" yaml:"vision"`
	OCR     OCRConfig     `mapstructure:"ocr" yaml:"ocr"`
	Status  StatusConfig  `mapstructure:"status" yaml:"status"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Options OptionsConfig `mapstructure:"options" yaml:"options"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // console or json
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
}

// Client backends.
const (
	BackendDesktop = "desktop"
	BackendBrowser = "browser"
)

// ClientConfig selects and configures the game client backend.
type ClientConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	WindowTitle string `mapstructure:"window_title" yaml:"window_title"`
	// Profile selects game-specific setup (runelite or near-reality).
	Profile string `mapstructure:"profile" yaml:"profile"`
	URL     string `mapstructure:"url" yaml:"url"`
	Width   int    `mapstructure:"width" yaml:"width"`
	Height  int    `mapstructure:"height" yaml:"height"`
	// Headless only applies to the browser backend.
	Headless bool `mapstructure:"headless" yaml:"headless"`
}

// TimingConfig controls polling and input pacing.
type TimingConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	ActionsPerSecond float64       `mapstructure:"actions_per_second" yaml:"actions_per_second"`
	ClickDelayMin    time.Duration `mapstructure:"click_delay_min" yaml:"click_delay_min"`
	ClickDelayMax    time.Duration `mapstructure:"click_delay_max" yaml:"click_delay_max"`
	KeyHoldMin       time.Duration `mapstructure:"key_hold_min" yaml:"key_hold_min"`
	KeyHoldMax       time.Duration `mapstructure:"key_hold_max" yaml:"key_hold_max"`
	MouseSpeed       string        `mapstructure:"mouse_speed" yaml:"mouse_speed"` // slow, medium, fast
}

// BreakConfig controls optional random breaks between loop iterations.
type BreakConfig struct {
	Max    time.Duration `mapstructure:"max" yaml:"max"`
	Chance float64       `mapstructure:"chance" yaml:"chance"`
}

// Vision backends.
const (
	VisionPixel  = "pixel"
	VisionOpenCV = "opencv"
)

// VisionConfig configures image search.
type VisionConfig struct {
	Backend        string  `mapstructure:"backend" yaml:"backend"`
	TemplateDir    string  `mapstructure:"template_dir" yaml:"template_dir"`
	ColorTolerance int     `mapstructure:"color_tolerance" yaml:"color_tolerance"`
	PixelTolerance float64 `mapstructure:"pixel_tolerance" yaml:"pixel_tolerance"`
	MinMarkArea    int     `mapstructure:"min_mark_area" yaml:"min_mark_area"`
	DebugDir       string  `mapstructure:"debug_dir" yaml:"debug_dir"`
}

// OCRConfig configures text recognition.
type OCRConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Language string `mapstructure:"language" yaml:"language"`
}

// StatusConfig configures the game-state feed server.
type StatusConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Listen  string        `mapstructure:"listen" yaml:"listen"`
	MaxAge  time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// StoreConfig configures run history persistence.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// OptionsConfig configures where accepted bot options are saved.
type OptionsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "scape-bot")
	v.SetDefault("logger.log_file", "Debug.log")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.add_source", false)

	// -- Client --
	v.SetDefault("client.backend", BackendDesktop)
	v.SetDefault("client.window_title", "RuneLite")
	v.SetDefault("client.profile", "runelite")
	v.SetDefault("client.url", "")
	v.SetDefault("client.width", 765)
	v.SetDefault("client.height", 503)
	v.SetDefault("client.headless", false)

	// -- Timing --
	v.SetDefault("timing.poll_interval", "500ms")
	v.SetDefault("timing.actions_per_second", 12.0)
	v.SetDefault("timing.click_delay_min", "100ms")
	v.SetDefault("timing.click_delay_max", "300ms")
	v.SetDefault("timing.key_hold_min", "60ms")
	v.SetDefault("timing.key_hold_max", "140ms")
	v.SetDefault("timing.mouse_speed", "medium")

	// -- Breaks --
	v.SetDefault("breaks.max", "60s")
	v.SetDefault("breaks.chance", 0.01)

	// -- Vision --
	v.SetDefault("vision.backend", VisionPixel)
	v.SetDefault("vision.template_dir", "images/bot")
	v.SetDefault("vision.color_tolerance", 15)
	v.SetDefault("vision.pixel_tolerance", 0.05)
	v.SetDefault("vision.min_mark_area", 60)
	v.SetDefault("vision.debug_dir", "")

	// -- OCR --
	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.language", "eng")

	// -- Status feed --
	v.SetDefault("status.enabled", true)
	v.SetDefault("status.listen", "127.0.0.1:56799")
	v.SetDefault("status.max_age", "5s")

	// -- Persistence --
	v.SetDefault("store.path", "scape-bot.db")
	v.SetDefault("options.file", "options.toml")
}

// Default returns a Config populated only from defaults.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults always validate; a failure here is a programming error.
		panic(err)
	}
	return cfg
}

// NewConfigFromViper unmarshals and validates a Config from v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.Client.Backend {
	case BackendDesktop, BackendBrowser:
	default:
		return fmt.Errorf("client.backend must be %q or %q, got %q", BackendDesktop, BackendBrowser, c.Client.Backend)
	}
	if c.Client.Backend == BackendDesktop && c.Client.WindowTitle == "" {
		return fmt.Errorf("client.window_title is required for the desktop backend")
	}
	if c.Client.Backend == BackendBrowser && c.Client.URL == "" {
		return fmt.Errorf("client.url is required for the browser backend")
	}
	if c.Client.Width <= 0 || c.Client.Height <= 0 {
		return fmt.Errorf("client.width and client.height must be positive")
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("timing configuration invalid: %w", err)
	}
	if c.Breaks.Chance < 0 || c.Breaks.Chance > 1 {
		return fmt.Errorf("breaks.chance must be between 0.0 and 1.0")
	}
	switch c.Vision.Backend {
	case VisionPixel, VisionOpenCV:
	default:
		return fmt.Errorf("vision.backend must be %q or %q, got %q", VisionPixel, VisionOpenCV, c.Vision.Backend)
	}
	if c.Vision.PixelTolerance < 0 || c.Vision.PixelTolerance > 1 {
		return fmt.Errorf("vision.pixel_tolerance must be between 0.0 and 1.0")
	}
	return nil
}

// Validate checks the timing configuration.
func (t *TimingConfig) Validate() error {
	if t.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if t.ActionsPerSecond <= 0 {
		return fmt.Errorf("actions_per_second must be positive")
	}
	if t.ClickDelayMin < 0 || t.ClickDelayMax < t.ClickDelayMin {
		return fmt.Errorf("click delay range [%s, %s] is invalid", t.ClickDelayMin, t.ClickDelayMax)
	}
	if t.KeyHoldMin < 0 || t.KeyHoldMax < t.KeyHoldMin {
		return fmt.Errorf("key hold range [%s, %s] is invalid", t.KeyHoldMin, t.KeyHoldMax)
	}
	switch t.MouseSpeed {
	case "slow", "medium", "fast":
	default:
		return fmt.Errorf("mouse_speed must be slow, medium or fast")
	}
	return nil
}
