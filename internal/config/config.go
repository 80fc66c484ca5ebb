// Package config loads tracker and demo settings from a YAML file and
// TRACK_* environment variables.
package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TRACK_FRAME_RATE.
const EnvPrefix = "TRACK"

// ErrInvalid is the cause of every validation failure.
const ErrInvalid = errors.ConstError("invalid config")

// Config is the full configuration.
type Config struct {
	FrameRate int     `mapstructure:"frame_rate"`
	Logging   Logging `mapstructure:"logging"`
	Demo      Demo    `mapstructure:"demo"`
}

// Logging configures the zap logger and its optional rotated file.
type Logging struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Demo configures the trackdemo scene.
type Demo struct {
	Boxes  int `mapstructure:"boxes"`
	Frames int `mapstructure:"frames"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("frame_rate", 60)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", false)
	v.SetDefault("demo.boxes", 3)
	v.SetDefault("demo.frames", 120)
	v.SetDefault("demo.width", 80)
	v.SetDefault("demo.height", 24)
}

// NewViper returns a viper instance with defaults and environment overrides
// wired up. If path is non-empty the file is read; otherwise ./track.yaml is
// used when present.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("track")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Annotate(err, "reading config file")
		}
	}
	return v, nil
}

// Load reads and validates the configuration.
func Load(path string) (Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Annotate(err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return errors.Annotatef(ErrInvalid, "frame_rate %d must be between 1 and 240", c.FrameRate)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Annotatef(ErrInvalid, "logging.level %q", c.Logging.Level)
	}
	if c.Demo.Boxes < 1 {
		return errors.Annotatef(ErrInvalid, "demo.boxes %d must be at least 1", c.Demo.Boxes)
	}
	if c.Demo.Frames < 1 {
		return errors.Annotatef(ErrInvalid, "demo.frames %d must be at least 1", c.Demo.Frames)
	}
	if c.Demo.Width < 1 || c.Demo.Height < 1 {
		return errors.Annotatef(ErrInvalid, "demo viewport %dx%d must be positive", c.Demo.Width, c.Demo.Height)
	}
	return nil
}
