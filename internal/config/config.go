// Package config provides configuration management for the template builder
// using Viper for loading from files, environment variables and command-line
// flags.
//
// The loaded Config is a plain value. Resolve turns it into Settings, the
// immutable set of absolute directories every other package works with.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
)

// Config mirrors the configuration file layout.
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Sass    SassConfig    `mapstructure:"sass"`
	Build   BuildConfig   `mapstructure:"build"`
	Dist    DistConfig    `mapstructure:"dist"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

type PathsConfig struct {
	SrcDir   string `mapstructure:"src_dir"`
	BuildDir string `mapstructure:"build_dir"`
	DistDir  string `mapstructure:"dist_dir"`
	CoreDir  string `mapstructure:"core_dir"`
}

type SassConfig struct {
	// Binary is the Dart Sass executable. Empty means "sass" on PATH.
	Binary string `mapstructure:"binary"`
}

type BuildConfig struct {
	Index bool `mapstructure:"index"`
}

type DistConfig struct {
	Workers int `mapstructure:"workers"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default values.
const (
	DefaultSrcDir      = "src"
	DefaultBuildDir    = "build"
	DefaultDistDir     = "dist"
	DefaultCoreDir     = "core"
	DefaultDistWorkers = 4
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("paths.src_dir", DefaultSrcDir)
	v.SetDefault("paths.build_dir", DefaultBuildDir)
	v.SetDefault("paths.dist_dir", DefaultDistDir)
	v.SetDefault("paths.core_dir", DefaultCoreDir)
	v.SetDefault("sass.binary", "")
	v.SetDefault("build.index", true)
	v.SetDefault("dist.workers", DefaultDistWorkers)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applying defaults and validation.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError("CONFIG_DECODE", "cannot decode configuration", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.NewConfigError("CONFIG_INVALID", "invalid configuration", err)
	}

	return &config, nil
}

// Settings is the resolved, process-wide set of directories. It is built once
// at startup and never mutated afterwards.
type Settings struct {
	SrcDir   string
	BuildDir string
	DistDir  string
	CoreDir  string
}

// Resolve converts the configured directories into absolute paths.
func Resolve(cfg *Config) (Settings, error) {
	var s Settings
	var err error

	if s.SrcDir, err = ResolvePath(cfg.Paths.SrcDir); err != nil {
		return Settings{}, fmt.Errorf("paths.src_dir: %w", err)
	}
	if s.BuildDir, err = ResolvePath(cfg.Paths.BuildDir); err != nil {
		return Settings{}, fmt.Errorf("paths.build_dir: %w", err)
	}
	if s.DistDir, err = ResolvePath(cfg.Paths.DistDir); err != nil {
		return Settings{}, fmt.Errorf("paths.dist_dir: %w", err)
	}
	if s.CoreDir, err = ResolvePath(cfg.Paths.CoreDir); err != nil {
		return Settings{}, fmt.Errorf("paths.core_dir: %w", err)
	}

	if err := validateSettings(s); err != nil {
		return Settings{}, errors.NewConfigError("CONFIG_LAYOUT", "invalid directory layout", err)
	}

	return s, nil
}

// ResolvePath expands a leading ~, makes the path absolute and strips any
// trailing separator.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is empty")
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	// filepath.Abs cleans the path, which already drops trailing separators
	// everywhere except at the root.
	if len(abs) > 1 {
		abs = strings.TrimRight(abs, string(filepath.Separator))
	}

	return abs, nil
}
