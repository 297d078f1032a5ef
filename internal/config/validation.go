package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nebulabroadcast/html-template-builder/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	msg := fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
	if len(ve.Suggestions) > 0 {
		msg += " (" + strings.Join(ve.Suggestions, "; ") + ")"
	}
	return msg
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	dirs := map[string]string{
		"paths.src_dir":   config.Paths.SrcDir,
		"paths.build_dir": config.Paths.BuildDir,
		"paths.dist_dir":  config.Paths.DistDir,
		"paths.core_dir":  config.Paths.CoreDir,
	}
	for field, value := range dirs {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Value: value, Message: "directory must not be empty"}
		}
	}

	if config.Dist.Workers < 1 {
		return &ValidationError{
			Field:       "dist.workers",
			Value:       config.Dist.Workers,
			Message:     "must be at least 1",
			Suggestions: []string{"use 1 to package templates one at a time"},
		}
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return &ValidationError{
			Field:       "log.level",
			Value:       config.Log.Level,
			Message:     err.Error(),
			Suggestions: []string{"debug", "info", "warn", "error"},
		}
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return &ValidationError{
			Field:       "log.format",
			Value:       config.Log.Format,
			Message:     "unsupported log format",
			Suggestions: []string{"text", "json"},
		}
	}

	return nil
}

// validateSettings rejects directory layouts that would make the watcher
// rebuild its own output.
func validateSettings(s Settings) error {
	for field, dir := range map[string]string{"paths.build_dir": s.BuildDir, "paths.dist_dir": s.DistDir} {
		if within(dir, s.SrcDir) {
			return &ValidationError{
				Field:       field,
				Value:       dir,
				Message:     "must not be inside paths.src_dir",
				Suggestions: []string{"place build and dist directories next to the source directory"},
			}
		}
	}
	return nil
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
