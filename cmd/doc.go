// Package cmd provides the command-line interface for the template builder
// with configuration from flags, environment and a YAML file.
//
// Configuration System:
//
//	Sources are applied with clear precedence:
//	1. Command-line flags (--src, --build, --log-level, etc.) - highest priority
//	2. Environment variables (TEMPLATE_BUILDER_PATHS_SRC_DIR, etc.), including
//	   values loaded from a .env file in the working directory
//	3. Configuration file (.template-builder.yml, --config or
//	   TEMPLATE_BUILDER_CONFIG_FILE) - lowest priority
//
// # Available Commands
//
//   - template-builder: build every template once
//   - template-builder --watch: build, then rebuild templates as they change
//   - template-builder --dist: build, then write one zip archive per template
//   - list: show the source files each template provides
//   - version: print version information
//
// # Exit Codes
//
// The process exits with 1 only when startup fails: invalid configuration,
// missing core assets or a Dart Sass binary that cannot be started. A
// template that fails to build is reported and skipped.
package cmd
