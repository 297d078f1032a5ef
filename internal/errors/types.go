// Package errors defines the error taxonomy of the template build pipeline.
//
// Every per-template failure is reported as a *BuildError carrying the kind of
// failure, the template it belongs to and the underlying cause. Callers check
// the kind with the Is* predicates or KindOf rather than matching messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents different categories of build errors.
type ErrorKind string

const (
	KindStylesheet ErrorKind = "stylesheet"
	KindManifest   ErrorKind = "manifest"
	KindFileSystem ErrorKind = "filesystem"
	KindPackaging  ErrorKind = "packaging"
	KindConfig     ErrorKind = "config"
	KindInternal   ErrorKind = "internal"
)

// BuildError is a structured error with template context.
type BuildError struct {
	Kind     ErrorKind
	Code     string
	Message  string
	Template string
	Path     string
	Cause    error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *BuildError of the same kind and code.
func (e *BuildError) Is(target error) bool {
	var t *BuildError
	if errors.As(target, &t) {
		return e.Kind == t.Kind && e.Code == t.Code
	}

	return false
}

// WithTemplate sets the template the error belongs to.
func (e *BuildError) WithTemplate(name string) *BuildError {
	e.Template = name

	return e
}

// WithPath sets the file the error refers to.
func (e *BuildError) WithPath(path string) *BuildError {
	e.Path = path

	return e
}

// NewStylesheetError creates an error for a stylesheet that failed to compile.
func NewStylesheetError(code, message string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindStylesheet,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewManifestParseError creates an error for a manifest that exists but is malformed.
func NewManifestParseError(code, message string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindManifest,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewFileSystemError creates an I/O error.
func NewFileSystemError(code, message string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindFileSystem,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewPackagingError creates an archive error.
func NewPackagingError(code, message string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindPackaging,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *BuildError {
	return &BuildError{
		Kind:    KindInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the kind of the first *BuildError in err's chain, or
// KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind
	}

	return KindInternal
}

func isKind(err error, kind ErrorKind) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind == kind
	}

	return false
}

// IsStylesheetError checks if an error is a stylesheet compile failure.
func IsStylesheetError(err error) bool {
	return isKind(err, KindStylesheet)
}

// IsManifestParseError checks if an error is a malformed manifest.
func IsManifestParseError(err error) bool {
	return isKind(err, KindManifest)
}

// IsFileSystemError checks if an error is file-system related.
func IsFileSystemError(err error) bool {
	return isKind(err, KindFileSystem)
}

// IsPackagingError checks if an error is archive related.
func IsPackagingError(err error) bool {
	return isKind(err, KindPackaging)
}

// TemplateOf returns the template name attached to err, if any.
func TemplateOf(err error) string {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Template
	}

	return ""
}
