// Package minify wraps the three external asset processors used by the build:
// a Sass compiler for stylesheets, a JavaScript minifier and an HTML minifier.
//
// The adapters give each processor a fixed failure contract. Stylesheet
// failures propagate and abort the build. Script failures never propagate and
// collapse to "no script". Markup minification has no recoverable failure.
package minify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
)

// Syntax selects the stylesheet flavour.
type Syntax int

const (
	// SyntaxSCSS is the block (brace) syntax.
	SyntaxSCSS Syntax = iota
	// SyntaxSass is the indented syntax.
	SyntaxSass
)

// String returns the string representation of the Syntax
func (s Syntax) String() string {
	if s == SyntaxSass {
		return "sass"
	}
	return "scss"
}

// SyntaxFor picks the flavour from a file extension.
func SyntaxFor(path string) Syntax {
	if filepath.Ext(path) == ".sass" {
		return SyntaxSass
	}
	return SyntaxSCSS
}

// StylesheetCompiler turns Sass source into compressed CSS.
type StylesheetCompiler interface {
	Compile(ctx context.Context, source string, syntax Syntax) (string, error)
}

// ScriptMinifier shrinks JavaScript source.
type ScriptMinifier interface {
	Minify(source string) (string, error)
}

// MarkupMinifier compacts an HTML document.
type MarkupMinifier interface {
	Minify(html string) (string, error)
}

// CompileStylesheet reads the stylesheet at path and compiles it. Any failure
// is returned as a stylesheet error.
func CompileStylesheet(ctx context.Context, compiler StylesheetCompiler, path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewStylesheetError("SASS_READ", "cannot read stylesheet", err).WithPath(path)
	}

	css, err := compiler.Compile(ctx, string(source), SyntaxFor(path))
	if err != nil {
		return "", errors.NewStylesheetError("SASS_COMPILE", "stylesheet failed to compile", err).WithPath(path)
	}

	return css, nil
}

// ScriptResult is the outcome of MinifyScript. A failed minification is a
// normal result with OK unset, not an error.
type ScriptResult struct {
	Code string
	OK   bool
	// Reason records why the script was dropped, for debug logging only.
	Reason error
}

// Text returns the minified script, or "" when minification failed.
func (r ScriptResult) Text() string {
	if !r.OK {
		return ""
	}
	return r.Code
}

// MinifyScript reads and minifies the script at path.
func MinifyScript(minifier ScriptMinifier, path string) ScriptResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return ScriptResult{Reason: err}
	}

	code, err := minifier.Minify(string(source))
	if err != nil {
		return ScriptResult{Reason: err}
	}

	return ScriptResult{Code: code, OK: true}
}

// MinifyMarkup compacts html. The configured minifier accepts any input, so an
// error here is a programming defect.
func MinifyMarkup(minifier MarkupMinifier, html string) string {
	out, err := minifier.Minify(html)
	if err != nil {
		panic(fmt.Sprintf("minify: markup minifier failed: %v", err))
	}
	return out
}
