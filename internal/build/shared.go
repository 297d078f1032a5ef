package build

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/minify"
)

// Core asset file names inside the core directory.
const (
	CoreLayoutFile = "core.html"
	CoreSassFile   = "core.sass"
	CoreSCSSFile   = "core.scss"
	CoreScriptFile = "core.js"
)

// Render context keys.
const (
	KeyCoreCSS  = "core_css"
	KeyCoreJS   = "core_js"
	KeyTplCSS   = "tpl_css"
	KeyTplJS    = "tpl_js"
	KeyBody     = "body"
	KeyManifest = "manifest"
	KeyParamMap = "param_map"
)

// Processors bundles the external asset processors a build needs.
type Processors struct {
	Stylesheet minify.StylesheetCompiler
	Script     minify.ScriptMinifier
	Markup     minify.MarkupMinifier
}

// SharedContext holds the values common to every template build: the
// compiled core stylesheet, the minified core script and the parsed layout.
// It is immutable after construction and safe for concurrent use.
type SharedContext struct {
	values map[string]any
	layout *template.Template
}

// LoadSharedContext builds the shared context from the core directory. Any
// missing or invalid core asset is returned as an error; nothing can be built
// without them.
func LoadSharedContext(ctx context.Context, coreDir string, p Processors) (*SharedContext, error) {
	layoutPath := filepath.Join(coreDir, CoreLayoutFile)
	layoutSource, err := os.ReadFile(layoutPath)
	if err != nil {
		return nil, errors.NewFileSystemError("CORE_LAYOUT", "cannot read core layout", err).WithPath(layoutPath)
	}

	sassPath, err := coreStylesheet(coreDir)
	if err != nil {
		return nil, err
	}
	css, err := minify.CompileStylesheet(ctx, p.Stylesheet, sassPath)
	if err != nil {
		return nil, err
	}

	scriptPath := filepath.Join(coreDir, CoreScriptFile)
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, errors.NewFileSystemError("CORE_SCRIPT", "cannot find core script", err).WithPath(scriptPath)
	}
	js := minify.MinifyScript(p.Script, scriptPath)

	return NewSharedContext(string(layoutSource), css, js.Text())
}

// NewSharedContext builds a shared context from already processed parts.
func NewSharedContext(layout, coreCSS, coreJS string) (*SharedContext, error) {
	tmpl, err := template.New(CoreLayoutFile).Parse(layout)
	if err != nil {
		return nil, errors.NewInternalError("CORE_LAYOUT_PARSE", "invalid core layout", err)
	}

	return &SharedContext{
		values: map[string]any{
			KeyCoreCSS: template.CSS(coreCSS),
			KeyCoreJS:  template.JS(coreJS),
		},
		layout: tmpl,
	}, nil
}

// Overlay returns a fresh copy of the shared values for one build. The
// values are immutable strings, so copying the map is a full copy.
func (s *SharedContext) Overlay() RenderContext {
	rc := make(RenderContext, len(s.values)+5)
	for k, v := range s.values {
		rc[k] = v
	}
	return rc
}

// Render executes the core layout with rc.
func (s *SharedContext) Render(rc RenderContext) (string, error) {
	var buf strings.Builder
	if err := s.layout.Execute(&buf, map[string]any(rc)); err != nil {
		return "", fmt.Errorf("rendering core layout: %w", err)
	}
	return buf.String(), nil
}

func coreStylesheet(coreDir string) (string, error) {
	for _, name := range []string{CoreSassFile, CoreSCSSFile} {
		path := filepath.Join(coreDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.NewFileSystemError("CORE_STYLESHEET", "cannot find core stylesheet", os.ErrNotExist).
		WithPath(filepath.Join(coreDir, CoreSassFile))
}
