// Package build compiles template source bundles into deployable artifacts.
//
// A Compiler turns one template directory into <name>.html, <name>.xml and the
// copied ancillary files under the build directory. A Builder wraps the
// compiler with the per-template failure boundary used by full build passes
// and the watcher: it serialises builds of the same template, times them, logs
// the outcome and notifies callbacks.
package build

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/manifest"
	"github.com/nebulabroadcast/html-template-builder/internal/minify"
	"github.com/nebulabroadcast/html-template-builder/internal/registry"
)

// BuildOutput describes the artifacts written for one template.
type BuildOutput struct {
	Name     string
	Dir      string
	HTMLPath string
	XMLPath  string
	// Copied lists the ancillary source entries copied into Dir.
	Copied []string
}

// TemplateCompiler compiles a single template by name.
type TemplateCompiler interface {
	Compile(ctx context.Context, name string) (*BuildOutput, error)
}

// Compiler is the default TemplateCompiler. It reads only from
// srcDir/<name> and the shared context, and writes only to buildDir/<name>.
type Compiler struct {
	srcDir     string
	buildDir   string
	shared     *SharedContext
	processors Processors
}

// NewCompiler creates a compiler.
func NewCompiler(srcDir, buildDir string, shared *SharedContext, p Processors) *Compiler {
	return &Compiler{
		srcDir:     srcDir,
		buildDir:   buildDir,
		shared:     shared,
		processors: p,
	}
}

// sourcePaths are the well-known files of one template.
type sourcePaths struct {
	dir      string
	markup   string
	sass     string
	scss     string
	script   string
	manifest string
}

func (c *Compiler) resolve(name string) sourcePaths {
	dir := filepath.Join(c.srcDir, name)
	return sourcePaths{
		dir:      dir,
		markup:   filepath.Join(dir, registry.MarkupFile),
		sass:     filepath.Join(dir, registry.SassFile),
		scss:     filepath.Join(dir, registry.SCSSFile),
		script:   filepath.Join(dir, registry.ScriptFile),
		manifest: filepath.Join(dir, registry.ManifestFile),
	}
}

// Compile builds the template called name.
func (c *Compiler) Compile(ctx context.Context, name string) (*BuildOutput, error) {
	out, err := c.compile(ctx, name)
	if err != nil {
		return nil, tagTemplate(err, name)
	}
	return out, nil
}

func (c *Compiler) compile(ctx context.Context, name string) (*BuildOutput, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, errors.NewFileSystemError("TEMPLATE_NAME", "invalid template name", nil)
	}

	paths := c.resolve(name)
	if info, err := os.Stat(paths.dir); err != nil || !info.IsDir() {
		if err == nil {
			err = stderrors.New("not a directory")
		}
		return nil, errors.NewFileSystemError("TEMPLATE_SOURCE", "template source directory not found", err).WithPath(paths.dir)
	}

	m, err := manifest.Load(paths.manifest)
	if err != nil {
		return nil, err
	}

	rc := c.shared.Overlay()

	if sheet, ok := nonEmptyFile(paths.sass, paths.scss); ok {
		css, err := minify.CompileStylesheet(ctx, c.processors.Stylesheet, sheet)
		if err != nil {
			return nil, err
		}
		rc.SetStylesheet(css)
	}

	if fileExists(paths.script) {
		rc.SetScript(minify.MinifyScript(c.processors.Script, paths.script).Text())
	}

	if fileExists(paths.markup) {
		body, err := os.ReadFile(paths.markup)
		if err != nil {
			return nil, errors.NewFileSystemError("TEMPLATE_MARKUP", "cannot read template markup", err).WithPath(paths.markup)
		}
		rc.SetBody(string(body))
	}

	rc.SetManifest(m)

	rendered, err := c.shared.Render(rc)
	if err != nil {
		return nil, errors.NewInternalError("RENDER", "cannot render template", err)
	}
	html := minify.MinifyMarkup(c.processors.Markup, rendered)

	descriptor, err := NewDescriptor(m).Marshal()
	if err != nil {
		return nil, errors.NewInternalError("DESCRIPTOR", "cannot encode descriptor", err)
	}

	outDir := filepath.Join(c.buildDir, name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.NewFileSystemError("OUTPUT_DIR", "cannot create build directory", err).WithPath(outDir)
	}

	out := &BuildOutput{
		Name:     name,
		Dir:      outDir,
		HTMLPath: filepath.Join(outDir, name+".html"),
		XMLPath:  filepath.Join(outDir, name+".xml"),
	}

	if err := os.WriteFile(out.HTMLPath, []byte(html), 0o644); err != nil {
		return nil, errors.NewFileSystemError("OUTPUT_HTML", "cannot write html", err).WithPath(out.HTMLPath)
	}
	if err := os.WriteFile(out.XMLPath, descriptor, 0o644); err != nil {
		return nil, errors.NewFileSystemError("OUTPUT_XML", "cannot write descriptor", err).WithPath(out.XMLPath)
	}

	copied, err := copyAncillary(paths.dir, outDir)
	if err != nil {
		return nil, err
	}
	out.Copied = copied

	return out, nil
}

// nonEmptyFile returns the first candidate that exists with a non-zero size.
func nonEmptyFile(candidates ...string) (string, bool) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
			return path, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// tagTemplate attaches the template name to err, wrapping foreign errors as
// internal build errors.
func tagTemplate(err error, name string) error {
	var be *errors.BuildError
	if stderrors.As(err, &be) {
		if be.Template == "" {
			be.Template = name
		}
		return err
	}
	return errors.NewInternalError("BUILD", "build failed", err).WithTemplate(name)
}
