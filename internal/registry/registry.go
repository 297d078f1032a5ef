// Package registry enumerates the templates available under the source
// directory. A template is identified only by the name of its directory; the
// list is recomputed on every call because directories come and go while the
// watcher runs.
package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
)

// Well-known source file names inside a template directory.
const (
	MarkupFile   = "template.html"
	SassFile     = "template.sass"
	SCSSFile     = "template.scss"
	ScriptFile   = "template.js"
	ManifestFile = "manifest.json"
)

var reserved = map[string]bool{
	MarkupFile:   true,
	SassFile:     true,
	SCSSFile:     true,
	ScriptFile:   true,
	ManifestFile: true,
}

// IsReserved reports whether name is one of the source files consumed by the
// compiler rather than copied to the output.
func IsReserved(name string) bool {
	return reserved[name]
}

// Registry lists template directories under a source root.
type Registry struct {
	srcDir string
}

// New creates a registry rooted at srcDir.
func New(srcDir string) *Registry {
	return &Registry{srcDir: srcDir}
}

// SrcDir returns the source root.
func (r *Registry) SrcDir() string {
	return r.srcDir
}

// List returns the names of the immediate subdirectories of the source root
// in lexicographic order. Hidden directories are skipped.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.srcDir)
	if err != nil {
		return nil, errors.NewFileSystemError("REGISTRY_SCAN", "cannot list source directory", err).WithPath(r.srcDir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if isDir(r.srcDir, entry) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// Contains reports whether name is currently a template.
func (r *Registry) Contains(name string) (bool, error) {
	names, err := r.List()
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(names, name)
	return i < len(names) && names[i] == name, nil
}

// isDir follows symlinks so a linked template directory still counts.
func isDir(root string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	return err == nil && info.IsDir()
}

// Source summarises what a template directory contains.
type Source struct {
	Name       string   `json:"name" yaml:"name"`
	Dir        string   `json:"dir" yaml:"dir"`
	Markup     bool     `json:"markup" yaml:"markup"`
	Stylesheet string   `json:"stylesheet,omitempty" yaml:"stylesheet,omitempty"`
	Script     bool     `json:"script" yaml:"script"`
	Manifest   bool     `json:"manifest" yaml:"manifest"`
	Ancillary  []string `json:"ancillary,omitempty" yaml:"ancillary,omitempty"`
}

// Describe inspects the source directory of name.
func (r *Registry) Describe(name string) (*Source, error) {
	dir := filepath.Join(r.srcDir, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileSystemError("REGISTRY_DESCRIBE", "cannot read template directory", err).
			WithTemplate(name).
			WithPath(dir)
	}

	src := &Source{Name: name, Dir: dir}
	for _, entry := range entries {
		switch entry.Name() {
		case MarkupFile:
			src.Markup = true
		case SassFile:
			src.Stylesheet = SassFile
		case SCSSFile:
			if src.Stylesheet == "" {
				src.Stylesheet = SCSSFile
			}
		case ScriptFile:
			src.Script = true
		case ManifestFile:
			src.Manifest = true
		default:
			src.Ancillary = append(src.Ancillary, entry.Name())
		}
	}
	return src, nil
}
