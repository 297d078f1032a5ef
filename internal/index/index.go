// Package index renders the landing page listing the last full build pass.
//
// The page is a templ component; run `templ generate` after editing
// index.templ.
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"

	"github.com/nebulabroadcast/html-template-builder/internal/build"
	"github.com/nebulabroadcast/html-template-builder/internal/errors"
)

// FileName is the name of the page inside the build directory.
const FileName = "index.html"

// Entry is one row of the index.
type Entry struct {
	Name     string
	OK       bool
	Duration time.Duration
	Error    string
}

// DurationText is the build duration rounded for display.
func (e Entry) DurationText() string {
	return e.Duration.Round(time.Millisecond).String()
}

// Href is the link to the built page, relative to the build directory.
func (e Entry) Href() templ.SafeURL {
	return templ.URL(e.Name + "/" + e.Name + ".html")
}

// FromResults converts build results into index entries, keeping order.
func FromResults(results []build.BuildResult) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		e := Entry{Name: r.Name, OK: r.OK(), Duration: r.Duration}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}

// Write renders the index page to buildDir/index.html.
func Write(ctx context.Context, buildDir string, entries []Entry) (string, error) {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", errors.NewFileSystemError("INDEX_DIR", "cannot create build directory", err).WithPath(buildDir)
	}

	path := filepath.Join(buildDir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.NewFileSystemError("INDEX_WRITE", "cannot create index page", err).WithPath(path)
	}

	if err := Page(entries).Render(ctx, f); err != nil {
		f.Close()
		return "", errors.NewFileSystemError("INDEX_WRITE", "cannot render index page", err).WithPath(path)
	}
	if err := f.Close(); err != nil {
		return "", errors.NewFileSystemError("INDEX_WRITE", "cannot write index page", err).WithPath(path)
	}
	return path, nil
}

func summary(entries []Entry) string {
	failed := 0
	for _, e := range entries {
		if !e.OK {
			failed++
		}
	}
	return fmt.Sprintf("%d built, %d failed", len(entries)-failed, failed)
}
