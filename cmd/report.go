package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/nebulabroadcast/html-template-builder/internal/build"
	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/packager"
)

// reporter prints one timestamped line per build or packaging outcome. It is
// the human-facing counterpart of the structured log.
type reporter struct {
	out   io.Writer
	now   func() time.Time
	mutex sync.Mutex

	good *color.Color
	bad  *color.Color
	info *color.Color
}

func newReporter(out io.Writer) *reporter {
	return &reporter{
		out:  out,
		now:  time.Now,
		good: color.New(color.FgGreen, color.Bold),
		bad:  color.New(color.FgRed, color.Bold),
		info: color.New(color.FgCyan),
	}
}

func (r *reporter) line(c *color.Color, label, format string, args ...interface{}) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	fmt.Fprintf(r.out, "%s %s %s\n",
		r.now().Format("2006-01-02 15:04:05"),
		c.Sprintf("%-5s", label),
		fmt.Sprintf(format, args...),
	)
}

// Build is a build.BuildCallback.
func (r *reporter) Build(result build.BuildResult) {
	if result.OK() {
		r.line(r.good, "OK", "Building of %s finished in %.3fs", result.Name, result.Duration.Seconds())
		return
	}
	r.line(r.bad, "ERROR", "Building of %s failed: %v", result.Name, result.Err)
	r.hints(result.Err)
}

// Package is a packager.PackageCallback.
func (r *reporter) Package(result packager.Result) {
	if result.OK() {
		r.line(r.good, "OK", "Packaged %s (%d files) to %s", result.Name, result.Files, result.Path)
		return
	}
	r.line(r.bad, "ERROR", "Packaging of %s failed: %v", result.Name, result.Err)
	r.hints(result.Err)
}

func (r *reporter) hints(err error) {
	if text := errors.FormatSuggestions(errors.Suggest(err)); text != "" {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		fmt.Fprint(r.out, text)
	}
}

// Infof prints a neutral status line.
func (r *reporter) Infof(format string, args ...interface{}) {
	r.line(r.info, "INFO", format, args...)
}
