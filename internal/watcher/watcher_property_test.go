//go:build property

package watcher

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRouteProperties validates the event router.
func TestRouteProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	src := filepath.FromSlash("/srv/src")

	properties.Property("any path inside a known template routes to it", prop.ForAll(
		func(name string, segments []string) bool {
			path := filepath.Join(append([]string{src, name, "f"}, segments...)...)
			got, ok := Route(src, path, []string{"other", name})
			return ok && got == name
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
	))

	properties.Property("a known template directory routes to itself", prop.ForAll(
		func(name string) bool {
			got, ok := Route(src, filepath.Join(src, name), []string{name})
			return ok && got == name
		},
		gen.Identifier(),
	))

	properties.Property("unknown templates never route", prop.ForAll(
		func(name string, file string) bool {
			_, ok := Route(src, filepath.Join(src, name, file), []string{name + "x"})
			return !ok
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("paths outside src never route", prop.ForAll(
		func(name string, file string) bool {
			path := filepath.Join(filepath.Dir(src), "build", name, file)
			_, ok := Route(src, path, []string{name})
			return !ok
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
