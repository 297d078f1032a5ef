//go:build property

package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nebulabroadcast/html-template-builder/internal/manifest"
)

// TestParamMapProperties validates the positional parameter map.
func TestParamMapProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("literal is a JSON object preserving declaration order", prop.ForAll(
		func(ids []string) bool {
			params := make([]manifest.Parameter, len(ids))
			for i, id := range ids {
				params[i] = manifest.Parameter{ID: id}
			}

			var decoded map[string]string
			if err := json.Unmarshal([]byte(NewParamMap(params).Literal()), &decoded); err != nil {
				return false
			}
			if len(decoded) != len(ids) {
				return false
			}
			for i, id := range ids {
				if decoded[fmt.Sprintf("f%d", i)] != id {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.Property("literal never contains a closing script tag", prop.ForAll(
		func(id string) bool {
			pm := NewParamMap([]manifest.Parameter{{ID: id + "</script>"}})
			return !strings.Contains(strings.ToLower(pm.Literal()), "</script")
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestCompileProperties validates build outputs over generated manifests.
func TestCompileProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("compiling twice yields identical artifacts", prop.ForAll(
		func(width, height int, ids []string) bool {
			f := newFixture(t)

			params := make([]map[string]string, len(ids))
			for i, id := range ids {
				params[i] = map[string]string{"id": id}
			}
			data, err := json.Marshal(map[string]any{
				"width":      width,
				"height":     height,
				"parameters": params,
			})
			if err != nil {
				return false
			}
			f.template(t, "tpl", map[string]string{
				"manifest.json": string(data),
				"template.html": "<p>x</p>",
			})

			c := f.compiler(t, testProcessors())
			first, err := compileAndRead(c, f.build)
			if err != nil {
				return false
			}
			second, err := compileAndRead(c, f.build)
			if err != nil {
				return false
			}
			return first == second &&
				strings.Count(first, "<parameter ") == len(ids) &&
				strings.Contains(first, fmt.Sprintf(`originalWidth="%d"`, width))
		},
		gen.IntRange(1, 7680),
		gen.IntRange(1, 4320),
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func compileAndRead(c *Compiler, buildDir string) (string, error) {
	if _, err := c.Compile(context.Background(), "tpl"); err != nil {
		return "", err
	}
	html, err := os.ReadFile(filepath.Join(buildDir, "tpl", "tpl.html"))
	if err != nil {
		return "", err
	}
	xml, err := os.ReadFile(filepath.Join(buildDir, "tpl", "tpl.xml"))
	if err != nil {
		return "", err
	}
	return string(xml) + string(html), nil
}
