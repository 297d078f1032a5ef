package minify

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ScriptTarget is the newest syntax emitted. Newer constructs are lowered so
// the output runs in the older Chromium builds embedded by playout servers.
const ScriptTarget = api.ES2017

// ESBuild minifies scripts with esbuild's transform API. Scripts are treated
// as classic (non-module) scripts, so top-level declarations keep their names
// and stay reachable from the host page.
type ESBuild struct{}

// NewESBuild creates the esbuild-backed script minifier.
func NewESBuild() *ESBuild {
	return &ESBuild{}
}

// Minify implements ScriptMinifier.
func (ESBuild) Minify(source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            ScriptTarget,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})

	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Column, e.Text))
			} else {
				msgs = append(msgs, e.Text)
			}
		}
		return "", fmt.Errorf("esbuild: %s", strings.Join(msgs, "; "))
	}

	return strings.TrimSpace(string(result.Code)), nil
}
