package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nebulabroadcast/html-template-builder/internal/minify"
	"github.com/stretchr/testify/require"
)

const testLayout = `<!DOCTYPE html>
<html>
<head>
<style id="core-css">{{ .core_css }}</style>
{{ with .tpl_css }}<style id="tpl-css">{{ . }}</style>{{ end }}
<script>var param_map = {{ .param_map }};</script>
<script id="core-js">{{ .core_js }}</script>
{{ with .tpl_js }}<script id="tpl-js">{{ . }}</script>{{ end }}
</head>
<body data-width="{{ .manifest.Width }}" data-author="{{ .manifest.AuthorName }}">
{{ .body }}
</body>
</html>
`

// fakeSass "compiles" by stripping whitespace and fails on sources that
// contain the word invalid.
type fakeSass struct{}

func (fakeSass) Compile(_ context.Context, source string, syntax minify.Syntax) (string, error) {
	if strings.Contains(source, "invalid") {
		return "", errors.New("Error: expected \"{\"")
	}
	return syntax.String() + ":" + strings.Join(strings.Fields(source), ""), nil
}

// identityMarkup leaves rendered HTML untouched so assertions stay readable.
type identityMarkup struct{}

func (identityMarkup) Minify(html string) (string, error) { return html, nil }

type panickingMarkup struct{}

func (panickingMarkup) Minify(string) (string, error) { return "", errors.New("minifier bug") }

func testProcessors() Processors {
	return Processors{
		Stylesheet: fakeSass{},
		Script:     minify.NewESBuild(),
		Markup:     identityMarkup{},
	}
}

type fixture struct {
	src   string
	build string
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		src:   filepath.Join(root, "src"),
		build: filepath.Join(root, "build"),
	}
	require.NoError(t, os.MkdirAll(f.src, 0o755))
	return f
}

// template writes files (name -> content) into src/<name>.
func (f *fixture) template(t testing.TB, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(f.src, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func (f *fixture) compiler(t testing.TB, p Processors) *Compiler {
	t.Helper()
	shared, err := NewSharedContext(testLayout, "core{color:white}", "var core=1;")
	require.NoError(t, err)
	return NewCompiler(f.src, f.build, shared, p)
}

func (f *fixture) read(t testing.TB, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.build, rel))
	require.NoError(t, err)
	return string(data)
}
