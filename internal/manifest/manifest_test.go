package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	assert.Equal(t, DefaultAuthorName, m.AuthorName())
	assert.Equal(t, DefaultAuthorEmail, m.AuthorEmail())
	assert.Equal(t, 1920, m.Width())
	assert.Equal(t, 1080, m.Height())
	assert.Equal(t, 50.0, m.FrameRate())
	assert.Empty(t, m.Parameters)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"author_name": "Studio B",
		"width": 1280,
		"height": 720,
		"frame_rate": 29.97,
		"parameters": [
			{"id": "title"},
			{"id": "subtitle", "type": "text", "info": "Second line"}
		],
		"unknown_key": true
	}`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Studio B", m.AuthorName())
	assert.Equal(t, DefaultAuthorEmail, m.AuthorEmail())
	assert.Equal(t, 1280, m.Width())
	assert.Equal(t, 720, m.Height())
	assert.InDelta(t, 29.97, m.FrameRate(), 1e-9)

	want := []Parameter{
		{ID: "title", Type: "string"},
		{ID: "subtitle", Type: "text", Info: "Second line"},
	}
	if diff := cmp.Diff(want, m.Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"invalid json", `{"author_name": `, "MANIFEST_JSON"},
		{"empty file", ``, "MANIFEST_JSON"},
		{"wrong type", `{"width": "wide"}`, "MANIFEST_JSON"},
		{"top-level array", `[]`, "MANIFEST_JSON"},
		{"trailing data", `{} {}`, "MANIFEST_JSON"},
		{"trailing brace", `{"width":1}}`, "MANIFEST_JSON"},
		{"trailing bracket", `{"width":1}]`, "MANIFEST_JSON"},
		{"trailing word", `{"width":1} x`, "MANIFEST_JSON"},
		{"parameter without id", `{"parameters": [{"type": "string"}]}`, "MANIFEST_PARAM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			m, err := Load(path)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.IsManifestParseError(err))

			var be *errors.BuildError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.code, be.Code)
			assert.Equal(t, path, be.Path)
		})
	}
}

func TestExplicitZeroValuesAreKept(t *testing.T) {
	m, err := Parse([]byte(`{"author_name": "", "width": 0}`))
	require.NoError(t, err)

	assert.Equal(t, "", m.AuthorName())
	assert.Equal(t, 0, m.Width())
	assert.Equal(t, DefaultHeight, m.Height())
}
