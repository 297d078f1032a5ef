package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	src := t.TempDir()
	for _, dir := range []string{"lower-third", "clock", ".git", "bug"} {
		require.NoError(t, os.MkdirAll(filepath.Join(src, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("stray"), 0o644))

	names, err := New(src).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "clock", "lower-third"}, names)
}

func TestListIsNotCached(t *testing.T) {
	src := t.TempDir()
	reg := New(src)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, os.Mkdir(filepath.Join(src, "ticker"), 0o755))

	names, err = reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ticker"}, names)

	require.NoError(t, os.Remove(filepath.Join(src, "ticker")))

	ok, err := reg.Contains("ticker")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListFollowsSymlinks(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(src, "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	names, err := New(src).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"linked"}, names)
}

func TestListMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).List()
	require.Error(t, err)
	assert.True(t, errors.IsFileSystemError(err))
}

func TestContains(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "clock"), 0o755))
	reg := New(src)

	ok, err := reg.Contains("clock")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.Contains("cloc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsReserved(t *testing.T) {
	for _, name := range []string{"template.html", "template.sass", "template.scss", "template.js", "manifest.json"} {
		assert.True(t, IsReserved(name), name)
	}
	for _, name := range []string{"logo.png", "template.css", "Template.html", "fonts"} {
		assert.False(t, IsReserved(name), name)
	}
}

func TestDescribe(t *testing.T) {
	src := t.TempDir()
	dir := filepath.Join(src, "clock")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fonts"), 0o755))
	for _, name := range []string{"template.html", "template.scss", "manifest.json", "logo.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	desc, err := New(src).Describe("clock")
	require.NoError(t, err)

	assert.Equal(t, "clock", desc.Name)
	assert.Equal(t, dir, desc.Dir)
	assert.True(t, desc.Markup)
	assert.Equal(t, SCSSFile, desc.Stylesheet)
	assert.False(t, desc.Script)
	assert.True(t, desc.Manifest)
	assert.Equal(t, []string{"fonts", "logo.png"}, desc.Ancillary)
}

func TestDescribeMissing(t *testing.T) {
	_, err := New(t.TempDir()).Describe("ghost")
	require.Error(t, err)
	assert.Equal(t, "ghost", errors.TemplateOf(err))
}
