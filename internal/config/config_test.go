package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mwconv/internal/errors"
	"mwconv/internal/expand"
	"mwconv/internal/render"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Conversion.WrapTemplates)
	assert.Equal(t, expand.DefaultMaxDepth, cfg.Conversion.MaxDepth)
	assert.Equal(t, render.FormatHTML, cfg.Format())
	assert.Empty(t, cfg.TemplateDefs())
}

func TestLoadFull(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "lib/templates.yaml", "templates:\n  Echo: \"{{{1}}}\"\n  Box: \"<b>{{{1}}}</b>\"\n")
	path := write(t, dir, FileName, `
[conversion]
wrap_templates = false
max_depth = 5
cache = true

[templates]
library = "lib/templates.yaml"

[templates.defs]
Box = "<i>{{{1}}}</i>"

[output]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Conversion.WrapTemplates)
	assert.Equal(t, 5, cfg.Conversion.MaxDepth)
	assert.True(t, cfg.Conversion.Cache)
	assert.Equal(t, render.FormatJSON, cfg.Format())
	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, map[string]string{
		"Echo": "{{{1}}}",
		"Box":  "<i>{{{1}}}</i>",
	}, cfg.TemplateDefs())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := write(t, t.TempDir(), FileName, "[output]\nformat = \"pretty\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Conversion.WrapTemplates)
	assert.Equal(t, expand.DefaultMaxDepth, cfg.Conversion.MaxDepth)
	assert.Equal(t, render.FormatPretty, cfg.Format())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[conversion\n"},
		{"unknown key", "[conversion]\nwrap = true\n"},
		{"depth", "[conversion]\nmax_depth = 0\n"},
		{"format", "[output]\nformat = \"xml\"\n"},
		{"empty library", "[templates]\nlibrary = \" \"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, t.TempDir(), FileName, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadMissingLibrary(t *testing.T) {
	path := write(t, t.TempDir(), FileName, "[templates]\nlibrary = \"nope.yaml\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, root, FileName, "[conversion]\nmax_depth = 7\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, found, err := Find(nested)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, filepath.Join(root, FileName), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Conversion.MaxDepth)
	assert.Equal(t, path, cfg.Path)
}
