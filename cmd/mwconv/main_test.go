package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mwconv/internal/errors"
	"mwconv/internal/render"
	"mwconv/internal/version"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--color=off"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const projectConfig = `
[templates.defs]
Echo = "{{{1}}}"
`

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := readUIMode("sometimes")
	assert.Error(t, err)
	assert.True(t, shouldUseTUI(uiModeOn))
	assert.False(t, shouldUseTUI(uiModeOff))
}

func TestConvertFileUsesDiscoveredConfig(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "mwconv.toml", projectConfig)
	doc := writeTestFile(t, dir, "pages/page.wiki", `<div k="{{echo|x}}"/>`)

	out, _, err := execute(t, "", "convert", doc)
	require.NoError(t, err)
	assert.Equal(t,
		`<meta property="mw:objectAttrVal#k" about="#mwt1" data-mw-src="{{echo|x}}"/>`+
			`<div k="x" about="#mwt1" typeof="mw:ExpandedAttrs/Template"/>`,
		out)
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "mwconv.toml", projectConfig+"\n[output]\nformat = \"json\"\n")
	doc := writeTestFile(t, dir, "page.wiki", `<a href="{{echo|u}}">t</a>`)

	out, _, err := execute(t, "", "convert", "--wrap-templates=false", "--format", "html", doc)
	require.NoError(t, err)
	assert.Equal(t, `<a href="u">t</a>`, out)
}

func TestInvalidConfigIsReported(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "mwconv.toml", "[conversion]\nmax_depth = 0\n")
	doc := writeTestFile(t, dir, "page.wiki", "x")

	out, errOut, err := execute(t, "", "convert", doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "error IO4003 ")
	assert.Contains(t, errOut, "mwconv.toml")
	assert.Contains(t, errOut, "max_depth")
}

func TestConvertStdinWithTemplateLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := writeTestFile(t, dir, "templates.yaml", "templates:\n  Bold: \"<b>{{{1}}}</b>\"\n")
	cfg := writeTestFile(t, dir, "empty.toml", "")

	out, _, err := execute(t, "{{bold|hi}}", "--config="+cfg, "convert", "--templates", lib, "--wrap-templates=false", "-")
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", out)
}

func TestConvertRecursionFails(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "mwconv.toml", "[templates.defs]\nLoop = \"{{loop}}\"\n")
	doc := writeTestFile(t, dir, "page.wiki", "{{loop}}")

	out, errOut, err := execute(t, "", "convert", "--max-depth", "3", doc)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "error ")
	assert.Contains(t, errOut, "page.wiki")
}

func TestConvertDirWritesOutputTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeTestFile(t, dir, "mwconv.toml", projectConfig)
	writeTestFile(t, src, "a.wiki", "{{echo|a}}")
	writeTestFile(t, src, "nested/b.mw", "plain")
	writeTestFile(t, src, "notes.txt", "ignored")
	outDir := filepath.Join(dir, "out")

	_, _, err := execute(t, "", "convert", "--ui", "off", "--wrap-templates=false", "-o", outDir, src)
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(outDir, "a.html"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(a))
	b, err := os.ReadFile(filepath.Join(outDir, "nested", "b.html"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(b))
	assert.NoFileExists(t, filepath.Join(outDir, "notes.html"))
}

func TestOutputPath(t *testing.T) {
	got, err := outputPath("in", "out", filepath.Join("in", "x", "p.wiki"), render.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "x", "p.json"), got)
}

func TestTokenizeJSON(t *testing.T) {
	out, _, err := execute(t, "<b>x</b>", "tokenize", "--format", "json", "-")
	require.NoError(t, err)
	var toks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &toks))
	assert.NotEmpty(t, toks)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "x", "convert", "--format", "yaml", "-")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.Line(false)+"\n", out)

	out, _, err = execute(t, "", "version", "--format", "json")
	require.NoError(t, err)
	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "mwconv", payload.Tool)
	assert.Equal(t, version.Version, payload.Version)
}
