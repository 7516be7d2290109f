package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page,
		[]byte(`<html><head><title>Launch</title></head><body><h1>Launch day</h1><p>It is here.</p></body></html>`), 0o644))

	out, err := runCommand(t, "import", page)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Launch", doc["title"])
	elements, ok := doc["elements"].([]any)
	require.True(t, ok)
	require.Len(t, elements, 2)
	assert.Equal(t, "heading", elements[0].(map[string]any)["type"])
	assert.Equal(t, "text", elements[1].(map[string]any)["type"])

	docPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(docPath, []byte(out), 0o644))

	html, err := runCommand(t, "export", docPath)
	require.NoError(t, err)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Launch day")
	assert.NotContains(t, html, "data-bb-")
}

func TestExportRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"elements":[{"id":"x","type":"marquee"}]}`), 0o644))

	_, err := runCommand(t, "export", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document")
}

func TestWidgetsListsCatalog(t *testing.T) {
	out, err := runCommand(t, "widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "two-columns")
	assert.Contains(t, out, "raw-html")
}
