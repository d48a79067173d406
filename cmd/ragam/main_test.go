package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragam/ragam/internal/model"
)

const testCSV = `The Song,The Film Name,The Ragam,Video Link
Sundari,Thalapathy,Yamuna Kalyani,http://a
Mannil Intha,Keladi Kanmani,Shanmukhapriya,http://b
X,Y,Kalyani,
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSearchJSON(t *testing.T) {
	data := writeDataset(t)
	out, err := runRoot(t, "search", "--data", data, "--raga", "kalyani", "--song", "sundari", "--format", "json")
	require.NoError(t, err)

	var got model.SearchExport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Songs)
	require.NotNil(t, got.Ragas)
	require.Len(t, got.Ragas.Groups, 2)
	assert.Equal(t, "Yamuna Kalyani", got.Ragas.Groups[0].Name)
	assert.Equal(t, "Kalyani", got.Ragas.Groups[1].Name)
	require.NotNil(t, got.Titles)
	require.Len(t, got.Titles.Matches, 1)
	assert.Equal(t, "Sundari (Thalapathy)", got.Titles.Matches[0].Label)
}

func TestSearchTable(t *testing.T) {
	data := writeDataset(t)
	out, err := runRoot(t, "search", "--data", data, "--raga", "priya")
	require.NoError(t, err)
	assert.Contains(t, out, "Shanmukhapriya")
	assert.Contains(t, out, "Mannil Intha")
	assert.NotContains(t, out, "Sundari")

	out, err = runRoot(t, "search", "--data", data, "--raga", "todi")
	require.NoError(t, err)
	assert.Contains(t, out, `No ragas found matching "todi".`)
}

func TestSearchErrors(t *testing.T) {
	data := writeDataset(t)

	_, err := runRoot(t, "search", "--data", data)
	assert.Error(t, err)

	_, err = runRoot(t, "search", "--data", filepath.Join(t.TempDir(), "missing.csv"), "--raga", "x")
	assert.Error(t, err)

	_, err = runRoot(t, "search", "--data", data, "--raga", "x", "--format", "xml")
	assert.Error(t, err)
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"/":       "",
		"ragam":   "/ragam",
		"/ragam/": "/ragam",
		" /a/b ":  "/a/b",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeBasePath(in), "normalizeBasePath(%q)", in)
	}
}
