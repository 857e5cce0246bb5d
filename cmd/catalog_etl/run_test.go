package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_EndToEnd(t *testing.T) {
	server := listingServer(t, "Shirt A", "Shirt B")
	dir := t.TempDir()

	output, err := execute(t, "run",
		"--url", server.URL,
		"--data-dir", dir,
		"--filename", "items",
		"--file-type", "csv")
	require.NoError(t, err)

	assert.Contains(t, output, "PIPELINE RUN")
	assert.Contains(t, output, "items (2 rows)")
	assert.FileExists(t, filepath.Join(dir, "items.csv"))
	assert.FileExists(t, filepath.Join(dir, "items.sqlite"))
	assert.NoFileExists(t, filepath.Join(dir, "items.json"))
}

func TestRunCommand_ConfigFileWithOverride(t *testing.T) {
	server := listingServer(t, "Shirt A")
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	configYAML := "url: " + server.URL + "\n" +
		"filename: catalog\n" +
		"file_type: csv\n" +
		"data_dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	output, err := execute(t, "run", "--config", configPath, "--file-type", "json", "--export-json")
	require.NoError(t, err)

	assert.Contains(t, output, "json (1 rows read)")
	assert.FileExists(t, filepath.Join(dir, "catalog.json"))
	assert.FileExists(t, filepath.Join(dir, "catalog.sqlite"))
}

func TestRunCommand_EmptyFileTypeTakesJSONBranch(t *testing.T) {
	server := listingServer(t, "Shirt A")
	dir := t.TempDir()

	output, err := execute(t, "run",
		"--url", server.URL,
		"--data-dir", dir,
		"--filename", "items",
		"--file-type", "",
		"--export-json")
	require.NoError(t, err)

	assert.Contains(t, output, "BRANCH_JSON")
	assert.NotContains(t, output, "BRANCH_CSV")
	assert.Contains(t, output, "json (1 rows read)")
}

func TestRunCommand_ConfigEmptyFileTypeTakesJSONBranch(t *testing.T) {
	server := listingServer(t, "Shirt A")
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.json")
	configJSON := `{"url": "` + server.URL + `", "filename": "items", "file_type": "", "data_dir": "` + dir + `"}`
	require.NoError(t, os.WriteFile(configPath, []byte(configJSON), 0644))

	output, err := execute(t, "run", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, output, "BRANCH_JSON")
	assert.Contains(t, output, "read_json_task")
}

func TestRunCommand_DefaultFileTypeIsCSV(t *testing.T) {
	server := listingServer(t, "Shirt A")
	dir := t.TempDir()

	output, err := execute(t, "run", "--url", server.URL, "--data-dir", dir, "--filename", "items")
	require.NoError(t, err)

	assert.Contains(t, output, "BRANCH_CSV")
}

func TestRunCommand_StageFailureStillSucceeds(t *testing.T) {
	server := listingServer(t)
	url := server.URL
	server.Close()
	dir := t.TempDir()

	output, err := execute(t, "run", "--url", url, "--data-dir", dir, "--filename", "items")
	require.NoError(t, err)

	assert.Contains(t, output, "extract_data")
	assert.FileExists(t, filepath.Join(dir, "items.csv"))
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--url", "not a url", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestRunCommand_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
