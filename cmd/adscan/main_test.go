package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/adscan"
	main "github.com/fwojciec/adscan/cmd/adscan"
	"github.com/fwojciec/adscan/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMain returns a Main backed by an in-memory database.
func newTestMain() *main.Main {
	m := main.NewMain()
	m.DBPath = ":memory:"
	return m
}

func TestCmdStats_empty_ledger(t *testing.T) {
	t.Parallel()

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"stats"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Ledger is empty.")
}

func TestCmdReset_requires_force(t *testing.T) {
	t.Parallel()

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"reset"}, stdout, stderr)

	require.Error(t, err)
	assert.Equal(t, adscan.EINVALID, adscan.ErrorCode(err))
	assert.Contains(t, stderr.String(), "--force")
}

func TestCmdReset_with_force(t *testing.T) {
	t.Parallel()

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"reset", "--force"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Ledger cleared.")
}

func TestCmdVacuum(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "adscan.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"vacuum"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Database compacted.")
}

func TestCmdImport_from_result_files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRunArtifact(t, dir, []*adscan.TaskResult{
		adscan.SuccessResult("https://a.example.com/", &adscan.PageData{URL: "https://a.example.com/"}, time.Second),
		adscan.NoDataResult("https://b.example.com/", time.Second),
	})

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"import", dir}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Imported 2 of 2 records")
}

func TestCmdImport_empty_directory(t *testing.T) {
	t.Parallel()

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"import", t.TempDir()}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No result records found.")
}

func TestRun_no_command_shows_help(t *testing.T) {
	t.Parallel()

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), nil, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestRun_help_flag(t *testing.T) {
	t.Parallel()

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)

	require.NoError(t, err)
}

func TestCmdStats_with_list_and_suggestions(t *testing.T) {
	t.Parallel()

	list := filepath.Join(t.TempDir(), "urls.txt")
	content := "# comment\nhttps://a.example.com/\n\nhttps://b.example.com/\nhttps://c.example.com/\n"
	require.NoError(t, os.WriteFile(list, []byte(content), 0644))

	m := newTestMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(),
		[]string{"stats", list, "--suggest", "2", "--window-size", "2"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Unprocessed ranges:")
	assert.Contains(t, stdout.String(), "--range 1-2")
}

// writeRunArtifact writes a result artifact the importer accepts.
func writeRunArtifact(t *testing.T, dir string, results []*adscan.TaskResult) {
	t.Helper()
	store := fs.NewResultStore(dir)
	require.NoError(t, store.WriteResults(context.Background(), results))
}
