package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiffCommandTextOutput(t *testing.T) {
	dir := t.TempDir()
	left := writeTempJSON(t, dir, "left.json", `{"a":1,"b":2}`)
	right := writeTempJSON(t, dir, "right.json", `{"a":9,"c":3}`)

	out, err := execute(t, "diff", left, right)
	require.NoError(t, err)
	require.Contains(t, out, "~ $.a: 1 -> 9")
	require.Contains(t, out, "+ $.c: 3")
	require.Contains(t, out, "- $.b: 2")
	require.Contains(t, out, "1 added, 1 removed, 1 modified")
}

func TestDiffCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	left := writeTempJSON(t, dir, "left.json", `{"a":1}`)
	right := writeTempJSON(t, dir, "right.json", `{"a":2}`)

	out, err := execute(t, "--format", "json", "diff", left, right)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotEmpty(t, report.RunID)
	require.Equal(t, 1, report.Modified)
	require.Equal(t, []Entry{
		{Op: "modified", Path: "$.a", Left: "1", Right: "2"},
	}, report.Entries)
}

func TestDiffCommandIdenticalInputs(t *testing.T) {
	dir := t.TempDir()
	left := writeTempJSON(t, dir, "left.json", `{"a":[1,2]}`)
	right := writeTempJSON(t, dir, "right.json", `{"a":[1,2]}`)

	out, err := execute(t, "diff", left, right)
	require.NoError(t, err)
	require.Contains(t, out, "0 added, 0 removed, 0 modified")
}

func TestDiffCommandInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "diff", "a", "b")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid format")
}

func TestDiffCommandMissingFile(t *testing.T) {
	_, err := execute(t, "diff", "no-such-left.json", "no-such-right.json")
	require.Error(t, err)
}

func TestDiffCommandParseFailure(t *testing.T) {
	dir := t.TempDir()
	left := writeTempJSON(t, dir, "left.json", `{"a":"unterminated`)
	right := writeTempJSON(t, dir, "right.json", `{}`)

	_, err := execute(t, "diff", left, right)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated")
}

func TestDiffCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	left := writeTempJSON(t, dir, "left.json", `{"a":1}`)
	right := writeTempJSON(t, dir, "right.json", `{"a":2}`)

	// A config small enough to reject the inputs outright.
	cfgPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_input_size: 8\n"), 0o644))

	_, err := execute(t, "diff", "--config", cfgPath, left, right)
	require.Error(t, err)
	require.Contains(t, err.Error(), "capacity")
}

func TestDiffRecordAndHistory(t *testing.T) {
	dir := t.TempDir()
	left := writeTempJSON(t, dir, "left.json", `{"a":1}`)
	right := writeTempJSON(t, dir, "right.json", `{"a":2}`)
	db := filepath.Join(dir, "history.db")

	_, err := execute(t, "diff", "--record", "--history-db", db, left, right)
	require.NoError(t, err)

	out, err := execute(t, "history", "--history-db", db)
	require.NoError(t, err)
	require.Contains(t, out, "left.json")
	require.Contains(t, out, "~1")
}

func TestHistoryCommandEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	out, err := execute(t, "history", "--history-db", db)
	require.NoError(t, err)
	require.Contains(t, out, "no recorded runs")
}
