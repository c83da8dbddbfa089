// Copyright 2025 The esql-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command against an in-memory filesystem and
// returns its stdout.
func runCommand(t *testing.T, fs afero.Fs, stdin string, args ...string) (string, error) {
	t.Helper()
	root, pc := GetRootCommand()
	pc.fs = fs

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func decodeJSON(t *testing.T, out string) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	return decoded
}

func TestRunJSONOutput(t *testing.T) {
	out, err := runCommand(t, afero.NewMemMapFs(), "", "FROM logs | LIMIT 1")
	require.NoError(t, err)

	decoded := decodeJSON(t, out)
	query, ok := decoded["query"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "query", query["type"])

	commands, ok := query["commands"].([]any)
	require.True(t, ok)
	require.Len(t, commands, 2)
	assert.Equal(t, "from", commands[0].(map[string]any)["name"])
	assert.Equal(t, "limit", commands[1].(map[string]any)["name"])
}

func TestRunTreeOutput(t *testing.T) {
	out, err := runCommand(t, afero.NewMemMapFs(), "", "--format", "tree", "FROM logs | WHERE a > 1")
	require.NoError(t, err)

	assert.Contains(t, out, "query ")
	assert.Contains(t, out, "command from")
	assert.Contains(t, out, "function >")
	assert.Contains(t, out, "column a")
}

func TestRunYAMLOutput(t *testing.T) {
	out, err := runCommand(t, afero.NewMemMapFs(), "", "--format", "yaml", "FROM logs")
	require.NoError(t, err)

	assert.Contains(t, out, "type: query")
	assert.Contains(t, out, "name: from")
	assert.Contains(t, out, "sourceType: index")
}

func TestRunFormatIsCaseInsensitive(t *testing.T) {
	_, err := runCommand(t, afero.NewMemMapFs(), "", "--format", "TREE", "FROM logs")
	assert.NoError(t, err)
}

func TestRunUnknownFormat(t *testing.T) {
	_, err := runCommand(t, afero.NewMemMapFs(), "", "--format", "xml", "FROM logs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestRunReadsQueryFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "query.esql", []byte("FROM logs | LIMIT 5\n"), 0o644))

	out, err := runCommand(t, fs, "", "--file", "query.esql")
	require.NoError(t, err)

	query := decodeJSON(t, out)["query"].(map[string]any)
	commands := query["commands"].([]any)
	require.Len(t, commands, 2)
}

func TestFileQueryTrimsTrailingNewlines(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "query.esql", []byte("FROM logs | LIMIT 5\n\n"), 0o644))

	_, pc := GetRootCommand()
	pc.fs = fs
	pc.file = "query.esql"

	// One-shot and watch mode read the file through the same path, so both
	// see the query without the trailing newlines.
	query, err := pc.loadFileQuery()
	require.NoError(t, err)
	assert.Equal(t, "FROM logs | LIMIT 5", query)
}

func TestRunReadsQueryFromStdin(t *testing.T) {
	out, err := runCommand(t, afero.NewMemMapFs(), "FROM logs\n")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "from"`)
}

func TestRunRejectsArgumentPlusFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "query.esql", []byte("FROM logs"), 0o644))

	_, err := runCommand(t, fs, "", "--file", "query.esql", "FROM other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot combine")
}

func TestRunMissingFile(t *testing.T) {
	_, err := runCommand(t, afero.NewMemMapFs(), "", "--file", "nope.esql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read query file")
}

func TestRunFailOnError(t *testing.T) {
	_, err := runCommand(t, afero.NewMemMapFs(), "", "--fail-on-error", "FROM logs |")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")

	// Without the flag a broken query still renders successfully.
	out, err := runCommand(t, afero.NewMemMapFs(), "", "FROM logs |")
	require.NoError(t, err)
	assert.Contains(t, out, `"incomplete": true`)
}

func TestRunIncludeErrors(t *testing.T) {
	out, err := runCommand(t, afero.NewMemMapFs(), "", "--include-errors", "FROM logs |")
	require.NoError(t, err)

	decoded := decodeJSON(t, out)
	errs, ok := decoded["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].(map[string]any)["text"], "SyntaxError: ")
}

func TestRunErrorsOmittedByDefault(t *testing.T) {
	out, err := runCommand(t, afero.NewMemMapFs(), "", "FROM logs |")
	require.NoError(t, err)
	_, present := decodeJSON(t, out)["errors"]
	assert.False(t, present)
}

// configPath returns where viper resolves ./esqlparse.yaml: the search path
// is made absolute against the working directory before the lookup.
func configPath(t *testing.T) string {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Join(cwd, "esqlparse.yaml")
}

func TestConfigFileSetsFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, configPath(t), []byte("format: tree\n"), 0o644))

	out, err := runCommand(t, fs, "", "FROM logs")
	require.NoError(t, err)
	assert.Contains(t, out, "command from")
}

func TestEnvOverridesConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, configPath(t), []byte("format: tree\n"), 0o644))
	t.Setenv("ESQLPARSE_FORMAT", "json")

	out, err := runCommand(t, fs, "", "FROM logs")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "query"`)
}

func TestWatchRequiresFile(t *testing.T) {
	_, err := runCommand(t, afero.NewMemMapFs(), "", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires --file")
}
