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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/esql-go/esql/go/parser"
)

// Format selects the tree renderer.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTree Format = "tree"
)

// Config holds the renderer settings, bound from flags, the ESQLPARSE_*
// environment and an optional esqlparse.yaml config file, in that order of
// precedence.
type Config struct {
	Format        Format `mapstructure:"format"`
	IncludeErrors bool   `mapstructure:"include-errors"`
	FailOnError   bool   `mapstructure:"fail-on-error"`
}

// ParseCommand holds the state of one esqlparse invocation.
type ParseCommand struct {
	fs afero.Fs
	v  *viper.Viper
	lg Logger

	cfg   Config
	file  string
	watch bool
}

// GetRootCommand creates and returns the root command together with its
// backing state, so tests can swap the filesystem before running it.
func GetRootCommand() (*cobra.Command, *ParseCommand) {
	pc := &ParseCommand{
		fs: afero.NewOsFs(),
		v:  viper.New(),
	}

	root := &cobra.Command{
		Use:   "esqlparse [query]",
		Short: "Parse ES|QL queries into their syntax tree",
		Long: `esqlparse parses an ES|QL query and prints the syntax tree.

The query is taken from the command line, from --file, or from stdin when
neither is given. Malformed queries still produce a tree: syntax errors are
reported separately and the affected nodes carry an incomplete flag.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := pc.loadConfig(cmd); err != nil {
				return err
			}
			pc.lg.SetupLogging(pc.v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return pc.run(cmd, args)
		},
	}

	root.Flags().StringVarP(&pc.file, "file", "f", "", "read the query from this file instead of the command line")
	root.Flags().String("format", "json", "output format: json, yaml or tree")
	root.Flags().Bool("include-errors", false, "include syntax errors in the rendered output")
	root.Flags().Bool("fail-on-error", false, "exit non-zero when the query has syntax errors")
	root.Flags().BoolVar(&pc.watch, "watch", false, "re-parse the --file input whenever it changes")
	pc.lg.RegisterFlags(root.PersistentFlags())

	return root, pc
}

// loadConfig binds flags, environment and the optional config file into
// pc.cfg. Flags win over environment, environment wins over the file.
func (pc *ParseCommand) loadConfig(cmd *cobra.Command) error {
	pc.v.SetConfigName("esqlparse")
	pc.v.SetConfigType("yaml")
	pc.v.AddConfigPath(".")
	pc.v.SetFs(pc.fs)

	pc.v.SetEnvPrefix("ESQLPARSE")
	pc.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	pc.v.AutomaticEnv()

	if err := pc.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := pc.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind persistent flags: %w", err)
	}
	if err := pc.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(decodeFormat))
	if err := pc.v.Unmarshal(&pc.cfg, hook); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}

// decodeFormat normalizes and validates format values coming from flags,
// environment or the config file.
func decodeFormat(from, to reflect.Type, data any) (any, error) {
	var f Format
	if to != reflect.TypeOf(f) || from.Kind() != reflect.String {
		return data, nil
	}
	switch f = Format(strings.ToLower(data.(string))); f {
	case FormatJSON, FormatYAML, FormatTree:
		return f, nil
	}
	return nil, fmt.Errorf("unknown output format %q", data)
}

func (pc *ParseCommand) run(cmd *cobra.Command, args []string) error {
	if pc.watch {
		if pc.file == "" {
			return fmt.Errorf("--watch requires --file")
		}
		return pc.watchFile(cmd)
	}

	query, err := pc.readQuery(cmd, args)
	if err != nil {
		return err
	}
	return pc.parseAndRender(cmd.OutOrStdout(), query)
}

// readQuery resolves the query text from the argument, --file or stdin.
func (pc *ParseCommand) readQuery(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && pc.file != "" {
		return "", fmt.Errorf("cannot combine a query argument with --file")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if pc.file != "" {
		return pc.loadFileQuery()
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read query from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// loadFileQuery reads the --file input, dropping trailing newlines so the
// same file yields the same text and spans as a query passed on the command
// line. Watch mode re-reads through this as well.
func (pc *ParseCommand) loadFileQuery() (string, error) {
	data, err := afero.ReadFile(pc.fs, pc.file)
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func (pc *ParseCommand) parseAndRender(w io.Writer, query string) error {
	res := parser.Parse(query)
	if len(res.Errors) > 0 {
		slog.Debug("Query parsed with syntax errors", "errors", len(res.Errors))
	}

	if err := render(w, res, pc.cfg.Format, pc.cfg.IncludeErrors); err != nil {
		return err
	}
	if pc.cfg.FailOnError && len(res.Errors) > 0 {
		return fmt.Errorf("query has %d syntax error(s)", len(res.Errors))
	}
	return nil
}
