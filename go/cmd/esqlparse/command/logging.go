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
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Logger owns the process-wide slog configuration. Logs go to stderr so
// stdout stays reserved for the rendered tree.
type Logger struct {
	once   sync.Once
	logger *slog.Logger
}

// RegisterFlags registers the logging flags. This must happen before the
// command parses its flags.
func (lg *Logger) RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "text", "Log format (json, text)")
}

// SetupLogging builds the logger from the bound configuration and installs
// it as the slog default. Repeated calls return the first logger.
func (lg *Logger) SetupLogging(v *viper.Viper) *slog.Logger {
	lg.once.Do(func() {
		var level slog.Level
		switch strings.ToLower(v.GetString("log-level")) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		switch strings.ToLower(v.GetString("log-format")) {
		case "json":
			handler = slog.NewJSONHandler(os.Stderr, opts)
		default:
			handler = slog.NewTextHandler(os.Stderr, opts)
		}

		lg.logger = slog.New(handler)
		slog.SetDefault(lg.logger)
	})
	return lg.logger
}
