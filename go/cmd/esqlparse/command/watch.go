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
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchFile re-parses the --file input whenever it changes on disk, until
// the command's context is canceled. Each change renders a fresh tree to
// stdout.
func (pc *ParseCommand) watchFile(cmd *cobra.Command) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(pc.file); err != nil {
		return fmt.Errorf("failed to watch %s: %w", pc.file, err)
	}

	// Render once up front so the watcher starts from known output.
	if err := pc.renderFile(cmd); err != nil {
		return err
	}
	slog.Info("Watching for changes", "file", pc.file)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := pc.renderFile(cmd); err != nil {
				slog.Error("Failed to re-parse query file", "file", pc.file, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

func (pc *ParseCommand) renderFile(cmd *cobra.Command) error {
	query, err := pc.loadFileQuery()
	if err != nil {
		return err
	}
	return pc.parseAndRender(cmd.OutOrStdout(), query)
}
