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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/esql-go/esql/go/parser"
	"github.com/esql-go/esql/go/parser/ast"
)

// output is the serialized shape of a parse result. Errors are omitted
// unless requested, since editors usually consume them out of band.
type output struct {
	Query  *ast.Query   `json:"query" yaml:"query"`
	Errors []*ast.Error `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func render(w io.Writer, res *parser.Result, format Format, includeErrors bool) error {
	out := output{Query: res.Root}
	if includeErrors {
		out.Errors = res.Errors
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode tree as JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		// Route through the JSON encoders so the wire shape (type tags,
		// NaN handling) is identical across formats.
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to decode intermediate tree: %w", err)
		}
		encoded, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to encode tree as YAML: %w", err)
		}
		_, err = w.Write(encoded)
		return err
	case FormatTree:
		writeTree(w, res.Root, 0)
		if includeErrors {
			for _, e := range res.Errors {
				fmt.Fprintf(w, "! %s [%d..%d]\n", e.Text, e.Location.Min, e.Location.Max)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeTree prints one node per line, indented by depth.
func writeTree(w io.Writer, node ast.Node, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	label := node.NodeType().String()
	if name := node.NodeName(); name != "" {
		label += " " + name
	}
	span := node.Span()
	line := fmt.Sprintf("%s%s [%d..%d]", indent, label, span.Min, span.Max)
	if node.IsIncomplete() {
		line += " (incomplete)"
	}
	fmt.Fprintln(w, line)

	for _, child := range ast.Children(node) {
		writeTree(w, child, depth+1)
	}
}
