/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package command

import (
	"database/sql"

	"github.com/spf13/cobra"

	"vitess.io/regexudf/go/udf/regex"
)

var Split = &cobra.Command{
	Use:   "split <pattern> <text>",
	Short: "Splits text at every match of pattern.",
	Long: "Splits text at every match of pattern.\n\n" +
		"The rows alternate between content and the separator that follows it. " +
		"A pattern that can match the empty string is an error.",
	Args: cobra.ExactArgs(2),
	RunE: commandSplit,
}

func commandSplit(cmd *cobra.Command, args []string) error {
	fn := regex.NewSplit(eng, cfg)
	var rows [][]any
	for row, err := range fn.Rows(sql.Null[string]{V: args[0], Valid: true}, sql.Null[string]{V: args[1], Valid: true}) {
		if err != nil {
			return hostError(err)
		}
		rows = append(rows, []any{row.Element, row.Separator, row.Position, row.Content})
	}
	return printTable(cmd.OutOrStdout(), []any{"Element", "Separator", "Position", "Content"}, rows)
}

func init() {
	Root.AddCommand(Split)
}
