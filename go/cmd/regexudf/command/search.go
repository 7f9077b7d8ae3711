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

	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/regex"
)

var (
	searchArgs = struct {
		Start int64
	}{}

	Search = &cobra.Command{
		Use:   "search <pattern> <text> [<text> ...]",
		Short: "Prints the 1-based position of the first match of pattern in every text, or 0.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  commandSearch,
	}
)

func commandSearch(cmd *cobra.Command, args []string) error {
	fn := regex.NewSearch(eng, cfg)
	pattern := sql.Null[string]{V: args[0], Valid: true}
	start := sql.Null[int64]{V: searchArgs.Start, Valid: true}
	defer fn.Call(udf.FinalCall, pattern, sql.Null[string]{}, start)

	var rows [][]any
	call := udf.FirstCall
	for _, text := range args[1:] {
		pos, err := fn.Call(call, pattern, sql.Null[string]{V: text, Valid: true}, start)
		if err != nil {
			return hostError(err)
		}
		rows = append(rows, []any{text, nullInt(pos)})
		call = udf.NormalCall
	}
	return printTable(cmd.OutOrStdout(), []any{"Text", "Position"}, rows)
}

func init() {
	Search.Flags().Int64Var(&searchArgs.Start, "start", 1, "1-based byte position to start searching at")
	Root.AddCommand(Search)
}
