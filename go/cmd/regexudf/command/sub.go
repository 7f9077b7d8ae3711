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
	subArgs = struct {
		Start int64
	}{}

	Sub = &cobra.Command{
		Use:   "sub <pattern> <template> <text> [<text> ...]",
		Short: "Expands template with the groups of the first match of pattern in every text.",
		Long: "Expands template with the groups of the first match of pattern in every text.\n\n" +
			"In the template `\\N` is replaced by group N and `\\\\` by a backslash. " +
			"A text the pattern does not match gives NULL.",
		Args: cobra.MinimumNArgs(3),
		RunE: commandSub,
	}
)

func commandSub(cmd *cobra.Command, args []string) error {
	fn := regex.NewSubstitute(eng, cfg)
	pattern := sql.Null[string]{V: args[0], Valid: true}
	template := sql.Null[string]{V: args[1], Valid: true}
	start := sql.Null[int64]{V: subArgs.Start, Valid: true}
	defer fn.Call(udf.FinalCall, pattern, template, sql.Null[string]{}, start)

	var rows [][]any
	call := udf.FirstCall
	for _, text := range args[2:] {
		result, err := fn.Call(call, pattern, template, sql.Null[string]{V: text, Valid: true}, start)
		if err != nil {
			return hostError(err)
		}
		rows = append(rows, []any{text, nullString(result)})
		call = udf.NormalCall
	}
	return printTable(cmd.OutOrStdout(), []any{"Text", "Result"}, rows)
}

func init() {
	Sub.Flags().Int64Var(&subArgs.Start, "start", 1, "1-based byte position to start matching at")
	Root.AddCommand(Sub)
}
