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
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/transform"

	"vitess.io/regexudf/go/log"
	"vitess.io/regexudf/go/udf/unicode"
)

var (
	replaceBadArgs = struct {
		Replacement string
		Stdin       bool
	}{}

	ReplaceBad = &cobra.Command{
		Use:   "replace-bad [<text> ...]",
		Short: "Replaces invalid UTF-8 sequences in every text.",
		Long: "Replaces invalid UTF-8 sequences in every text.\n\n" +
			"With --stdin the standard input is repaired as a stream and written to the standard output, " +
			"without the result length limit.",
		RunE: commandReplaceBad,
	}
)

func commandReplaceBad(cmd *cobra.Command, args []string) error {
	if replaceBadArgs.Stdin {
		if len(args) > 0 {
			return fmt.Errorf("replace-bad: --stdin does not take arguments")
		}
		r := transform.NewReader(cmd.InOrStdin(), unicode.NewReplacer([]byte(replaceBadArgs.Replacement)))
		n, err := io.Copy(cmd.OutOrStdout(), r)
		log.DebugS("repaired stream", "written", humanize.Bytes(uint64(n)))
		return err
	}

	repl := sql.Null[string]{V: replaceBadArgs.Replacement, Valid: true}
	var rows [][]any
	for _, text := range args {
		result, err := unicode.ReplaceBad(sql.Null[string]{V: text, Valid: true}, repl, int(cfg.MaxStrLen))
		if err != nil {
			return hostError(err)
		}
		rows = append(rows, []any{fmt.Sprintf("%q", text), nullString(result)})
	}
	return printTable(cmd.OutOrStdout(), []any{"Text", "Result"}, rows)
}

func init() {
	ReplaceBad.Flags().StringVar(&replaceBadArgs.Replacement, "replacement", "�", "text that replaces every invalid sequence")
	ReplaceBad.Flags().BoolVar(&replaceBadArgs.Stdin, "stdin", false, "repair the standard input as a stream")
	Root.AddCommand(ReplaceBad)
}
