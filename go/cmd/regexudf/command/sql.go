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

	"github.com/spf13/cobra"

	"vitess.io/regexudf/go/udf/sqlhost"
)

var SQL = &cobra.Command{
	Use:   "sql <query>",
	Short: "Runs a query on an in-memory SQLite database with the functions registered.",
	Long: "Runs a query on an in-memory SQLite database on which regex_search, regex_sub and replace_bad " +
		"are registered, and prints its rows.",
	Args: cobra.ExactArgs(1),
	RunE: commandSQL,
}

func commandSQL(cmd *cobra.Command, args []string) error {
	fns, err := sqlhost.Register(eng, cfg)
	if err != nil {
		return err
	}
	defer fns.Close()

	db, err := sql.Open(sqlhost.DriverName, ":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(args[0])
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	header := make([]any, len(cols))
	for i, col := range cols {
		header[i] = col
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		row := make([]any, len(cols))
		for i, v := range values {
			row[i] = sqlText(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return printTable(cmd.OutOrStdout(), header, out)
}

func sqlText(v any) string {
	switch v := v.(type) {
	case nil:
		return nullText
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func init() {
	Root.AddCommand(SQL)
}
