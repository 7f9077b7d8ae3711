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
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

const nullText = "NULL"

func nullString(v sql.Null[string]) string {
	if !v.Valid {
		return nullText
	}
	return v.V
}

func nullInt(v sql.Null[int64]) string {
	if !v.Valid {
		return nullText
	}
	return strconv.FormatInt(v.V, 10)
}

// printTable writes rows under header as a table.
func printTable(w io.Writer, header []any, rows [][]any) error {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}
