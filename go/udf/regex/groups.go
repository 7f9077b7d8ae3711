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

package regex

import (
	"database/sql"
	"errors"
	"iter"

	"vitess.io/regexudf/go/hack"
	"vitess.io/regexudf/go/log"
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
)

type groupsState int

const (
	groupsOpening groupsState = iota
	groupsIterating
	groupsExhausted
	groupsClosed
)

// GroupRow is a row of the groups table function.
type GroupRow struct {
	// Group is the group number, 0 for the whole match.
	Group int
	// Position is the 1-based byte position of the group in the text.
	Position int
	Content  string
}

// Groups matches a pattern once against a text and returns a row for every
// group that took part in the match, in ascending group order.
type Groups struct {
	patternCache
	maxStrLen int

	text   []byte
	caps   engine.Captures
	count  int
	cursor int
	state  groupsState
}

// NewGroups returns the scratchpad of a groups invocation sequence.
func NewGroups(eng engine.Engine, cfg *udf.Config) *Groups {
	return &Groups{
		patternCache: newPatternCache(eng, cfg),
		maxStrLen:    int(cfg.MaxStrLen),
	}
}

// Call runs one phase of the groups function. Fetch returns udf.ErrNoData
// once every group has been returned. Close may be called after a failed
// open, and more than once.
func (g *Groups) Call(call udf.TableCall, pattern, text sql.Null[string]) (GroupRow, error) {
	switch call {
	case udf.OpenCall:
		if err := g.open(pattern, text); err != nil {
			g.close()
			return GroupRow{}, fail("groups", err)
		}
		return GroupRow{}, nil
	case udf.FetchCall:
		row, err := g.fetch()
		if err != nil && !errors.Is(err, udf.ErrNoData) {
			return row, fail("groups", err)
		}
		return row, err
	default:
		g.close()
		return GroupRow{}, nil
	}
}

func (g *Groups) open(pattern, text sql.Null[string]) error {
	g.close()
	g.state = groupsIterating
	if !pattern.Valid || !text.Valid {
		return nil
	}

	// The pattern cannot change during a sequence, so there is nothing to
	// compare it with.
	prog, err := g.ensure(pattern.V)
	if err != nil {
		return err
	}
	caps, _, err := captures("groups", prog)
	if err != nil {
		return err
	}
	g.text = hack.StringBytes(text.V)
	count, err := prog.Exec(g.text, 0, caps)
	switch {
	case errors.Is(err, engine.ErrNoMatch):
		return nil
	case err != nil:
		return libraryError("groups", err)
	case count == 0:
		return udf.NewTooManyGroupsError("groups")
	}
	g.caps = caps
	g.count = count
	log.DebugS("groups opened", "pattern", pattern.V, "count", count)
	return nil
}

func (g *Groups) fetch() (GroupRow, error) {
	if g.state != groupsIterating {
		return GroupRow{}, udf.ErrNoData
	}
	for g.cursor < g.count && !g.caps[g.cursor].Matched() {
		g.cursor++
	}
	if g.cursor >= g.count {
		g.state = groupsExhausted
		return GroupRow{}, udf.ErrNoData
	}

	content, err := engine.CopySubstring(g.text, g.caps, g.count, g.cursor, g.maxStrLen)
	if err != nil {
		return GroupRow{}, libraryError("groups", err)
	}
	row := GroupRow{
		Group:    g.cursor,
		Position: g.caps[g.cursor].Start + 1,
		Content:  hack.String(content),
	}
	g.cursor++
	udf.Rows.WithLabelValues("groups").Inc()
	return row, nil
}

// close releases the program and the match.
func (g *Groups) close() {
	g.release()
	g.text = nil
	g.caps = nil
	g.count = 0
	g.cursor = 0
	g.state = groupsClosed
}

// Rows runs a whole invocation sequence. The sequence is closed when the
// iteration ends, including when the caller stops early.
func (g *Groups) Rows(pattern, text sql.Null[string]) iter.Seq2[GroupRow, error] {
	return func(yield func(GroupRow, error) bool) {
		defer g.Call(udf.CloseCall, pattern, text)
		if _, err := g.Call(udf.OpenCall, pattern, text); err != nil {
			yield(GroupRow{}, err)
			return
		}
		for {
			row, err := g.Call(udf.FetchCall, pattern, text)
			if errors.Is(err, udf.ErrNoData) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}
