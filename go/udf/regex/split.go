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
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
)

// SplitRow is a row of the split table function.
type SplitRow struct {
	// Element numbers the pieces of content from 1. A separator has the
	// number of the content that precedes it.
	Element   int
	Separator bool
	// Position is the 1-based byte position of Content in the text.
	Position int
	Content  string
}

// Split cuts a text at every match of a pattern. It returns the pieces of
// content between matches interleaved with the separators themselves.
type Split struct {
	patternCache
	maxStrLen int

	text []byte
	caps engine.Captures
	// pos is where the next content turn scans from.
	pos int
	// seq counts fetched rows. Even values are content turns and odd values
	// separator turns.
	seq  int
	sep  engine.Span
	done bool
}

// NewSplit returns the scratchpad of a split invocation sequence.
func NewSplit(eng engine.Engine, cfg *udf.Config) *Split {
	return &Split{
		patternCache: newPatternCache(eng, cfg),
		maxStrLen:    int(cfg.MaxStrLen),
	}
}

// Call runs one phase of the split function. Fetch returns udf.ErrNoData
// once the text is exhausted. A pattern that matches the empty string is an
// error, as splitting on it would make no progress.
func (s *Split) Call(call udf.TableCall, pattern, text sql.Null[string]) (SplitRow, error) {
	switch call {
	case udf.OpenCall:
		if err := s.open(pattern, text); err != nil {
			s.close()
			return SplitRow{}, fail("split", err)
		}
		return SplitRow{}, nil
	case udf.FetchCall:
		row, err := s.fetch()
		if err != nil && !errors.Is(err, udf.ErrNoData) {
			return row, fail("split", err)
		}
		return row, err
	default:
		s.close()
		return SplitRow{}, nil
	}
}

func (s *Split) open(pattern, text sql.Null[string]) error {
	s.close()
	s.done = false
	if !pattern.Valid || !text.Valid {
		s.done = true
		return nil
	}
	prog, err := s.ensure(pattern.V)
	if err != nil {
		return err
	}
	caps, _, err := captures("split", prog)
	if err != nil {
		return err
	}
	s.caps = caps
	s.text = hack.StringBytes(text.V)
	return nil
}

func (s *Split) fetch() (SplitRow, error) {
	if s.done || s.prog == nil {
		return SplitRow{}, udf.ErrNoData
	}

	row := SplitRow{Element: s.seq/2 + 1, Separator: s.seq%2 == 1}
	if s.pos >= len(s.text) {
		s.done = true
		return SplitRow{}, udf.ErrNoData
	}
	var content []byte
	pos, sep := s.pos, s.sep
	if !row.Separator {
		_, err := s.prog.Exec(s.text, s.pos, s.caps)
		switch {
		case errors.Is(err, engine.ErrNoMatch):
			content = s.text[s.pos:]
			sep = engine.Unset
			pos = len(s.text)
		case err != nil:
			return SplitRow{}, libraryError("split", err)
		case s.caps[0].Empty():
			return SplitRow{}, udf.NewEmptySplitError()
		default:
			content = s.text[s.pos:s.caps[0].Start]
			sep = s.caps[0]
		}
		row.Position = s.pos + 1
	} else {
		content = s.text[s.sep.Start:s.sep.End]
		row.Position = s.sep.Start + 1
		pos = s.sep.End
	}

	// The scan state only moves once the row is known to fit, so a failed
	// fetch can be retried.
	if len(content) > s.maxStrLen {
		return SplitRow{}, libraryError("split", &engine.Error{Code: engine.NoMemory})
	}
	s.pos, s.sep = pos, sep
	row.Content = string(content)
	s.seq++
	udf.Rows.WithLabelValues("split").Inc()
	return row, nil
}

// close releases the program and the scan state.
func (s *Split) close() {
	s.release()
	s.text = nil
	s.caps = nil
	s.pos = 0
	s.seq = 0
	s.sep = engine.Unset
	s.done = true
}

// Rows runs a whole invocation sequence. The sequence is closed when the
// iteration ends, including when the caller stops early.
func (s *Split) Rows(pattern, text sql.Null[string]) iter.Seq2[SplitRow, error] {
	return func(yield func(SplitRow, error) bool) {
		defer s.Call(udf.CloseCall, pattern, text)
		if _, err := s.Call(udf.OpenCall, pattern, text); err != nil {
			yield(SplitRow{}, err)
			return
		}
		for {
			row, err := s.Call(udf.FetchCall, pattern, text)
			if errors.Is(err, udf.ErrNoData) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}
