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

// Package engine defines the regular expression capability the functions are
// built on, and its implementations.
//
// Offsets are byte offsets into the subject. Group 0 is the whole match.
package engine

// Engine compiles patterns into programs.
type Engine interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Compile compiles pattern in UTF-8 mode. It returns a *CompileError for
	// an invalid pattern.
	Compile(pattern string) (Program, error)
	// Study runs the optimization pass over a program returned by Compile.
	// It returns a *StudyError on failure.
	Study(p Program) error
}

// Program is a compiled pattern. Programs are safe for concurrent Exec once
// Study has returned.
type Program interface {
	Pattern() string
	// CaptureCount returns the number of capturing groups, not counting
	// group 0.
	CaptureCount() (int, error)
	// Exec matches text starting at byte offset start and fills caps. On a
	// match it returns one more than the highest group that matched, or 0
	// if caps is too small to hold every matched group. A failed match
	// returns ErrNoMatch.
	Exec(text []byte, start int, caps Captures) (int, error)
}

// Span is the byte range [Start, End) of a group.
type Span struct {
	Start, End int
}

// Unset marks a group that did not take part in the match.
var Unset = Span{Start: -1, End: -1}

// Matched reports whether s is a group that took part in the match.
func (s Span) Matched() bool {
	return s.Start >= 0
}

// Empty reports whether s matched the empty string.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Captures holds one Span per group, indexed by group number.
type Captures []Span

// NewCaptures returns a Captures with room for group 0 and groups capturing
// groups.
func NewCaptures(groups int) Captures {
	caps := make(Captures, groups+1)
	caps.Reset()
	return caps
}

// Reset marks every group as unset.
func (c Captures) Reset() {
	for i := range c {
		c[i] = Unset
	}
}

// fill stores the groups of a match into caps. index returns the [start, end]
// pair of a group, or nil when the group did not match. It returns the exec
// count.
func (c Captures) fill(groups int, index func(int) []int) int {
	c.Reset()
	count := 0
	for i := 0; i < groups; i++ {
		idx := index(i)
		if idx == nil || idx[0] < 0 {
			continue
		}
		if i >= len(c) {
			return 0
		}
		c[i] = Span{Start: idx[0], End: idx[1]}
		count = i + 1
	}
	return count
}

// CopySubstring returns a copy of the text matched by group. count is the
// value returned by Exec. A group past count returns NoSubstring; a group
// below count that did not match yields an empty result. A substring longer
// than maxLen bytes returns NoMemory.
func CopySubstring(text []byte, caps Captures, count, group, maxLen int) ([]byte, error) {
	if group < 0 || group >= count || group >= len(caps) {
		return nil, &Error{Code: NoSubstring, Substring: group}
	}
	span := caps[group]
	if !span.Matched() {
		return []byte{}, nil
	}
	if span.End-span.Start > maxLen {
		return nil, &Error{Code: NoMemory}
	}
	return append([]byte{}, text[span.Start:span.End]...), nil
}
