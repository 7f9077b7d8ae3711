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

package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"vitess.io/regexudf/go/hack"
	"vitess.io/regexudf/go/udf/utf8dfa"
)

// Regexp2Name is the name of the regexp2 backend.
const Regexp2Name = "regexp2"

type regexp2Engine struct {
	timeout time.Duration
}

var _ Engine = (*regexp2Engine)(nil)

// NewRegexp2 returns a backtracking engine built on github.com/dlclark/regexp2.
// It supports lookaround and backreferences. Study bounds every match of the
// program to timeout; a match that runs longer fails with MatchLimit.
func NewRegexp2(timeout time.Duration) Engine {
	return &regexp2Engine{timeout: timeout}
}

func (e *regexp2Engine) Name() string {
	return Regexp2Name
}

func (e *regexp2Engine) Compile(pattern string) (Program, error) {
	if offset, ok := utf8dfa.Valid(hack.StringBytes(pattern)); !ok {
		return nil, &CompileError{Pattern: pattern, Message: "invalid UTF-8 string", Offset: offset}
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		// regexp2 does not report where in the pattern parsing failed.
		return nil, newCompileError(pattern, err.Error(), "", err)
	}
	order, err := groupOrder(pattern, re)
	if err != nil {
		return nil, err
	}
	return &regexp2Program{pattern: pattern, re: re, order: order}, nil
}

func (e *regexp2Engine) Study(prog Program) error {
	p, ok := prog.(*regexp2Program)
	if !ok {
		return &StudyError{Pattern: prog.Pattern(), Message: "program was not compiled by the regexp2 engine"}
	}
	if e.timeout <= 0 {
		return &StudyError{Pattern: p.pattern, Message: fmt.Sprintf("invalid match timeout %v", e.timeout)}
	}
	p.re.MatchTimeout = e.timeout
	return nil
}

type regexp2Program struct {
	pattern string
	re      *regexp2.Regexp
	// order maps a group numbered left to right by its opening parenthesis
	// to the number regexp2 gave it. order[0] is 0.
	order []int
}

func (p *regexp2Program) Pattern() string {
	return p.pattern
}

func (p *regexp2Program) CaptureCount() (int, error) {
	return len(p.order) - 1, nil
}

func (p *regexp2Program) Exec(text []byte, start int, caps Captures) (int, error) {
	if err := checkSubject(text, start); err != nil {
		return 0, err
	}

	runes, offsets := decodeRunes(text)
	at := sort.SearchInts(offsets, start)
	m, err := p.re.FindRunesMatchStartingAt(runes, at)
	if err != nil {
		// The only runtime failure of regexp2 is the match timeout.
		return 0, &Error{Code: MatchLimit, Err: err}
	}
	if m == nil {
		return 0, ErrNoMatch
	}

	return caps.fill(len(p.order), func(i int) []int {
		g := m.GroupByNumber(p.order[i])
		if g == nil || len(g.Captures) == 0 {
			return nil
		}
		return []int{offsets[g.Index], offsets[g.Index+g.Length]}
	}), nil
}

// groupOrder numbers the capturing groups of pattern left to right by their
// opening parenthesis, as the coregex backend does, and maps each to the
// number regexp2 assigned. regexp2 numbers unnamed groups before named ones,
// so the two orders differ whenever a named group precedes an unnamed one.
// Explicitly numbered groups and patterns whose groups cannot be told apart
// by scanning are rejected.
func groupOrder(pattern string, re *regexp2.Regexp) ([]int, error) {
	order := []int{0}
	unnamed := 0
	skip := false
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			i = skipClass(pattern, i)
		case '(':
			open := i
			if skip {
				skip = false
				continue
			}
			if !strings.HasPrefix(pattern[i+1:], "?") {
				unnamed++
				order = append(order, unnamed)
				continue
			}
			rest := pattern[i+2:]
			switch {
			case strings.HasPrefix(rest, "#"):
				if end := strings.IndexByte(rest, ')'); end >= 0 {
					i += 2 + end
				}
				continue
			case strings.HasPrefix(rest, "("):
				// The condition of (?(...)yes|no) does not capture.
				skip = true
				continue
			case strings.HasPrefix(rest, "<=") || strings.HasPrefix(rest, "<!"):
				continue
			case !strings.HasPrefix(rest, "<") && !strings.HasPrefix(rest, "'"):
				continue
			}
			end := strings.IndexAny(rest[1:], ">'")
			if end < 0 {
				continue
			}
			name, _, _ := strings.Cut(rest[1:1+end], "-")
			if name == "" {
				continue
			}
			if _, err := strconv.Atoi(name); err == nil {
				return nil, &CompileError{Pattern: pattern, Message: "explicitly numbered groups are not supported", Offset: open}
			}
			order = append(order, re.GroupNumberFromName(name))
		}
	}
	if len(order) != len(re.GetGroupNumbers()) {
		return nil, &CompileError{Pattern: pattern, Message: "ambiguous capturing group numbering"}
	}
	seen := make(map[int]bool, len(order))
	for _, n := range order {
		if n < 0 || seen[n] {
			return nil, &CompileError{Pattern: pattern, Message: "ambiguous capturing group numbering"}
		}
		seen[n] = true
	}
	return order, nil
}

// skipClass returns the index of the bracket closing the character class that
// opens at pattern[i]. A leading ']' is a literal and "-[" opens a subtracted
// class.
func skipClass(pattern string, i int) int {
	depth := 0
	for j := i; j < len(pattern); j++ {
		switch c := pattern[j]; {
		case c == '\\':
			j++
		case c == '[' && (j == i || pattern[j-1] == '-'):
			depth++
			if k := j + 1; k < len(pattern) && pattern[k] == '^' {
				j = k
			}
			if k := j + 1; k < len(pattern) && pattern[k] == ']' {
				j = k
			}
		case c == ']':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(pattern)
}

// decodeRunes decodes valid UTF-8 text. offsets[i] is the byte offset of
// runes[i], and offsets[len(runes)] is len(text).
func decodeRunes(text []byte) ([]rune, []int) {
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRune(text[i:])
		runes = append(runes, r)
		offsets = append(offsets, i)
		i += size
	}
	return runes, append(offsets, len(text))
}
