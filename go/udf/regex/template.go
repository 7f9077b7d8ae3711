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
	"iter"
	"strconv"
	"strings"

	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
)

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokGroup
)

// token is a piece of a substitution template. pos is the byte offset of the
// character following the backslash of a group reference.
type token struct {
	kind  tokenKind
	lit   string
	group int
	pos   int
}

// lexTemplate scans a template left to right. `\\` is a literal backslash and
// `\` followed by decimal digits refers to a group. Any other use of a
// backslash ends the scan with an error. groups is the number of groups of the
// pattern, group 0 included; references beyond it are errors.
func lexTemplate(fn, tmpl string, groups int) iter.Seq2[token, error] {
	return func(yield func(token, error) bool) {
		for i := 0; i < len(tmpl); {
			j := strings.IndexByte(tmpl[i:], '\\')
			if j < 0 {
				yield(token{kind: tokLiteral, lit: tmpl[i:]}, nil)
				return
			}
			if j > 0 {
				if !yield(token{kind: tokLiteral, lit: tmpl[i : i+j]}, nil) {
					return
				}
			}
			i += j + 1

			switch {
			case i == len(tmpl):
				yield(token{}, udf.NewIncompleteTemplateError(fn, i))
				return
			case tmpl[i] == '\\':
				if !yield(token{kind: tokLiteral, lit: `\`}, nil) {
					return
				}
				i++
				continue
			case !isDigit(tmpl[i]):
				yield(token{}, udf.NewInvalidTemplateError(fn, rune(tmpl[i]), i))
				return
			}

			end := i
			for end < len(tmpl) && isDigit(tmpl[end]) {
				end++
			}
			group, err := strconv.Atoi(tmpl[i:end])
			if err != nil || group >= groups {
				yield(token{}, udf.NewInvalidGroupError(fn, i))
				return
			}
			if !yield(token{kind: tokGroup, group: group, pos: i}, nil) {
				return
			}
			i = end
		}
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// expand interprets tmpl against a match of text. count is the value Exec
// returned and groups the number of groups of the pattern, group 0 included.
// The result never exceeds maxLen bytes; a result that would is an error.
func expand(fn, tmpl string, text []byte, caps engine.Captures, count, groups, maxLen int) ([]byte, error) {
	out := make([]byte, 0, min(maxLen, len(tmpl)+len(text)))
	for tok, err := range lexTemplate(fn, tmpl, groups) {
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokLiteral:
			if len(out)+len(tok.lit) > maxLen {
				return nil, libraryError(fn, &engine.Error{Code: engine.NoMemory})
			}
			out = append(out, tok.lit...)
		case tokGroup:
			// Groups that exist but did not take part in the match add
			// nothing.
			if tok.group >= count {
				continue
			}
			sub, err := engine.CopySubstring(text, caps, count, tok.group, maxLen-len(out))
			if err != nil {
				return nil, libraryError(fn, err)
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}
