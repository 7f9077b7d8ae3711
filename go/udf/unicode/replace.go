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

// Package unicode implements the UTF-8 repair functions.
package unicode

import (
	"database/sql"

	"golang.org/x/text/transform"

	"vitess.io/regexudf/go/hack"
	"vitess.io/regexudf/go/log"
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/utf8dfa"
)

// ReplaceBad returns source with every invalid UTF-8 sequence replaced by
// repl. A truncated sequence at the end of source is replaced too. A result
// longer than maxLen bytes is an error. Any NULL argument gives NULL.
func ReplaceBad(source, repl sql.Null[string], maxLen int) (sql.Null[string], error) {
	var result sql.Null[string]
	if !source.Valid || !repl.Valid {
		return result, nil
	}

	s := source.V
	out := make([]byte, 0, min(len(s), maxLen))
	flush := func(b string) bool {
		if len(out)+len(b) > maxLen {
			return false
		}
		out = append(out, b...)
		return true
	}

	var (
		state = utf8dfa.Accept
		codep rune
		start int
	)
	for i := 0; i < len(s); i++ {
		prev := state
		switch utf8dfa.Decode(&state, &codep, s[i]) {
		case utf8dfa.Accept:
			if !flush(s[start : i+1]) {
				return result, truncated()
			}
			start = i + 1
		case utf8dfa.Reject:
			if !flush(repl.V) {
				return result, truncated()
			}
			state = utf8dfa.Accept
			// The byte that broke a sequence may start the next one.
			if prev != utf8dfa.Accept {
				i--
			}
			start = i + 1
		}
	}
	if state != utf8dfa.Accept && !flush(repl.V) {
		return result, truncated()
	}

	result.V, result.Valid = hack.String(out), true
	return result, nil
}

func truncated() error {
	err := udf.NewTruncatedError("replace_bad")
	log.DebugS("function failed", "function", "replace_bad", "error", err)
	return udf.CountError(err)
}

type replacer struct {
	transform.NopResetter
	repl []byte
}

// NewReplacer returns a Transformer that performs the repair of ReplaceBad on
// a stream. It does not bound its output.
func NewReplacer(repl []byte) transform.Transformer {
	return &replacer{repl: repl}
}

func (r *replacer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		n, valid := sequence(src[nSrc:])
		if n == 0 {
			if !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			n, valid = len(src)-nSrc, false
		}
		out := src[nSrc : nSrc+n]
		if !valid {
			out = r.repl
		}
		if nDst+len(out) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], out)
		nSrc += n
	}
	return nDst, nSrc, nil
}

// sequence decodes the sequence at the start of b. It returns the number of
// bytes it spans and whether it is valid. An invalid sequence does not
// include a byte that may start the next one. n is 0 when b ends inside a
// sequence.
func sequence(b []byte) (n int, valid bool) {
	var (
		state = utf8dfa.Accept
		codep rune
	)
	for i, c := range b {
		prev := state
		switch utf8dfa.Decode(&state, &codep, c) {
		case utf8dfa.Accept:
			return i + 1, true
		case utf8dfa.Reject:
			if prev != utf8dfa.Accept {
				return i, false
			}
			return i + 1, false
		}
	}
	return 0, false
}
