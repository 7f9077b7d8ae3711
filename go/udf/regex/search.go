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

	"vitess.io/regexudf/go/hack"
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
)

// Search returns the 1-based position of the first match of a pattern in a
// text at or after a 1-based start position, or 0 if there is none.
type Search struct {
	patternCache
}

// NewSearch returns the scratchpad of a search invocation sequence.
func NewSearch(eng engine.Engine, cfg *udf.Config) *Search {
	return &Search{patternCache: newPatternCache(eng, cfg)}
}

// Call runs one phase of the search function. Any NULL argument gives a
// NULL result.
func (s *Search) Call(call udf.ScalarCall, pattern, text sql.Null[string], start sql.Null[int64]) (sql.Null[int64], error) {
	var result sql.Null[int64]
	if call == udf.FinalCall {
		s.release()
		return result, nil
	}
	if !pattern.Valid || !text.Valid || !start.Valid {
		return result, nil
	}

	prog, err := s.ensure(pattern.V)
	if err != nil {
		return result, fail("search", err)
	}
	caps, _, err := captures("search", prog)
	if err != nil {
		return result, fail("search", err)
	}
	_, err = prog.Exec(hack.StringBytes(text.V), int(start.V-1), caps)
	switch {
	case errors.Is(err, engine.ErrNoMatch):
		result.V, result.Valid = 0, true
	case err != nil:
		return result, fail("search", libraryError("search", err))
	default:
		result.V, result.Valid = int64(caps[0].Start+1), true
	}
	return result, nil
}
