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

// Substitute matches a pattern against a text and returns a template expanded
// with the groups of the match. It returns NULL when the pattern does not
// match.
type Substitute struct {
	patternCache
	maxStrLen int
}

// NewSubstitute returns the scratchpad of a substitute invocation sequence.
func NewSubstitute(eng engine.Engine, cfg *udf.Config) *Substitute {
	return &Substitute{
		patternCache: newPatternCache(eng, cfg),
		maxStrLen:    int(cfg.MaxStrLen),
	}
}

// Call runs one phase of the substitute function.
func (s *Substitute) Call(call udf.ScalarCall, pattern, template, text sql.Null[string], start sql.Null[int64]) (sql.Null[string], error) {
	var result sql.Null[string]
	if call == udf.FinalCall {
		s.release()
		return result, nil
	}
	if !pattern.Valid || !template.Valid || !text.Valid || !start.Valid {
		return result, nil
	}

	prog, err := s.ensure(pattern.V)
	if err != nil {
		return result, fail("sub", err)
	}
	caps, groups, err := captures("sub", prog)
	if err != nil {
		return result, fail("sub", err)
	}
	subject := hack.StringBytes(text.V)
	count, err := prog.Exec(subject, int(start.V-1), caps)
	switch {
	case errors.Is(err, engine.ErrNoMatch):
		return result, nil
	case err != nil:
		return result, fail("sub", libraryError("sub", err))
	case count == 0:
		return result, fail("sub", udf.NewTooManyGroupsError("sub"))
	}

	out, err := expand("sub", template.V, subject, caps, count, groups+1, s.maxStrLen)
	if err != nil {
		return result, fail("sub", err)
	}
	result.V, result.Valid = hack.String(out), true
	return result, nil
}
