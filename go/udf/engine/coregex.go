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
	"errors"
	"regexp/syntax"
	"sync/atomic"
	"unicode/utf8"

	"github.com/coregx/coregex/meta"

	"vitess.io/regexudf/go/hack"
	"vitess.io/regexudf/go/udf/utf8dfa"
)

// CoregexName is the name of the coregex backend.
const CoregexName = "coregex"

type coregexEngine struct {
	maxDFAStates uint32
}

var _ Engine = (*coregexEngine)(nil)

// NewCoregex returns the default engine, built on github.com/coregx/coregex.
// Compile produces an NFA-only program; Study rebuilds it with the lazy DFA
// (bounded by maxDFAStates states), literal prefilters and the ASCII fast
// path.
func NewCoregex(maxDFAStates uint32) Engine {
	return &coregexEngine{maxDFAStates: maxDFAStates}
}

func (e *coregexEngine) Name() string {
	return CoregexName
}

// baseConfig is the smallest configuration that yields a usable program.
func baseConfig() meta.Config {
	cfg := meta.DefaultConfig()
	cfg.EnableDFA = false
	cfg.EnablePrefilter = false
	cfg.EnableASCIIOptimization = false
	return cfg
}

func parse(pattern string) (*syntax.Regexp, error) {
	if offset, ok := utf8dfa.Valid(hack.StringBytes(pattern)); !ok {
		return nil, &CompileError{Pattern: pattern, Message: "invalid UTF-8 string", Offset: offset}
	}
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		var serr *syntax.Error
		if errors.As(err, &serr) {
			return nil, newCompileError(pattern, serr.Code.String(), serr.Expr, err)
		}
		return nil, newCompileError(pattern, err.Error(), "", err)
	}
	return re, nil
}

func (e *coregexEngine) Compile(pattern string) (Program, error) {
	re, err := parse(pattern)
	if err != nil {
		return nil, err
	}
	eng, err := meta.CompileRegexp(re, baseConfig())
	if err != nil {
		return nil, newCompileError(pattern, err.Error(), "", err)
	}
	p := &coregexProgram{pattern: pattern}
	p.eng.Store(eng)
	return p, nil
}

func (e *coregexEngine) Study(prog Program) error {
	p, ok := prog.(*coregexProgram)
	if !ok {
		return &StudyError{Pattern: prog.Pattern(), Message: "program was not compiled by the coregex engine"}
	}
	cfg := meta.DefaultConfig()
	cfg.MaxDFAStates = e.maxDFAStates
	if err := cfg.Validate(); err != nil {
		return &StudyError{Pattern: p.pattern, Message: err.Error(), Err: err}
	}
	re, err := parse(p.pattern)
	if err != nil {
		return &StudyError{Pattern: p.pattern, Message: err.Error(), Err: err}
	}
	eng, err := meta.CompileRegexp(re, cfg)
	if err != nil {
		return &StudyError{Pattern: p.pattern, Message: err.Error(), Err: err}
	}
	p.eng.Store(eng)
	return nil
}

type coregexProgram struct {
	pattern string
	eng     atomic.Pointer[meta.Engine]
}

func (p *coregexProgram) Pattern() string {
	return p.pattern
}

func (p *coregexProgram) CaptureCount() (int, error) {
	return p.eng.Load().NumCaptures() - 1, nil
}

func (p *coregexProgram) Exec(text []byte, start int, caps Captures) (int, error) {
	if err := checkSubject(text, start); err != nil {
		return 0, err
	}
	m := p.eng.Load().FindSubmatchAt(text, start)
	if m == nil {
		return 0, ErrNoMatch
	}
	return caps.fill(m.NumCaptures(), m.GroupIndex), nil
}

// checkSubject validates the subject and start offset of an Exec call.
func checkSubject(text []byte, start int) error {
	if offset, ok := utf8dfa.Valid(text); !ok {
		return &Error{Code: BadUTF8, Offset: offset}
	}
	if start < 0 || start > len(text) {
		return &Error{Code: BadOffset}
	}
	if start < len(text) && !utf8.RuneStart(text[start]) {
		return &Error{Code: BadUTF8Offset}
	}
	return nil
}
