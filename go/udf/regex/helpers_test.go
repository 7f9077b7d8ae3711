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
	"testing"

	"github.com/stretchr/testify/require"

	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
)

func str(s string) sql.Null[string] {
	return sql.Null[string]{V: s, Valid: true}
}

func num(n int64) sql.Null[int64] {
	return sql.Null[int64]{V: n, Valid: true}
}

var null sql.Null[string]

func testConfig() *udf.Config {
	return udf.NewDefaultConfig()
}

// countingEngine counts the compiles of the engine it wraps.
type countingEngine struct {
	engine.Engine
	compiled []string
}

func newCountingEngine() *countingEngine {
	return &countingEngine{Engine: engine.NewCoregex(10000)}
}

func (c *countingEngine) Compile(pattern string) (engine.Program, error) {
	c.compiled = append(c.compiled, pattern)
	return c.Engine.Compile(pattern)
}

// stubEngine compiles every pattern to a program whose Exec returns fixed
// results.
type stubEngine struct {
	groups int
	count  int
	caps   engine.Captures
	err    error
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Compile(pattern string) (engine.Program, error) {
	return &stubProgram{stubEngine: s, pattern: pattern}, nil
}

func (s *stubEngine) Study(engine.Program) error { return nil }

type stubProgram struct {
	*stubEngine
	pattern string
	execs   int
}

func (p *stubProgram) Pattern() string { return p.pattern }

func (p *stubProgram) CaptureCount() (int, error) { return p.groups, nil }

func (p *stubProgram) Exec(text []byte, start int, caps engine.Captures) (int, error) {
	p.execs++
	if p.err != nil {
		return 0, p.err
	}
	copy(caps, p.caps)
	return p.count, nil
}

func requireSQLError(t *testing.T, err error, state, message string) *udf.SQLError {
	t.Helper()
	var se *udf.SQLError
	require.ErrorAs(t, err, &se)
	require.Equal(t, state, se.State)
	require.Equal(t, message, se.Message)
	return se
}
