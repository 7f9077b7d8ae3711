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


// Package sqlhost registers the scalar functions with the SQLite driver
// modernc.org/sqlite, so that SQL statements on any connection it opens can
// call them.
package sqlhost

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"modernc.org/sqlite"

	"vitess.io/regexudf/go/log"
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
	"vitess.io/regexudf/go/udf/regex"
	"vitess.io/regexudf/go/udf/unicode"
)

// DriverName is the database/sql driver the functions are registered with.
const DriverName = "sqlite"

// Names of the SQL functions.
const (
	SearchName     = "regex_search"
	SubName        = "regex_sub"
	ReplaceBadName = "replace_bad"
)

// defaultReplacement replaces invalid sequences when replace_bad is called
// with one argument.
const defaultReplacement = "�"

var (
	registerOnce sync.Once
	registerErr  error
	active       atomic.Pointer[Functions]
)

// Functions holds the scratchpads the registered functions run on. A
// scratchpad is taken for the duration of one call, so concurrent statements
// never share one, and returned afterwards so that the next row reuses its
// compiled pattern.
type Functions struct {
	cfg      *udf.Config
	searches pool[*regex.Search]
	subs     pool[*regex.Substitute]
}

// Register makes the functions available to SQLite connections, running on
// eng with cfg. The driver learns the functions once per process; later
// calls switch them to the new engine and configuration and finalize the
// scratchpads of the previous Functions.
func Register(eng engine.Engine, cfg *udf.Config) (*Functions, error) {
	registerOnce.Do(func() {
		registerErr = register()
	})
	if registerErr != nil {
		return nil, registerErr
	}
	fns := &Functions{
		cfg:      cfg,
		searches: pool[*regex.Search]{create: func() *regex.Search { return regex.NewSearch(eng, cfg) }},
		subs:     pool[*regex.Substitute]{create: func() *regex.Substitute { return regex.NewSubstitute(eng, cfg) }},
	}
	if old := active.Swap(fns); old != nil {
		log.WarnS("replacing registered sql functions", "engine", eng.Name())
		old.Close()
	}
	log.InfoS("registered sql functions", "driver", DriverName, "engine", eng.Name())
	return fns, nil
}

func register() error {
	fns := map[string]func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error){
		SearchName:     search,
		SubName:        sub,
		ReplaceBadName: replaceBad,
	}
	for name, fn := range fns {
		if err := sqlite.RegisterDeterministicScalarFunction(name, -1, fn); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
	}
	return nil
}

// Close runs the final call on every idle scratchpad.
func (f *Functions) Close() {
	for _, sp := range f.searches.drain() {
		sp.fn.Call(udf.FinalCall, sql.Null[string]{}, sql.Null[string]{}, sql.Null[int64]{})
	}
	for _, sp := range f.subs.drain() {
		sp.fn.Call(udf.FinalCall, sql.Null[string]{}, sql.Null[string]{}, sql.Null[string]{}, sql.Null[int64]{})
	}
}

func current(name string) (*Functions, error) {
	fns := active.Load()
	if fns == nil {
		return nil, fmt.Errorf("%s: functions are not registered", name)
	}
	return fns, nil
}

// scratchpad is a function value and the phase of its next call.
type scratchpad[F any] struct {
	fn   F
	call udf.ScalarCall
}

type pool[F any] struct {
	create func() F

	mu   sync.Mutex
	free []*scratchpad[F]
}

func (p *pool[F]) get() *scratchpad[F] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		sp := p.free[n-1]
		p.free = p.free[:n-1]
		return sp
	}
	return &scratchpad[F]{fn: p.create(), call: udf.FirstCall}
}

func (p *pool[F]) put(sp *scratchpad[F]) {
	sp.call = udf.NormalCall
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, sp)
}

func (p *pool[F]) drain() []*scratchpad[F] {
	p.mu.Lock()
	defer p.mu.Unlock()
	free := p.free
	p.free = nil
	return free
}

func checkArgs(name string, args []driver.Value, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%s: expected %d to %d arguments, got %d", name, lo, hi, len(args))
	}
	return nil
}

// regex_search(pattern, text [, start])
func search(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	fns, err := current(SearchName)
	if err != nil {
		return nil, err
	}
	if err := checkArgs(SearchName, args, 2, 3); err != nil {
		return nil, err
	}
	pattern, text, start, err := searchArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SearchName, err)
	}

	sp := fns.searches.get()
	defer fns.searches.put(sp)
	pos, err := sp.fn.Call(sp.call, pattern, text, start)
	if err != nil {
		return nil, udf.HostError(err, fns.cfg.MsgTextLen)
	}
	if !pos.Valid {
		return nil, nil
	}
	return pos.V, nil
}

func searchArgs(args []driver.Value) (pattern, text sql.Null[string], start sql.Null[int64], err error) {
	if pattern, err = textArg(args[0]); err != nil {
		return
	}
	if text, err = textArg(args[1]); err != nil {
		return
	}
	start = sql.Null[int64]{V: 1, Valid: true}
	if len(args) > 2 {
		start, err = intArg(args[2])
	}
	return
}

// regex_sub(pattern, template, text [, start])
func sub(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	fns, err := current(SubName)
	if err != nil {
		return nil, err
	}
	if err := checkArgs(SubName, args, 3, 4); err != nil {
		return nil, err
	}
	tmpl, err := textArg(args[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SubName, err)
	}
	pattern, text, start, err := searchArgs([]driver.Value{args[0], args[2]})
	if err == nil && len(args) > 3 {
		start, err = intArg(args[3])
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SubName, err)
	}

	sp := fns.subs.get()
	defer fns.subs.put(sp)
	result, err := sp.fn.Call(sp.call, pattern, tmpl, text, start)
	if err != nil {
		return nil, udf.HostError(err, fns.cfg.MsgTextLen)
	}
	if !result.Valid {
		return nil, nil
	}
	return result.V, nil
}

// replace_bad(text [, replacement])
func replaceBad(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	fns, err := current(ReplaceBadName)
	if err != nil {
		return nil, err
	}
	if err := checkArgs(ReplaceBadName, args, 1, 2); err != nil {
		return nil, err
	}
	text, err := textArg(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ReplaceBadName, err)
	}
	repl := sql.Null[string]{V: defaultReplacement, Valid: true}
	if len(args) > 1 {
		if repl, err = textArg(args[1]); err != nil {
			return nil, fmt.Errorf("%s: %w", ReplaceBadName, err)
		}
	}

	result, err := unicode.ReplaceBad(text, repl, int(fns.cfg.MaxStrLen))
	if err != nil {
		return nil, udf.HostError(err, fns.cfg.MsgTextLen)
	}
	if !result.Valid {
		return nil, nil
	}
	return result.V, nil
}

// textArg converts a SQLite value to a string argument. Numbers are
// converted to their text form, as SQLite does for text parameters.
func textArg(v driver.Value) (sql.Null[string], error) {
	switch v := v.(type) {
	case nil:
		return sql.Null[string]{}, nil
	case string:
		return sql.Null[string]{V: v, Valid: true}, nil
	case []byte:
		return sql.Null[string]{V: string(v), Valid: true}, nil
	case int64:
		return sql.Null[string]{V: strconv.FormatInt(v, 10), Valid: true}, nil
	case float64:
		return sql.Null[string]{V: strconv.FormatFloat(v, 'g', -1, 64), Valid: true}, nil
	}
	return sql.Null[string]{}, fmt.Errorf("unsupported text argument of type %T", v)
}

func intArg(v driver.Value) (sql.Null[int64], error) {
	switch v := v.(type) {
	case nil:
		return sql.Null[int64]{}, nil
	case int64:
		return sql.Null[int64]{V: v, Valid: true}, nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return sql.Null[int64]{V: int64(v), Valid: true}, nil
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return sql.Null[int64]{V: n, Valid: true}, nil
		}
	}
	return sql.Null[int64]{}, fmt.Errorf("invalid integer argument %v", v)
}
