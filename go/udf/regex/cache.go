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

// Package regex implements the regular expression functions: the search and
// substitute scalars and the groups and split table functions.
//
// Every function value is the scratchpad of one invocation sequence. It is
// not safe for concurrent use; the host runs independent sequences on
// independent values.
package regex

import (
	"errors"

	"vitess.io/regexudf/go/log"
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
)

// patternCache keeps the program compiled for the last pattern a function
// was called with, so that a sequence of calls with the same pattern
// compiles it once.
type patternCache struct {
	eng   engine.Engine
	study bool

	pattern string
	valid   bool
	prog    engine.Program
}

func newPatternCache(eng engine.Engine, cfg *udf.Config) patternCache {
	return patternCache{eng: eng, study: cfg.Study}
}

// ensure returns the program for pattern, compiling it if pattern differs
// from the cached one or the last compile failed.
func (pc *patternCache) ensure(pattern string) (engine.Program, error) {
	if pc.valid && pc.pattern == pattern {
		return pc.prog, nil
	}
	pc.release()

	log.DebugS("compiling pattern", "engine", pc.eng.Name(), "pattern", pattern)
	prog, err := pc.eng.Compile(pattern)
	if err != nil {
		return nil, diagnostic(err)
	}
	if pc.study {
		if err := pc.eng.Study(prog); err != nil {
			return nil, diagnostic(err)
		}
	}
	pc.pattern = pattern
	pc.prog = prog
	pc.valid = true
	return prog, nil
}

// release forgets the cached program.
func (pc *patternCache) release() {
	pc.pattern = ""
	pc.prog = nil
	pc.valid = false
}

// diagnostic converts a Compile or Study error to the error the host sees.
func diagnostic(err error) error {
	var (
		cerr *engine.CompileError
		serr *engine.StudyError
	)
	switch {
	case errors.As(err, &cerr):
		return udf.NewCompileError(cerr.Message, cerr.Offset+1)
	case errors.As(err, &serr):
		return udf.NewStudyError(serr.Message)
	}
	return udf.NewCompileError(err.Error(), 1)
}

// libraryError converts an error returned by a program to the error the host
// sees, for the function named fn.
func libraryError(fn string, err error) error {
	var lerr *engine.Error
	if errors.As(err, &lerr) {
		return udf.NewLibraryError(fn, int(lerr.Code), lerr.Error())
	}
	return udf.NewLibraryError(fn, int(engine.Internal), (&engine.Error{Code: engine.Internal}).Error())
}

// fail records err and returns it.
func fail(fn string, err error) error {
	log.DebugS("function failed", "function", fn, "error", err)
	return udf.CountError(err)
}

// captures returns a container sized for the groups of prog.
func captures(fn string, prog engine.Program) (engine.Captures, int, error) {
	groups, err := prog.CaptureCount()
	if err != nil {
		return nil, 0, libraryError(fn, err)
	}
	return engine.NewCaptures(groups), groups, nil
}
