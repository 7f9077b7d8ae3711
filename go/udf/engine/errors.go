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
	"strings"
)

// Code is a library error code. The values follow PCRE's numbering, which is
// also what the SQLSTATE of a library error is derived from.
type Code int

const (
	NoMatch        Code = -1
	Null           Code = -2
	BadOption      Code = -3
	BadMagic       Code = -4
	UnknownOpcode  Code = -5
	NoMemory       Code = -6
	NoSubstring    Code = -7
	MatchLimit     Code = -8
	BadUTF8        Code = -10
	BadUTF8Offset  Code = -11
	Internal       Code = -14
	RecursionLimit Code = -21
	BadNewline     Code = -23
	BadOffset      Code = -24
)

// ErrNoMatch is returned by Exec when the pattern does not match. It is not a
// failure.
var ErrNoMatch = &Error{Code: NoMatch}

// Error is an error of the matching library.
type Error struct {
	Code Code
	// Substring is the group a NoSubstring error refers to.
	Substring int
	// Offset is the byte offset a BadUTF8 error refers to.
	Offset int
	// Err is the underlying backend error, if any.
	Err error
}

// Error returns the library's description of the code.
func (e *Error) Error() string {
	switch e.Code {
	case NoMatch:
		return "no match found"
	case Null:
		return "invalid NULL parameters"
	case BadOption:
		return "invalid option"
	case BadMagic, UnknownOpcode:
		return "invalid compiled pattern"
	case NoMemory:
		return "insufficient memory"
	case NoSubstring:
		return fmt.Sprintf("no such substring %d", e.Substring)
	case MatchLimit:
		return "match limit reached"
	case RecursionLimit:
		return "match recursion limit reached"
	case BadUTF8:
		return "invalid UTF-8 encoding"
	case BadUTF8Offset:
		return "invalid UTF-8 offset"
	case BadNewline:
		return "invalid newline value"
	case Internal:
		return "internal error"
	case BadOffset:
		return "invalid offset"
	}
	return fmt.Sprintf("unknown error (%d)", int(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches library errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CompileError is returned for a pattern that does not compile.
type CompileError struct {
	Pattern string
	Message string
	// Offset is the 0-based byte offset in Pattern the error was detected at.
	Offset int
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s at offset %d of %q", e.Message, e.Offset, e.Pattern)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// newCompileError builds a CompileError for pattern. expr is the fragment of
// the pattern the backend blamed, if it names one; the error offset is where
// the first occurrence of that fragment starts. The parser does not report
// its own position, so a fragment that also appears earlier in the pattern
// yields the earlier offset.
func newCompileError(pattern, msg, expr string, err error) *CompileError {
	offset := 0
	if expr != "" {
		if i := strings.Index(pattern, expr); i >= 0 {
			offset = i
		}
	}
	return &CompileError{Pattern: pattern, Message: msg, Offset: offset, Err: err}
}

// StudyError is returned when the optimization pass fails.
type StudyError struct {
	Pattern string
	Message string
	Err     error
}

func (e *StudyError) Error() string {
	return e.Message
}

func (e *StudyError) Unwrap() error {
	return e.Err
}
