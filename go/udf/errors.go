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

package udf

import (
	"errors"
	"fmt"
)

// Kind classifies an SQLError.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNoData
	KindAllocation
	KindCompile
	KindStudy
	KindIncompleteTemplate
	KindInvalidTemplate
	KindInvalidGroup
	KindTooManyGroups
	KindEmptySplit
	KindLibrary
	KindTruncated
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindNoData:             "no_data",
	KindAllocation:         "allocation",
	KindCompile:            "compile",
	KindStudy:              "study",
	KindIncompleteTemplate: "incomplete_template",
	KindInvalidTemplate:    "invalid_template",
	KindInvalidGroup:       "invalid_group",
	KindTooManyGroups:      "too_many_groups",
	KindEmptySplit:         "empty_split",
	KindLibrary:            "library",
	KindTruncated:          "truncated",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SQLSTATE prefixes. The first two characters must be "38" and the third
// must not be one the host reserves for itself.
const (
	RegexStatePrefix   = "386"
	UnicodeStatePrefix = "387"
)

// SQLSTATE values.
const (
	SSNoData             = "02000"
	SSAllocation         = RegexStatePrefix + "99"
	SSCompile            = RegexStatePrefix + "98"
	SSStudy              = RegexStatePrefix + "97"
	SSIncompleteTemplate = RegexStatePrefix + "96"
	SSInvalidTemplate    = RegexStatePrefix + "95"
	SSInvalidGroup       = RegexStatePrefix + "94"
	SSTooManyGroups      = RegexStatePrefix + "93"
	SSEmptySplit         = RegexStatePrefix + "92"
	SSTruncated          = UnicodeStatePrefix + "01"
)

// SQLError is the error a function hands back to the host: a SQLSTATE and a
// diagnostic message.
type SQLError struct {
	Kind    Kind
	State   string
	Message string
	// Offset is the position the diagnostic refers to: 1-based in the pattern
	// for compile errors, the byte offset of the character after the
	// backslash for template errors. Zero when the error has no position.
	Offset int
	// Code is the regex library error code for KindLibrary errors.
	Code int
}

// Error implements the error interface.
func (se *SQLError) Error() string {
	return fmt.Sprintf("%s (sqlstate %s)", se.Message, se.State)
}

// Is matches errors of the same kind and SQLSTATE, so that
// errors.Is(err, ErrNoData) works on copies.
func (se *SQLError) Is(target error) bool {
	t, ok := target.(*SQLError)
	if !ok {
		return false
	}
	return t.Kind == se.Kind && t.State == se.State
}

// MessageText returns the diagnostic the way the host stores it: truncated
// to fit a buffer of n bytes, one of which is reserved for the terminator.
func (se *SQLError) MessageText(n int) string {
	if n <= 0 {
		return ""
	}
	if len(se.Message) < n {
		return se.Message
	}
	return se.Message[:n-1]
}

// NewAllocationError is returned when a working buffer cannot be obtained.
func NewAllocationError() *SQLError {
	return &SQLError{Kind: KindAllocation, State: SSAllocation, Message: "failed to allocate memory"}
}

// NewCompileError reports a pattern that does not compile. offset is 1-based.
func NewCompileError(msg string, offset int) *SQLError {
	return &SQLError{
		Kind:    KindCompile,
		State:   SSCompile,
		Message: fmt.Sprintf("%s at position %d", msg, offset),
		Offset:  offset,
	}
}

// NewStudyError reports a failure of the optimization pass.
func NewStudyError(msg string) *SQLError {
	return &SQLError{Kind: KindStudy, State: SSStudy, Message: msg}
}

// NewIncompleteTemplateError reports a template ending in a lone backslash.
func NewIncompleteTemplateError(fn string, offset int) *SQLError {
	return &SQLError{
		Kind:    KindIncompleteTemplate,
		State:   SSIncompleteTemplate,
		Message: fmt.Sprintf("%s error: incomplete template at position %d", fn, offset),
		Offset:  offset,
	}
}

// NewInvalidTemplateError reports a backslash followed by neither a digit nor
// another backslash.
func NewInvalidTemplateError(fn string, c rune, offset int) *SQLError {
	return &SQLError{
		Kind:    KindInvalidTemplate,
		State:   SSInvalidTemplate,
		Message: fmt.Sprintf("%s error: invalid template \\%c at position %d", fn, c, offset),
		Offset:  offset,
	}
}

// NewInvalidGroupError reports a template group reference beyond the groups
// declared by the pattern.
func NewInvalidGroupError(fn string, offset int) *SQLError {
	return &SQLError{
		Kind:    KindInvalidGroup,
		State:   SSInvalidGroup,
		Message: fmt.Sprintf("%s error: invalid group in template at position %d", fn, offset),
		Offset:  offset,
	}
}

func NewTooManyGroupsError(fn string) *SQLError {
	return &SQLError{
		Kind:    KindTooManyGroups,
		State:   SSTooManyGroups,
		Message: fmt.Sprintf("%s error: too many capturing groups", fn),
	}
}

func NewEmptySplitError() *SQLError {
	return &SQLError{Kind: KindEmptySplit, State: SSEmptySplit, Message: "split pattern matched the empty string"}
}

// NewTruncatedError reports output that does not fit the result buffer.
func NewTruncatedError(fn string) *SQLError {
	return &SQLError{
		Kind:    KindTruncated,
		State:   SSTruncated,
		Message: fmt.Sprintf("%s error: out of space in result string", fn),
	}
}

// NewLibraryError maps a regex library error code to its SQLSTATE. text is
// the library's description of the code.
func NewLibraryError(fn string, code int, text string) *SQLError {
	return &SQLError{
		Kind:    KindLibrary,
		State:   fmt.Sprintf("%s%02d", RegexStatePrefix, -code),
		Message: fmt.Sprintf("%s error: %s", fn, text),
		Code:    code,
	}
}

// KindOf returns the Kind of the first SQLError in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var se *SQLError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// StateOf returns the SQLSTATE of err, or the generic "38000" external
// routine exception for errors that are not SQLErrors.
func StateOf(err error) string {
	var se *SQLError
	if errors.As(err, &se) {
		return se.State
	}
	return "38000"
}

// HostError formats err the way the host reports a function error: the
// SQLSTATE and the diagnostic cut to a message buffer of msgTextLen bytes.
// Errors that are not SQLErrors are returned as they are.
func HostError(err error, msgTextLen int) error {
	var se *SQLError
	if errors.As(err, &se) {
		return fmt.Errorf("SQLSTATE %s: %s", se.State, se.MessageText(msgTextLen))
	}
	return err
}
