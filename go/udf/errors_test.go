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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLErrors(t *testing.T) {
	tests := []struct {
		err     *SQLError
		kind    Kind
		state   string
		message string
	}{
		{NewAllocationError(), KindAllocation, "38699", "failed to allocate memory"},
		{NewCompileError("missing closing )", 3), KindCompile, "38698", "missing closing ) at position 3"},
		{NewStudyError("bad config"), KindStudy, "38697", "bad config"},
		{NewIncompleteTemplateError("sub", 4), KindIncompleteTemplate, "38696", "sub error: incomplete template at position 4"},
		{NewInvalidTemplateError("sub", 'q', 2), KindInvalidTemplate, "38695", `sub error: invalid template \q at position 2`},
		{NewInvalidGroupError("sub", 2), KindInvalidGroup, "38694", "sub error: invalid group in template at position 2"},
		{NewTooManyGroupsError("sub"), KindTooManyGroups, "38693", "sub error: too many capturing groups"},
		{NewEmptySplitError(), KindEmptySplit, "38692", "split pattern matched the empty string"},
		{NewLibraryError("search", -8, "match limit reached"), KindLibrary, "38608", "search error: match limit reached"},
		{NewLibraryError("split", -24, "invalid offset"), KindLibrary, "38624", "split error: invalid offset"},
		{NewTruncatedError("replace_bad"), KindTruncated, "38701", "replace_bad error: out of space in result string"},
		{ErrNoData, KindNoData, "02000", "no data"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.state, tt.err.State)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Len(t, tt.err.State, 5)
		})
	}
}

func TestMessageText(t *testing.T) {
	err := NewEmptySplitError()
	assert.Equal(t, "split pattern matched the empty string", err.MessageText(DefaultMsgTextLen))
	assert.Equal(t, "split", err.MessageText(6))
	assert.Equal(t, "", err.MessageText(0))
	assert.Equal(t, err.Message, err.MessageText(len(err.Message)+1))
	assert.Equal(t, err.Message[:len(err.Message)-1], err.MessageText(len(err.Message)))
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("calling search: %w", NewCompileError("oops", 1))
	assert.Equal(t, KindCompile, KindOf(wrapped))
	assert.Equal(t, "38698", StateOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "38000", StateOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrNoDataIs(t *testing.T) {
	cp := *ErrNoData
	require.ErrorIs(t, &cp, ErrNoData)
	require.ErrorIs(t, fmt.Errorf("fetch: %w", ErrNoData), ErrNoData)
	assert.False(t, errors.Is(NewEmptySplitError(), ErrNoData))
}

func TestCallStrings(t *testing.T) {
	assert.Equal(t, "first", FirstCall.String())
	assert.Equal(t, "final", FinalCall.String())
	assert.Equal(t, "fetch", FetchCall.String())
	assert.Equal(t, "close", CloseCall.String())
	assert.Equal(t, "ScalarCall(7)", ScalarCall(7).String())
	assert.Equal(t, "TableCall(-1)", TableCall(-1).String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestHostError(t *testing.T) {
	err := NewInvalidGroupError("sub", 1)
	assert.EqualError(t, HostError(err, 70), "SQLSTATE 38694: sub error: invalid group in template at position 1")
	assert.EqualError(t, HostError(fmt.Errorf("call: %w", err), 10), "SQLSTATE 38694: sub error")

	plain := errors.New("plain")
	assert.Same(t, plain, HostError(plain, 70))
}
