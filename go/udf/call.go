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

// Package udf holds the pieces shared by every function the host can call:
// the call phases of the host protocol, the SQLSTATE error taxonomy, the
// function configuration and the metrics registry.
package udf

import "fmt"

// ScalarCall is the phase of a scalar function invocation. The host issues a
// FirstCall, any number of NormalCalls and a FinalCall against the same
// scratchpad.
type ScalarCall int

const (
	FirstCall ScalarCall = iota
	NormalCall
	FinalCall
)

func (c ScalarCall) String() string {
	switch c {
	case FirstCall:
		return "first"
	case NormalCall:
		return "normal"
	case FinalCall:
		return "final"
	}
	return fmt.Sprintf("ScalarCall(%d)", int(c))
}

// TableCall is the phase of a table function invocation: one OpenCall, fetches
// until ErrNoData, then one CloseCall.
type TableCall int

const (
	OpenCall TableCall = iota
	FetchCall
	CloseCall
)

func (c TableCall) String() string {
	switch c {
	case OpenCall:
		return "open"
	case FetchCall:
		return "fetch"
	case CloseCall:
		return "close"
	}
	return fmt.Sprintf("TableCall(%d)", int(c))
}

// ErrNoData is returned by a table function fetch once it has no rows left.
var ErrNoData = &SQLError{Kind: KindNoData, State: SSNoData, Message: "no data"}
