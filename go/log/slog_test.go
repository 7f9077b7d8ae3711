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

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	restore := SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer restore()

	DebugS("compiled pattern", "pattern", "a+", "groups", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "compiled pattern", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "a+", rec["pattern"])
	assert.EqualValues(t, 1, rec["groups"])
	assert.True(t, Enabled(slog.LevelDebug))
}

func TestSetLoggerNil(t *testing.T) {
	restore := SetLogger(nil)
	restore()
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":  slog.LevelDebug,
		" INFO ": slog.LevelInfo,
		"warn":   slog.LevelWarn,
		"error":  slog.LevelError,
	} {
		got, err := slogLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := slogLevel("verbose")
	assert.ErrorContains(t, err, `invalid log-level "verbose"`)
}

func TestSlogHandler(t *testing.T) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	for _, format := range []string{"json", "logfmt", "tint"} {
		h, err := slogHandler(format, opts)
		require.NoError(t, err, format)
		assert.NotNil(t, h)
	}

	_, err := slogHandler("xml", opts)
	assert.ErrorContains(t, err, `invalid log-fmt "xml"`)
}

func TestInitWithoutFormatFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, Init(fs))
	assert.False(t, structuredLoggingEnabled.Load())
	require.NoError(t, Init(nil))
}

func TestLogRotateMaxSize(t *testing.T) {
	var v logRotateMaxSize
	require.NoError(t, v.Set("1024"))
	assert.Equal(t, "1024", v.String())
	assert.Equal(t, "uint64", v.Type())
	assert.Error(t, v.Set("lots"))
}
