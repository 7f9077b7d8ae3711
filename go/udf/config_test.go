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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitess.io/regexudf/go/udf/engine"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
	assert.EqualValues(t, 4000, cfg.MaxStrLen)
	assert.Equal(t, 70, cfg.MsgTextLen)
}

func TestLoadConfigSources(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "regexudf.yaml")
	require.NoError(t, os.WriteFile(file, []byte("engine: regexp2\nmatch-timeout: 250ms\nmax-str-len: 100\n"), 0o600))

	t.Setenv("REGEXUDF_MAX_STR_LEN", "200")
	t.Setenv("REGEXUDF_STUDY", "false")

	cfg := NewDefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--shared-cache-size=16", "--shared-cache-ttl=1h"}))

	v := viper.New()
	require.NoError(t, v.BindPFlags(fs))
	v.Set("config", file)

	loaded, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, EngineRegexp2, loaded.Engine)
	assert.Equal(t, 250*time.Millisecond, loaded.MatchTimeout)
	assert.EqualValues(t, 200, loaded.MaxStrLen, "environment overrides the config file")
	assert.False(t, loaded.Study)
	assert.Equal(t, 16, loaded.SharedCacheSize)
	assert.Equal(t, time.Hour, loaded.SharedCacheTTL)
	assert.Equal(t, time.Minute, loaded.SharedCacheCleanup)
}

func TestLoadConfigByteSizes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, fs *pflag.FlagSet, v *viper.Viper)
		want  ByteSize
	}{
		{"flag", func(t *testing.T, fs *pflag.FlagSet, v *viper.Viper) {
			require.NoError(t, fs.Parse([]string{"--max-str-len=4KiB"}))
		}, 4096},
		{"environment", func(t *testing.T, fs *pflag.FlagSet, v *viper.Viper) {
			t.Setenv("REGEXUDF_MAX_STR_LEN", "2 kB")
		}, 2000},
		{"config file", func(t *testing.T, fs *pflag.FlagSet, v *viper.Viper) {
			file := filepath.Join(t.TempDir(), "regexudf.yaml")
			require.NoError(t, os.WriteFile(file, []byte("max-str-len: 1MiB\n"), 0o600))
			v.Set("config", file)
		}, 1 << 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			cfg.RegisterFlags(fs)
			v := viper.New()
			tt.setup(t, fs, v)
			require.NoError(t, v.BindPFlags(fs))

			loaded, err := LoadConfig(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loaded.MaxStrLen)
		})
	}

	var b ByteSize
	require.Error(t, b.Set("lots"))
	require.NoError(t, b.Set("12"))
	assert.Equal(t, "12", b.String())
}

func TestLoadConfigMissingFile(t *testing.T) {
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig(v)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"max-str-len", func(c *Config) { c.MaxStrLen = 0 }},
		{"msg-text-len", func(c *Config) { c.MsgTextLen = -1 }},
		{"match-timeout", func(c *Config) { c.MatchTimeout = 0 }},
		{"max-dfa-states", func(c *Config) { c.MaxDFAStates = 0 }},
		{"shared-cache-size", func(c *Config) { c.SharedCacheSize = -1 }},
		{"engine", func(c *Config) { c.Engine = "pcre" }},
	}
	require.NoError(t, NewDefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)

			_, err = cfg.NewEngine()
			require.Error(t, err)
		})
	}
}

func TestNewEngine(t *testing.T) {
	cfg := NewDefaultConfig()
	eng, err := cfg.NewEngine()
	require.NoError(t, err)
	assert.Equal(t, engine.CoregexName, eng.Name())

	cfg.Engine = EngineRegexp2
	eng, err = cfg.NewEngine()
	require.NoError(t, err)
	assert.Equal(t, engine.Regexp2Name, eng.Name())

	cfg.Engine = EngineCoregex
	cfg.SharedCacheSize = 4
	cfg.SharedCacheCleanup = 0
	eng, err = cfg.NewEngine()
	require.NoError(t, err)
	cached, ok := eng.(*engine.CachedEngine)
	require.True(t, ok)

	before := testutil.ToFloat64(SharedCacheHits)
	compiles := testutil.ToFloat64(Compiles.WithLabelValues(engine.CoregexName))
	p1, err := cached.Compile("a+")
	require.NoError(t, err)
	p2, err := cached.Compile("a+")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, before+1, testutil.ToFloat64(SharedCacheHits))
	// The hit did not reach the backend.
	assert.Equal(t, compiles+1, testutil.ToFloat64(Compiles.WithLabelValues(engine.CoregexName)))
}

func TestCountError(t *testing.T) {
	before := testutil.ToFloat64(Errors.WithLabelValues("empty_split"))
	require.Error(t, CountError(NewEmptySplitError()))
	assert.Equal(t, before+1, testutil.ToFloat64(Errors.WithLabelValues("empty_split")))

	noData := testutil.ToFloat64(Errors.WithLabelValues("no_data"))
	require.ErrorIs(t, CountError(ErrNoData), ErrNoData)
	assert.Equal(t, noData, testutil.ToFloat64(Errors.WithLabelValues("no_data")))

	assert.NoError(t, CountError(nil))
}
