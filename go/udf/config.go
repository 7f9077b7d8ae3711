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
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vitess.io/regexudf/go/cache"
	"vitess.io/regexudf/go/udf/engine"
	"vitess.io/regexudf/go/utils"
)

// Engine backends.
const (
	EngineCoregex = "coregex"
	EngineRegexp2 = "regexp2"
)

const (
	// DefaultMaxStrLen is the size of the result column of the string
	// returning functions.
	DefaultMaxStrLen = 4000
	// DefaultMsgTextLen is the size of the host's diagnostic message buffer.
	DefaultMsgTextLen = 70
)

// ByteSize is a length in bytes. As a flag or a setting it accepts plain
// numbers as well as sizes like "4KiB" or "4 kB".
type ByteSize int

var _ pflag.Value = (*ByteSize)(nil)

func (b *ByteSize) String() string {
	return strconv.Itoa(int(*b))
}

func (b *ByteSize) Set(s string) error {
	n, err := parseByteSize(s)
	if err != nil {
		return err
	}
	*b = n
	return nil
}

func (b *ByteSize) Type() string {
	return "bytes"
}

func parseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > uint64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("byte size %s out of range", s)
	}
	return ByteSize(n), nil
}

// byteSizeHook decodes strings into ByteSize values.
func byteSizeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeFor[ByteSize]() {
		return data, nil
	}
	return parseByteSize(data.(string))
}

// Config configures the functions and the engine they run on.
type Config struct {
	MaxStrLen  ByteSize `mapstructure:"max-str-len"`
	MsgTextLen int      `mapstructure:"msg-text-len"`
	Engine     string   `mapstructure:"engine"`
	// Study runs the optimization pass after every compile.
	Study bool `mapstructure:"study"`
	// MatchTimeout bounds a single match on the regexp2 engine.
	MatchTimeout time.Duration `mapstructure:"match-timeout"`
	// MaxDFAStates bounds the lazy DFA cache of the coregex engine.
	MaxDFAStates uint32 `mapstructure:"max-dfa-states"`

	// SharedCacheSize is the number of compiled programs shared across
	// scratchpads. Zero disables the shared cache.
	SharedCacheSize    int           `mapstructure:"shared-cache-size"`
	SharedCacheTTL     time.Duration `mapstructure:"shared-cache-ttl"`
	SharedCacheCleanup time.Duration `mapstructure:"shared-cache-cleanup"`
}

// NewDefaultConfig returns the configuration the host registers the
// functions with.
func NewDefaultConfig() *Config {
	return &Config{
		MaxStrLen:          DefaultMaxStrLen,
		MsgTextLen:         DefaultMsgTextLen,
		Engine:             EngineCoregex,
		Study:              true,
		MatchTimeout:       5 * time.Second,
		MaxDFAStates:       10000,
		SharedCacheSize:    0,
		SharedCacheTTL:     10 * time.Minute,
		SharedCacheCleanup: time.Minute,
	}
}

// RegisterFlags installs the function flags on fs, with the current values of
// c as defaults.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	utils.SetFlagVar(fs, &c.MaxStrLen, "max-str-len", "maximum length of a string result, in bytes or as a size like 4KiB")
	utils.SetFlagIntVar(fs, &c.MsgTextLen, "msg-text-len", c.MsgTextLen, "size of the diagnostic message buffer")
	utils.SetFlagStringVar(fs, &c.Engine, "engine", c.Engine, "regular expression engine: coregex or regexp2")
	utils.SetFlagBoolVar(fs, &c.Study, "study", c.Study, "run the optimization pass after compiling a pattern")
	utils.SetFlagDurationVar(fs, &c.MatchTimeout, "match-timeout", c.MatchTimeout, "maximum duration of a single match (regexp2 only)")
	utils.SetFlagUint32Var(fs, &c.MaxDFAStates, "max-dfa-states", c.MaxDFAStates, "maximum number of cached DFA states (coregex only)")
	utils.SetFlagIntVar(fs, &c.SharedCacheSize, "shared-cache-size", c.SharedCacheSize, "number of compiled patterns shared between invocations, 0 disables the cache")
	utils.SetFlagDurationVar(fs, &c.SharedCacheTTL, "shared-cache-ttl", c.SharedCacheTTL, "how long a shared compiled pattern is kept")
	utils.SetFlagDurationVar(fs, &c.SharedCacheCleanup, "shared-cache-cleanup", c.SharedCacheCleanup, "how often expired shared patterns are purged, 0 disables the purge")
}

// LoadConfig builds a Config from v. Values come, in decreasing order of
// precedence, from flags bound to v, REGEXUDF_* environment variables, the
// config file named by the "config" key and the defaults.
func LoadConfig(v *viper.Viper) (*Config, error) {
	def := NewDefaultConfig()
	var defaults map[string]any
	if err := mapstructure.Decode(def, &defaults); err != nil {
		return nil, err
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("REGEXUDF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		byteSizeHook,
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that c describes a usable configuration.
func (c *Config) Validate() error {
	if c.MaxStrLen <= 0 {
		return fmt.Errorf("max-str-len must be positive, got %d", int(c.MaxStrLen))
	}
	if c.MsgTextLen <= 0 {
		return fmt.Errorf("msg-text-len must be positive, got %d", c.MsgTextLen)
	}
	if c.MatchTimeout <= 0 {
		return fmt.Errorf("match-timeout must be positive, got %v", c.MatchTimeout)
	}
	if c.MaxDFAStates == 0 {
		return fmt.Errorf("max-dfa-states must be positive")
	}
	if c.SharedCacheSize < 0 {
		return fmt.Errorf("shared-cache-size must not be negative, got %d", c.SharedCacheSize)
	}
	switch c.Engine {
	case EngineCoregex, EngineRegexp2:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	return nil
}

// NewEngine builds the configured engine, wrapped by the shared program cache
// when one is configured. Compiles counts only the patterns the backend
// actually compiles.
func (c *Config) NewEngine() (engine.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var eng engine.Engine
	switch c.Engine {
	case EngineRegexp2:
		eng = engine.NewRegexp2(c.MatchTimeout)
	default:
		eng = engine.NewCoregex(c.MaxDFAStates)
	}
	eng = engine.NewCountedEngine(eng, Compiles.WithLabelValues(eng.Name()))
	if c.SharedCacheSize == 0 {
		return eng, nil
	}
	programs := cache.NewDefaultCacheImpl[engine.Program](&cache.Config{
		MaxEntries:        c.SharedCacheSize,
		DefaultExpiration: c.SharedCacheTTL,
		CleanupInterval:   c.SharedCacheCleanup,
	})
	return engine.NewCachedEngine(eng, programs, c.Study, SharedCacheHits), nil
}
