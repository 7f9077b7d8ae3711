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

package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// setFlagVar is a generic helper for registering flags.
// setFunc should be a function with signature func(fs *pflag.FlagSet, p *T, name string, def T, usage string)
func setFlagVar[T any](fs *pflag.FlagSet, p *T, name string, def T, usage string,
	setFunc func(fs *pflag.FlagSet, p *T, name string, def T, usage string)) {
	warnUnderscores(name)
	setFunc(fs, p, name, def, usage)
}

func warnUnderscores(name string) {
	if strings.Contains(name, "_") {
		fmt.Fprintf(os.Stderr, "[WARNING] Please use flag names with dashes instead of underscores: %s\n", name)
	}
}

func SetFlagIntVar(fs *pflag.FlagSet, p *int, name string, def int, usage string) {
	setFlagVar(fs, p, name, def, usage, (*pflag.FlagSet).IntVar)
}

func SetFlagBoolVar(fs *pflag.FlagSet, p *bool, name string, def bool, usage string) {
	setFlagVar(fs, p, name, def, usage, (*pflag.FlagSet).BoolVar)
}

func SetFlagStringVar(fs *pflag.FlagSet, p *string, name string, def string, usage string) {
	setFlagVar(fs, p, name, def, usage, (*pflag.FlagSet).StringVar)
}

func SetFlagDurationVar(fs *pflag.FlagSet, p *time.Duration, name string, def time.Duration, usage string) {
	setFlagVar(fs, p, name, def, usage, (*pflag.FlagSet).DurationVar)
}

func SetFlagUint32Var(fs *pflag.FlagSet, p *uint32, name string, def uint32, usage string) {
	setFlagVar(fs, p, name, def, usage, (*pflag.FlagSet).Uint32Var)
}

// SetFlagVar registers a flag that implements the pflag.Value interface.
func SetFlagVar(fs *pflag.FlagSet, value pflag.Value, name, usage string) {
	warnUnderscores(name)
	fs.Var(value, name, usage)
}

// NormalizeUnderscoresToDashes translates flag names from underscores to dashes.
func NormalizeUnderscoresToDashes(f *pflag.FlagSet, name string) pflag.NormalizedName {
	// glog owns these and keeps the underscores.
	if name == "log_dir" || name == "log_link" || name == "log_backtrace_at" {
		return pflag.NormalizedName(name)
	}
	if !strings.Contains(name, "_") || strings.Contains(name, "-") {
		return pflag.NormalizedName(name)
	}
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
