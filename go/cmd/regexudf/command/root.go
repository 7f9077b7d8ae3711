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

// Package command contains the commands of the regexudf binary.
package command

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vitess.io/regexudf/go/log"
	"vitess.io/regexudf/go/udf"
	"vitess.io/regexudf/go/udf/engine"
	"vitess.io/regexudf/go/utils"
)

var (
	cfg = udf.NewDefaultConfig()
	v   = viper.New()
	eng engine.Engine

	rootArgs = struct {
		ConfigFile   string
		PrintMetrics bool
	}{}

	Root = &cobra.Command{
		Use:   "regexudf",
		Short: "regexudf runs regular expression and UTF-8 repair functions.",
		Long: "`regexudf` runs the functions a database host registers as user-defined functions.\n\n" +
			"Every command drives its function through the same call phases the host uses, " +
			"so a sequence of arguments shares one scratchpad and one compiled pattern.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(cmd.Flags()); err != nil {
				return err
			}
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			loaded, err := udf.LoadConfig(v)
			if err != nil {
				return err
			}
			cfg = loaded
			eng, err = cfg.NewEngine()
			if err != nil {
				return err
			}
			log.DebugS("configured", "engine", eng.Name(), "max-str-len", humanize.IBytes(uint64(cfg.MaxStrLen)), "shared-cache-size", cfg.SharedCacheSize)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer log.Flush()
			if rootArgs.PrintMetrics {
				return printMetrics(cmd.OutOrStdout())
			}
			return nil
		},
	}
)

func init() {
	fs := Root.PersistentFlags()
	fs.SetNormalizeFunc(utils.NormalizeUnderscoresToDashes)
	cfg.RegisterFlags(fs)
	log.RegisterFlags(fs)
	utils.SetFlagStringVar(fs, &rootArgs.ConfigFile, "config", rootArgs.ConfigFile, "path to a config file with the function settings")
	utils.SetFlagBoolVar(fs, &rootArgs.PrintMetrics, "print-metrics", rootArgs.PrintMetrics, "print the function metrics in the Prometheus text format after the command")
}

// hostError formats err the way the host reports a function error.
func hostError(err error) error {
	return udf.HostError(err, cfg.MsgTextLen)
}

func printMetrics(w io.Writer) error {
	families, err := udf.Registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
