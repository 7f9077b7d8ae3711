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

// regexudf runs the regular expression and UTF-8 repair functions from the
// command line, driving each one through its call phases the way a database
// host does.
package main

import (
	"os"

	"vitess.io/regexudf/go/cmd/regexudf/command"
	"vitess.io/regexudf/go/log"
)

func main() {
	if err := command.Root.Execute(); err != nil {
		log.ErrorS("regexudf failed", "error", err)
		log.Flush()
		os.Exit(1)
	}
}
