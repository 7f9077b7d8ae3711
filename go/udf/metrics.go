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
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the metrics of every function in this module.
var Registry = prometheus.NewRegistry()

var (
	// Compiles counts pattern compilations per engine backend.
	Compiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regexudf",
		Name:      "compiles_total",
		Help:      "Number of regular expressions compiled, by engine.",
	}, []string{"engine"})

	// SharedCacheHits counts compiled programs served from the shared cache.
	SharedCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "regexudf",
		Name:      "shared_cache_hits_total",
		Help:      "Number of compiled programs served from the shared program cache.",
	})

	// Errors counts errors returned to the host, by kind.
	Errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regexudf",
		Name:      "errors_total",
		Help:      "Number of errors returned to the host, by kind.",
	}, []string{"kind"})

	// Rows counts rows produced by table functions.
	Rows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regexudf",
		Name:      "rows_total",
		Help:      "Number of rows returned by table functions, by function.",
	}, []string{"function"})
)

func init() {
	Registry.MustRegister(Compiles, SharedCacheHits, Errors, Rows)
}

// CountError records err in the errors metric. ErrNoData is not an error and
// is not counted.
func CountError(err error) error {
	if err != nil && err != ErrNoData {
		Errors.WithLabelValues(KindOf(err).String()).Inc()
	}
	return err
}
