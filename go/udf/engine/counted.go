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

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CountedEngine counts the compiles that reach a backend. Wrapped by a
// CachedEngine it only sees cache misses.
type CountedEngine struct {
	Engine
	compiles prometheus.Counter
}

// NewCountedEngine wraps inner so that every Compile increments compiles.
func NewCountedEngine(inner Engine, compiles prometheus.Counter) *CountedEngine {
	return &CountedEngine{Engine: inner, compiles: compiles}
}

func (c *CountedEngine) Compile(pattern string) (Program, error) {
	c.compiles.Inc()
	return c.Engine.Compile(pattern)
}
