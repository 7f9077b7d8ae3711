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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitess.io/regexudf/go/cache"
)

// countingEngine wraps an engine and counts compiles and studies.
type countingEngine struct {
	Engine
	compiles atomic.Int64
	studies  atomic.Int64
}

func (c *countingEngine) Compile(pattern string) (Program, error) {
	c.compiles.Add(1)
	return c.Engine.Compile(pattern)
}

func (c *countingEngine) Study(p Program) error {
	c.studies.Add(1)
	return c.Engine.Study(p)
}

func newCachedEngine(t *testing.T, size int) (*CachedEngine, *countingEngine, prometheus.Counter) {
	t.Helper()
	inner := &countingEngine{Engine: NewCoregex(10000)}
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "hits"})
	programs := cache.NewDefaultCacheImpl[Program](&cache.Config{MaxEntries: size})
	return NewCachedEngine(inner, programs, true, hits), inner, hits
}

func TestCachedEngine(t *testing.T) {
	eng, inner, hits := newCachedEngine(t, 10)
	assert.Equal(t, CoregexName, eng.Name())

	p1, err := eng.Compile("a+")
	require.NoError(t, err)
	p2, err := eng.Compile("a+")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.EqualValues(t, 1, inner.compiles.Load())
	assert.EqualValues(t, 1, inner.studies.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(hits))

	// Shared programs are already studied.
	require.NoError(t, eng.Study(p1))
	assert.EqualValues(t, 1, inner.studies.Load())

	_, err = eng.Compile("b+")
	require.NoError(t, err)
	assert.EqualValues(t, 2, inner.compiles.Load())

	eng.Purge()
	_, err = eng.Compile("a+")
	require.NoError(t, err)
	assert.EqualValues(t, 3, inner.compiles.Load())
}

func TestCountedEngineBehindCache(t *testing.T) {
	compiles := prometheus.NewCounter(prometheus.CounterOpts{Name: "compiles"})
	counted := NewCountedEngine(NewCoregex(10000), compiles)
	programs := cache.NewDefaultCacheImpl[Program](&cache.Config{MaxEntries: 10})
	eng := NewCachedEngine(counted, programs, true, nil)

	for range 3 {
		_, err := eng.Compile("a+")
		require.NoError(t, err)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(compiles))

	_, err := eng.Compile("(a")
	require.Error(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(compiles))
}

func TestCachedEngineErrorsAreNotCached(t *testing.T) {
	eng, inner, _ := newCachedEngine(t, 10)
	for range 2 {
		_, err := eng.Compile("(a")
		var cerr *CompileError
		require.ErrorAs(t, err, &cerr)
	}
	assert.EqualValues(t, 2, inner.compiles.Load())
}

func TestCachedEngineFull(t *testing.T) {
	eng, inner, _ := newCachedEngine(t, 1)
	_, err := eng.Compile("a")
	require.NoError(t, err)
	p, err := eng.Compile("b")
	require.NoError(t, err)
	require.NoError(t, eng.Study(p))

	_, err = eng.Compile("b")
	require.NoError(t, err)
	assert.EqualValues(t, 3, inner.compiles.Load(), "b did not fit in the cache")
}

func TestCachedEngineConcurrent(t *testing.T) {
	eng, inner, _ := newCachedEngine(t, 10)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			p, err := eng.Compile("(x)(y)")
			if !assert.NoError(t, err) {
				return
			}
			caps := NewCaptures(2)
			count, err := p.Exec([]byte("axyb"), 0, caps)
			assert.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, inner.compiles.Load(), int64(16))
	assert.GreaterOrEqual(t, inner.compiles.Load(), int64(1))
}
