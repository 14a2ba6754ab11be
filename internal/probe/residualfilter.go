// Copyright 2026 The Hashprobe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package probe

import (
	"github.com/vectorquery/hashprobe/common/reuse"
	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/expreval"
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/plan"
)

// residualFilter materializes the one-row-per-candidate-pair filter input
// for a non-anti join — probe columns dictionary-wrapped over mapping,
// build columns bulk-extracted from buildRows — and evaluates the node's
// residual predicate over it. Filter-input batch shells are recycled
// through a reuse.Pool rather than allocated fresh on every page.
type residualFilter struct {
	node plan.JoinNode
	pool *reuse.Pool[*batch.Batch]
}

func newResidualFilter(node plan.JoinNode) *residualFilter {
	width := len(node.FilterProbeCols) + len(node.FilterBuildCols)
	return &residualFilter{
		node: node,
		pool: reuse.NewPool(func() *batch.Batch { return batch.New(width) }),
	}
}

// buildInput assembles the filter-input batch for the first n entries of
// mapping/buildRows. The caller must return it via f.pool.Free once done.
func (f *residualFilter) buildInput(input *batch.Batch, table jointable.Table, mapping, buildRows []int64, n int) *batch.Batch {
	fb := f.pool.Alloc()
	i := 0
	for _, col := range f.node.FilterProbeCols {
		fb.Vecs[i] = input.Vecs[col].Wrap(mapping[:n])
		i++
	}
	for _, col := range f.node.FilterBuildCols {
		fb.Vecs[i] = table.BuildColumn(col).Extract(buildRows[:n])
		i++
	}
	return fb
}

// eval evaluates the residual predicate over the first n candidate pairs.
func (f *residualFilter) eval(input *batch.Batch, table jointable.Table, mapping, buildRows []int64, n int) (*expreval.BoolColumn, error) {
	fb := f.buildInput(input, table, mapping, buildRows, n)
	result, err := f.node.Filter.Eval([]*batch.Batch{fb})
	f.pool.Free(fb, fb)
	return result, err
}

// compactPassing keeps only the entries of mapping/buildRows[0:n] whose
// filter result is true, shifting survivors down in place (inner,
// right, right-semi).
func compactPassing(mapping, buildRows []int64, n int, result *expreval.BoolColumn) int {
	out := 0
	for i := 0; i < n; i++ {
		if !result.At(i) {
			continue
		}
		mapping[out] = mapping[i]
		buildRows[out] = buildRows[i]
		out++
	}
	return out
}

// noMatchDetector tracks, across a run of candidate pairs sharing an
// ascending probe-row order, whether the probe row currently being
// accumulated has had any pair pass. When the row changes (or the run
// ends) it reports whether a synthetic (row, no-match) pair must be
// emitted for the row just finished, used by left/full outer to pad
// probe rows none of whose candidate pairs passed the residual filter.
type noMatchDetector struct {
	started bool
	cur     int64
	anyPass bool
}

func newNoMatchDetector() *noMatchDetector {
	return &noMatchDetector{cur: -1}
}

// advance folds one (probeRow, passed) observation into the detector. If
// probeRow differs from the row being tracked, the previous row is
// flushed first: emit reports whether it needs a synthetic miss, and
// missRow names it.
func (d *noMatchDetector) advance(probeRow int64, passed bool) (emit bool, missRow int64) {
	if d.started && probeRow != d.cur {
		emit = !d.anyPass
		missRow = d.cur
		d.started = false
	}
	if !d.started {
		d.cur = probeRow
		d.anyPass = false
		d.started = true
	}
	if passed {
		d.anyPass = true
	}
	return emit, missRow
}

// finish flushes the row currently being tracked, if any. Call once the
// result cursor reaches the end of the input batch's candidate pairs.
func (d *noMatchDetector) finish() (emit bool, missRow int64) {
	if !d.started {
		return false, 0
	}
	d.started = false
	return !d.anyPass, d.cur
}

// reset drops any in-progress row tracking, for the start of a new input
// batch.
func (d *noMatchDetector) reset() {
	d.started = false
	d.cur = -1
	d.anyPass = false
}

// leftSemiTracker enforces left-semi's at-most-one-output-per-probe-row
// rule: a probe row is emitted the first time one of its candidate pairs
// passes the filter, and never again.
type leftSemiTracker struct {
	lastEmitted int64
}

func newLeftSemiTracker() *leftSemiTracker {
	return &leftSemiTracker{lastEmitted: -1}
}

// shouldEmit reports whether this (probeRow, passed) observation should
// produce output: true only the first time probeRow passes.
func (t *leftSemiTracker) shouldEmit(probeRow int64, passed bool) bool {
	if !passed || t.lastEmitted == probeRow {
		return false
	}
	t.lastEmitted = probeRow
	return true
}

// reset drops tracking state, for the start of a new input batch.
func (t *leftSemiTracker) reset() {
	t.lastEmitted = -1
}
