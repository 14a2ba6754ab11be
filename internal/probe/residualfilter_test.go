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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/vector"
	"github.com/vectorquery/hashprobe/expreval"
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/plan"
)

func greaterThanFilter() expreval.Func {
	return expreval.Func{
		Propagate: true,
		Predicate: func(cols []*vector.Vector, row int64) (bool, bool) {
			probeVal, ok1 := cols[0].Int64At(row)
			buildVal, ok2 := cols[1].Int64At(row)
			if !ok1 || !ok2 {
				return false, true
			}
			return probeVal > buildVal, false
		},
	}
}

func TestResidualFilterEvalFiltersCandidatePairs(t *testing.T) {
	node := plan.JoinNode{
		Filter:          greaterThanFilter(),
		FilterProbeCols: []int{0},
		FilterBuildCols: []int{0},
	}
	rf := newResidualFilter(node)

	in := batch.New(1)
	in.Vecs[0] = vector.NewFlatInt64([]int64{10, 5}, nil)
	build := batch.New(1)
	build.Vecs[0] = vector.NewFlatInt64([]int64{1, 20}, nil)
	table := jointable.NewMemTable(build, []uint64{1, 2}, []bool{false, false}, true)

	mapping := []int64{0, 1}
	buildRows := []int64{0, 1}
	result, err := rf.eval(in, table, mapping, buildRows, 2)
	require.NoError(t, err)
	require.True(t, result.At(0), "10 > 1")
	require.False(t, result.At(1), "5 > 20 is false")
}

func TestCompactPassingShiftsSurvivorsDown(t *testing.T) {
	mapping := []int64{0, 1, 2, 3}
	buildRows := []int64{10, 11, 12, 13}
	result := &expreval.BoolColumn{Values: []bool{true, false, true, false}}

	n := compactPassing(mapping, buildRows, 4, result)
	require.Equal(t, 2, n)
	require.Equal(t, []int64{0, 2}, mapping[:2])
	require.Equal(t, []int64{10, 12}, buildRows[:2])
}

func TestNoMatchDetectorEmitsOnRowTransition(t *testing.T) {
	d := newNoMatchDetector()

	emit, _ := d.advance(0, false)
	require.False(t, emit)
	emit, _ = d.advance(0, false)
	require.False(t, emit)

	emit, missRow := d.advance(1, false)
	require.True(t, emit, "row 0 never passed, so flushing it on the row-1 transition must emit")
	require.Equal(t, int64(0), missRow)
}

func TestNoMatchDetectorSuppressesEmitWhenRowPassed(t *testing.T) {
	d := newNoMatchDetector()
	d.advance(0, false)
	d.advance(0, true)

	emit, _ := d.advance(1, false)
	require.False(t, emit, "row 0 passed at least once, so it must not be padded")
}

func TestNoMatchDetectorFlushesRowWithNoPass(t *testing.T) {
	d := newNoMatchDetector()
	d.advance(5, false)
	d.advance(5, false)
	emit, missRow := d.advance(6, false)
	require.True(t, emit)
	require.Equal(t, int64(5), missRow)
}

func TestNoMatchDetectorFinishFlushesLastRow(t *testing.T) {
	d := newNoMatchDetector()
	d.advance(2, false)
	emit, missRow := d.finish()
	require.True(t, emit)
	require.Equal(t, int64(2), missRow)

	emit, _ = d.finish()
	require.False(t, emit, "finish is idempotent once flushed")
}

func TestNoMatchDetectorResetClearsState(t *testing.T) {
	d := newNoMatchDetector()
	d.advance(3, true)
	d.reset()

	// Re-advancing the same row number after reset must not spuriously
	// flush the pre-reset tracking state.
	emit, _ := d.advance(3, false)
	require.False(t, emit)
	emit, missRow := d.finish()
	require.True(t, emit)
	require.Equal(t, int64(3), missRow)
}

func TestLeftSemiTrackerEmitsOnlyOncePerRow(t *testing.T) {
	tr := newLeftSemiTracker()
	require.False(t, tr.shouldEmit(0, false))
	require.True(t, tr.shouldEmit(0, true))
	require.False(t, tr.shouldEmit(0, true), "row 0 already emitted")
	require.True(t, tr.shouldEmit(1, true))
}

func TestLeftSemiTrackerResetAllowsReEmission(t *testing.T) {
	tr := newLeftSemiTracker()
	tr.shouldEmit(0, true)
	tr.reset()
	require.True(t, tr.shouldEmit(0, true))
}
