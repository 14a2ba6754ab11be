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
	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/bitmap"
	"github.com/vectorquery/hashprobe/expreval"
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/plan"
)

const antiScanPageSize = 1024

// nullAwareAntiFilter runs the null-aware anti-join's two-pass
// classification once per input batch: a first pass over every
// (probe, build) candidate pair the equality lookup produced, followed
// by a second pass re-testing undecided probe rows against build rows
// the equality lookup could never have reached — those carrying a null
// key, or (for a probe row with a null key of its own) every build row.
// Any probe row the second pass confirms as possibly matching is
// eliminated from the anti-join's output.
type nullAwareAntiFilter struct {
	node plan.JoinNode
	rf   *residualFilter

	ready       bool
	eliminated  bitmap.Bitmap
	inputSize   int64
	survivorPos int64
}

func newNullAwareAntiFilter(node plan.JoinNode) *nullAwareAntiFilter {
	return &nullAwareAntiFilter{node: node, rf: newResidualFilter(node)}
}

// reset drops classification state, for the start of a new input batch.
func (f *nullAwareAntiFilter) reset() {
	f.ready = false
	f.survivorPos = 0
}

// prepare runs the full two-pass classification for the current input
// batch, if it has not already run. It is idempotent within one batch so
// GetOutput can call it unconditionally on every invocation.
func (f *nullAwareAntiFilter) prepare(input *batch.Batch, table jointable.Table, lookup *jointable.HashLookup) error {
	if f.ready {
		return nil
	}
	n := input.RowCount()
	f.inputSize = n
	f.eliminated = bitmap.NewWithSize(n)
	testNullKeyRows := bitmap.NewWithSize(n)
	testAllRows := bitmap.NewWithSize(n)

	// lookup.Rows has already been expanded to every row by the time this
	// runs, so key nullness is read from the key columns themselves.
	nonNullRows := bitmap.NewWithSize(n)
	for r := int64(0); r < n; r++ {
		if !filterProbeInputIsNull(input, f.node.LeftKeys, r) {
			nonNullRows.Add(r)
		}
	}

	cursor := jointable.NewCursor()
	mapping := make([]int64, antiScanPageSize)
	buildRows := make([]int64, antiScanPageSize)
	for !cursor.AtEnd() {
		cnt := table.ListResults(cursor, lookup, antiScanPageSize, true, mapping, buildRows)
		if cnt == 0 {
			break
		}
		if err := f.classifyPage(input, table, mapping, buildRows, cnt, &nonNullRows, &testNullKeyRows, &testAllRows); err != nil {
			return err
		}
	}

	if err := f.secondPass(input, table, &testNullKeyRows, table.ScanNullKeyRows); err != nil {
		return err
	}
	if err := f.secondPass(input, table, &testAllRows, table.ScanAllRows); err != nil {
		return err
	}

	f.ready = true
	f.survivorPos = 0
	return nil
}

// classifyPage folds one page of (probe, build) candidate pairs into
// f.eliminated directly, or into testNullKeyRows/testAllRows for the
// second pass to decide.
func (f *nullAwareAntiFilter) classifyPage(input *batch.Batch, table jointable.Table, mapping, buildRows []int64, n int, nonNullRows, testNullKeyRows, testAllRows *bitmap.Bitmap) error {
	realIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if buildRows[i] != jointable.NoHit {
			realIdx = append(realIdx, i)
		}
	}

	var result *expreval.BoolColumn
	propagatesNulls := false
	if len(realIdx) > 0 {
		cm := make([]int64, len(realIdx))
		cb := make([]int64, len(realIdx))
		for k, i := range realIdx {
			cm[k] = mapping[i]
			cb[k] = buildRows[i]
		}
		fb := f.rf.buildInput(input, table, cm, cb, len(realIdx))
		var err error
		result, err = f.node.Filter.Eval([]*batch.Batch{fb})
		f.rf.pool.Free(fb, fb)
		if err != nil {
			return err
		}
		propagatesNulls = expreval.Propagates(f.node.Filter)
	}

	realPos := 0
	for i := 0; i < n; i++ {
		j := mapping[i]
		if f.eliminated.Contains(j) {
			if buildRows[i] != jointable.NoHit {
				realPos++
			}
			continue
		}
		if buildRows[i] == jointable.NoHit {
			if nonNullRows.Contains(j) {
				testNullKeyRows.Add(j)
			} else {
				testAllRows.Add(j)
			}
			continue
		}
		passed := result.At(realPos)
		nullInput := propagatesNulls && filterProbeInputIsNull(input, f.node.FilterProbeCols, j)
		realPos++
		switch {
		case nullInput:
			f.eliminated.Add(j)
		case nonNullRows.Contains(j) && passed:
			f.eliminated.Add(j)
		case nonNullRows.Contains(j):
			testNullKeyRows.Add(j)
		default:
			testAllRows.Add(j)
		}
	}
	return nil
}

// secondPass re-tests every probe row still marked in rows against the
// build-row subset scan selects, eliminating it if any such build row
// passes the filter.
func (f *nullAwareAntiFilter) secondPass(input *batch.Batch, table jointable.Table, rows *bitmap.Bitmap, scan func(*jointable.RowIter, int, []int64) int) error {
	it := rows.Iterator()
	for it.HasNext() {
		j := it.Next()
		if f.eliminated.Contains(j) {
			continue
		}
		passed, err := f.testAgainstScan(j, input, table, scan)
		if err != nil {
			return err
		}
		if passed {
			f.eliminated.Add(j)
		}
	}
	return nil
}

// testAgainstScan pages through every build row scan selects, evaluating
// the residual filter with probe row j paired against each, and reports
// whether any page yields a pass.
func (f *nullAwareAntiFilter) testAgainstScan(j int64, input *batch.Batch, table jointable.Table, scan func(*jointable.RowIter, int, []int64) int) (bool, error) {
	iter := jointable.NewRowIter()
	buf := make([]int64, antiScanPageSize)
	mapping := make([]int64, antiScanPageSize)
	for {
		n := scan(iter, antiScanPageSize, buf)
		if n == 0 {
			return false, nil
		}
		for i := 0; i < n; i++ {
			mapping[i] = j
		}
		fb := f.rf.buildInput(input, table, mapping[:n], buf[:n], n)
		result, err := f.node.Filter.Eval([]*batch.Batch{fb})
		f.rf.pool.Free(fb, fb)
		if err != nil {
			return false, err
		}
		for i := 0; i < n; i++ {
			if result.At(i) {
				return true, nil
			}
		}
	}
}

// emitSurvivors appends up to capacity surviving probe rows — those
// never eliminated — into mapping/buildRows as (row, NoHit) pairs,
// resuming from wherever the previous call left off. Call prepare first.
func (f *nullAwareAntiFilter) emitSurvivors(capacity int, mapping, buildRows []int64) int {
	n := 0
	for n < capacity && f.survivorPos < f.inputSize {
		j := f.survivorPos
		f.survivorPos++
		if f.eliminated.Contains(j) {
			continue
		}
		mapping[n] = j
		buildRows[n] = jointable.NoHit
		n++
	}
	return n
}

// atEnd reports whether every survivor has already been emitted.
func (f *nullAwareAntiFilter) atEnd() bool {
	return f.ready && f.survivorPos >= f.inputSize
}

func filterProbeInputIsNull(input *batch.Batch, cols []int, row int64) bool {
	for _, c := range cols {
		if input.Vecs[c].IsNullAt(row) {
			return true
		}
	}
	return false
}
