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

package jointable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/vector"
)

func newBuildTable(t *testing.T, keys []int64, keyIsNull []bool, hashMode bool) (*MemTable, *batch.Batch) {
	t.Helper()
	hashes := make([]uint64, len(keys))
	for i, k := range keys {
		hashes[i] = uint64(k)
	}
	b := batch.New(1)
	b.Vecs[0] = vector.NewFlatInt64(keys, nil)
	return NewMemTable(b, hashes, keyIsNull, hashMode), b
}

func lookupFor(rows []int64, hashes []uint64, inputSize int) HashLookup {
	l := HashLookup{Rows: rows, Hashes: hashes}
	l.EnsureHitsCapacity(inputSize)
	return l
}

func TestProbeSingleMatch(t *testing.T) {
	table, _ := newBuildTable(t, []int64{10, 20, 30}, []bool{false, false, false}, true)
	lookup := lookupFor([]int64{0, 1, 2}, []uint64{20, 10, 99}, 3)

	require.NoError(t, table.Probe(&lookup))
	require.Equal(t, int64(1), lookup.Hits[0])
	require.Equal(t, int64(0), lookup.Hits[1])
	require.Equal(t, NoHit, lookup.Hits[2])
}

func TestListResultsWalksDuplicateChain(t *testing.T) {
	table, _ := newBuildTable(t, []int64{5, 5, 5, 9}, []bool{false, false, false, false}, true)
	require.True(t, table.HasDuplicateKeys())
	require.Equal(t, int64(2), table.NumDistinct())

	lookup := lookupFor([]int64{0}, []uint64{5}, 1)
	require.NoError(t, table.Probe(&lookup))

	cursor := NewCursor()
	mapping := make([]int64, 10)
	buildRows := make([]int64, 10)
	n := table.ListResults(cursor, &lookup, 10, false, mapping, buildRows)

	require.Equal(t, 3, n)
	require.Equal(t, []int64{0, 1, 2}, buildRows[:3])
	require.True(t, cursor.AtEnd())
}

func TestListResultsPagesAcrossMultipleCalls(t *testing.T) {
	table, _ := newBuildTable(t, []int64{1, 1, 1}, []bool{false, false, false}, true)
	lookup := lookupFor([]int64{0}, []uint64{1}, 1)
	require.NoError(t, table.Probe(&lookup))

	cursor := NewCursor()
	mapping := make([]int64, 2)
	buildRows := make([]int64, 2)

	n1 := table.ListResults(cursor, &lookup, 2, false, mapping, buildRows)
	require.Equal(t, 2, n1)
	require.False(t, cursor.AtEnd())

	n2 := table.ListResults(cursor, &lookup, 2, false, mapping, buildRows)
	require.Equal(t, 1, n2)
	require.True(t, cursor.AtEnd())
}

func TestListResultsHeadNotAtRowZero(t *testing.T) {
	// Build row 0 has a distinct key; the matching chain's head is row 1,
	// which a cursor defaulting its zero value to "resume at row 0"
	// instead of NoHit would get wrong.
	table, _ := newBuildTable(t, []int64{9, 2, 2}, []bool{false, false, false}, true)
	lookup := lookupFor([]int64{0}, []uint64{2}, 1)
	require.NoError(t, table.Probe(&lookup))

	cursor := NewCursor()
	mapping := make([]int64, 10)
	buildRows := make([]int64, 10)
	n := table.ListResults(cursor, &lookup, 10, false, mapping, buildRows)

	require.Equal(t, 2, n)
	require.Equal(t, []int64{1, 2}, buildRows[:2])
	require.True(t, cursor.AtEnd())
}

func TestListResultsIncludeMissesEmitsNoHit(t *testing.T) {
	table, _ := newBuildTable(t, []int64{1}, []bool{false}, true)
	lookup := lookupFor([]int64{0, 1}, []uint64{1, 42}, 2)
	require.NoError(t, table.Probe(&lookup))

	cursor := NewCursor()
	mapping := make([]int64, 10)
	buildRows := make([]int64, 10)
	n := table.ListResults(cursor, &lookup, 10, true, mapping, buildRows)

	require.Equal(t, 2, n)
	require.Equal(t, int64(0), mapping[0])
	require.Equal(t, int64(0), buildRows[0])
	require.Equal(t, int64(1), mapping[1])
	require.Equal(t, NoHit, buildRows[1])
}

func TestSetProbedAndListNotProbedListProbed(t *testing.T) {
	table, _ := newBuildTable(t, []int64{1, 2, 3}, []bool{false, false, false}, true)
	table.SetProbed([]int64{1, NoHit})

	iter := NewRowIter()
	out := make([]int64, 10)
	n := table.ListNotProbedRows(iter, 10, out)
	require.Equal(t, 2, n)
	require.ElementsMatch(t, []int64{0, 2}, out[:n])

	iter2 := NewRowIter()
	n2 := table.ListProbedRows(iter2, 10, out)
	require.Equal(t, 1, n2)
	require.Equal(t, int64(1), out[0])
}

func TestValueIDMode(t *testing.T) {
	table, _ := newBuildTable(t, []int64{7, 8, 7}, []bool{false, false, false}, false)
	require.False(t, table.HashMode())

	id7, ok := table.LookupValueID(7)
	require.True(t, ok)
	id8, ok := table.LookupValueID(8)
	require.True(t, ok)
	require.NotEqual(t, id7, id8)

	_, ok = table.LookupValueID(999)
	require.False(t, ok)

	require.ElementsMatch(t, []int32{id7, id8}, table.DistinctValueIDs())
}

func TestBuildKeyHasNullAndScanNullKeyRows(t *testing.T) {
	table, _ := newBuildTable(t, []int64{1, 0, 3}, []bool{false, true, false}, true)
	require.True(t, table.BuildKeyHasNull(1))
	require.False(t, table.BuildKeyHasNull(0))

	iter := NewRowIter()
	out := make([]int64, 10)
	n := table.ScanNullKeyRows(iter, 10, out)
	require.Equal(t, 1, n)
	require.Equal(t, int64(1), out[0])
}

func TestScanAllRowsPages(t *testing.T) {
	table, _ := newBuildTable(t, []int64{1, 2, 3, 4, 5}, make([]bool, 5), true)
	iter := NewRowIter()
	out := make([]int64, 2)

	n1 := table.ScanAllRows(iter, 2, out)
	require.Equal(t, 2, n1)
	n2 := table.ScanAllRows(iter, 2, out)
	require.Equal(t, 2, n2)
	n3 := table.ScanAllRows(iter, 2, out)
	require.Equal(t, 1, n3)
}

func TestBuildColumnAndNumBuildRows(t *testing.T) {
	table, b := newBuildTable(t, []int64{42}, []bool{false}, true)
	require.Equal(t, int64(1), table.NumBuildRows())
	require.Same(t, b.Vecs[0], table.BuildColumn(0))
}
