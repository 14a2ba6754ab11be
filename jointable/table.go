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

// Package jointable is the thin facade over the build-side hash table.
// Constructing that hash table is out of scope here; this package
// defines the contract the probe operator drives it through, plus a
// reference in-memory implementation, MemTable, grounded on matrixone's
// pkg/common/hashmap.JoinMap and its Iterator.Find bulk-lookup convention,
// so the operator and its tests have a concrete table to run against.
package jointable

import (
	"sync/atomic"

	"github.com/vectorquery/hashprobe/container/vector"
)

// RowPtr addresses a build-side row, or NoHit when there is none.
type RowPtr = int64

// NoHit is the null-sentinel hit value.
const NoHit RowPtr = -1

// HashLookup is the mutable scratch shared across a probe call: the
// ordered input rows being probed, their combined key hashes, and the
// build-row pointer each one resolved to.
type HashLookup struct {
	Rows   []int64
	Hashes []uint64
	Hits   []RowPtr
}

// Reset truncates the lookup back to empty without releasing backing
// arrays, so it can be reused across batches.
func (l *HashLookup) Reset() {
	l.Rows = l.Rows[:0]
	l.Hashes = l.Hashes[:0]
	l.Hits = l.Hits[:0]
}

// EnsureHitsCapacity grows Hits to length n, filling new slots with NoHit.
// n is always the input batch's row count, never inferred from Rows'
// contents.
func (l *HashLookup) EnsureHitsCapacity(n int) {
	if len(l.Hits) >= n {
		return
	}
	grown := make([]RowPtr, n)
	copy(grown, l.Hits)
	for i := len(l.Hits); i < n; i++ {
		grown[i] = NoHit
	}
	l.Hits = grown
}

// ResultCursor iterates the cartesian pairing a Table.ListResults call
// produces for one input batch.
type ResultCursor struct {
	pos      int   // index into the lookup's effective row sequence
	curBuild int64 // build row resuming a duplicate-key chain mid-walk, or NoHit to start fresh
	done     bool
}

// AtEnd reports whether the cursor has exhausted the current lookup.
func (c *ResultCursor) AtEnd() bool { return c.done }

// NewCursor returns a fresh cursor positioned at the start of lookup.
func NewCursor() *ResultCursor { return &ResultCursor{curBuild: NoHit} }

// Table is the facade over a build-side hash table that the probe
// operator drives.
type Table interface {
	// Probe populates lookup.Hits[lookup.Rows[i]] for every i, with the
	// head of a same-key build-row chain or NoHit.
	Probe(lookup *HashLookup) error

	// ListResults produces up to cap (probeRow, buildRow) pairs from
	// cursor's current position, walking duplicate-key chains in
	// ascending (probeRow, chain-position) order. When includeMisses is
	// true, probe rows whose Hits slot is NoHit also emit one
	// (probeRow, NoHit) pair. mapping and buildRows are sized by the caller
	// and written from index 0 on every call; n is the count written.
	ListResults(cursor *ResultCursor, lookup *HashLookup, capacity int, includeMisses bool, mapping, buildRows []int64) (n int)

	// ListNotProbedRows iterates build rows whose probed flag is unset,
	// used for right/full emission once probing input is exhausted.
	ListNotProbedRows(iter *RowIter, capacity int, out []int64) (n int)
	// ListProbedRows iterates build rows whose probed flag is set, used
	// for right-semi emission.
	ListProbedRows(iter *RowIter, capacity int, out []int64) (n int)

	// SetProbed marks the given build rows as matched.
	SetProbed(rows []int64)

	HasDuplicateKeys() bool
	NumDistinct() int64
	HashMode() bool

	// LookupValueID translates a probe key's 64-bit encoding (produced the
	// same way as a build-time hash) to the build-time dictionary ID, for
	// value-ID mode. ok is false if the value never appeared in the
	// build side.
	LookupValueID(key uint64) (id int32, ok bool)

	// DistinctValueIDs returns every value-ID assigned at build time, for
	// DynamicFilterPublisher to synthesize a pushdown value-set filter
	// from.
	DistinctValueIDs() []int32

	NumBuildRows() int64
	BuildColumn(idx int) *vector.Vector
	BuildKeyHasNull(row int64) bool

	// ScanAllRows and ScanNullKeyRows support the null-aware anti-join's
	// second pass: ScanAllRows pages over every build row, ScanNullKeyRows
	// only those whose key contains a null.
	ScanAllRows(iter *RowIter, capacity int, out []int64) (n int)
	ScanNullKeyRows(iter *RowIter, capacity int, out []int64) (n int)
}

// RowIter is a resumable cursor over the build row container, shared by
// the several paging contracts above.
type RowIter struct {
	pos int64
}

// NewRowIter returns a fresh build-row iterator.
func NewRowIter() *RowIter { return &RowIter{} }

// AtEnd reports whether the iterator is exhausted. Callers normally
// learn this from the 0 count returned by the last page; AtEnd is
// provided for convenience against a known NumRows.
func (it *RowIter) AtEnd(numRows int64) bool { return it.pos >= numRows }

// probedFlags is a simple atomic bitset over build rows: setting a build
// row's probed flag is the only state every concurrent probe driver
// writes, so it uses one atomic bit per build row rather than a lock.
type probedFlags struct {
	words []uint32
}

func newProbedFlags(n int64) *probedFlags {
	return &probedFlags{words: make([]uint32, (n+31)/32)}
}

func (f *probedFlags) set(row int64) {
	addr := &f.words[row/32]
	bit := uint32(1) << (uint(row) % 32)
	for {
		old := atomic.LoadUint32(addr)
		if old&bit != 0 {
			return
		}
		if atomic.CompareAndSwapUint32(addr, old, old|bit) {
			return
		}
	}
}

func (f *probedFlags) isSet(row int64) bool {
	return atomic.LoadUint32(&f.words[row/32])&(1<<(uint(row)%32)) != 0
}
