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
	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/vector"
)

// MemTable is a reference Table implementation over a single, fully
// materialized build-side batch, modeled on matrixone's
// pkg/common/hashmap.JoinMap (a hash value -> row-chain map plus a
// per-row "sels" duplicate list, probed via Iterator.Find in
// UnitLimit-sized pages). Production callers of this module supply their
// own Table backed by whatever hash table (and however many build
// batches) the build side constructed; MemTable exists so this module's
// own tests — and anyone learning the contract — have something concrete
// to probe against.
type MemTable struct {
	build      *batch.Batch
	numRows    int64
	hashMode   bool
	head       map[uint64]int64
	tail       map[uint64]int64
	next       []int64
	keyIsNull  []bool // per build row
	nullRows   []int64
	valueIDs   map[uint64]int32
	nextValIDs int32
	probed     *probedFlags
	dupKeys    bool
}

// NewMemTable builds a reference hash table over a build batch given one
// combined key hash per build row (produced the same way
// internal/rowhash.Combine produces probe-side hashes) and one
// keyIsNull per build row (true if any key column is null at that row).
// hashMode selects whether Table.HashMode reports hash mode or value-ID
// mode; in both modes MemTable groups rows by the provided hash, since
// value-ID assignment is just a deterministic renumbering of those same
// groups.
func NewMemTable(build *batch.Batch, keyHashes []uint64, keyIsNull []bool, hashMode bool) *MemTable {
	n := int64(len(keyHashes))
	t := &MemTable{
		build:     build,
		numRows:   n,
		hashMode:  hashMode,
		head:      make(map[uint64]int64),
		tail:      make(map[uint64]int64),
		next:      make([]int64, n),
		keyIsNull: keyIsNull,
		valueIDs:  make(map[uint64]int32),
	}
	for i := range t.next {
		t.next[i] = NoHit
	}
	for row, h := range keyHashes {
		r := int64(row)
		if keyIsNull[row] {
			t.nullRows = append(t.nullRows, r)
			continue
		}
		if _, ok := t.valueIDs[h]; !ok {
			t.valueIDs[h] = t.nextValIDs
			t.nextValIDs++
		}
		if _, ok := t.head[h]; !ok {
			t.head[h] = r
			t.tail[h] = r
		} else {
			t.next[t.tail[h]] = r
			t.tail[h] = r
			t.dupKeys = true
		}
	}
	t.probed = newProbedFlags(n)
	return t
}

func (t *MemTable) Probe(lookup *HashLookup) error {
	for i, r := range lookup.Rows {
		h := lookup.Hashes[i]
		if head, ok := t.head[h]; ok {
			lookup.Hits[r] = head
		} else {
			lookup.Hits[r] = NoHit
		}
	}
	return nil
}

func (t *MemTable) ListResults(cursor *ResultCursor, lookup *HashLookup, capacity int, includeMisses bool, mapping, buildRows []int64) int {
	n := 0
	for n < capacity && cursor.pos < len(lookup.Rows) {
		r := lookup.Rows[cursor.pos]
		if cursor.curBuild == NoHit {
			head := lookup.Hits[r]
			if head == NoHit {
				if includeMisses {
					mapping[n] = r
					buildRows[n] = NoHit
					n++
				}
				cursor.pos++
				continue
			}
			cursor.curBuild = head
		}
		mapping[n] = r
		buildRows[n] = cursor.curBuild
		n++
		cursor.curBuild = t.next[cursor.curBuild]
		if cursor.curBuild == NoHit {
			cursor.pos++
		}
	}
	cursor.done = cursor.pos >= len(lookup.Rows)
	return n
}

func (t *MemTable) ListNotProbedRows(iter *RowIter, capacity int, out []int64) int {
	return t.scanByProbed(iter, capacity, out, false)
}

func (t *MemTable) ListProbedRows(iter *RowIter, capacity int, out []int64) int {
	return t.scanByProbed(iter, capacity, out, true)
}

func (t *MemTable) scanByProbed(iter *RowIter, capacity int, out []int64, wantProbed bool) int {
	n := 0
	for n < capacity && iter.pos < t.numRows {
		if t.probed.isSet(iter.pos) == wantProbed {
			out[n] = iter.pos
			n++
		}
		iter.pos++
	}
	return n
}

func (t *MemTable) SetProbed(rows []int64) {
	for _, r := range rows {
		if r == NoHit {
			continue
		}
		t.probed.set(r)
	}
}

func (t *MemTable) HasDuplicateKeys() bool { return t.dupKeys }
func (t *MemTable) NumDistinct() int64     { return int64(len(t.head)) }
func (t *MemTable) HashMode() bool         { return t.hashMode }

func (t *MemTable) LookupValueID(key uint64) (int32, bool) {
	id, ok := t.valueIDs[key]
	return id, ok
}

func (t *MemTable) DistinctValueIDs() []int32 {
	ids := make([]int32, 0, len(t.valueIDs))
	for _, id := range t.valueIDs {
		ids = append(ids, id)
	}
	return ids
}

func (t *MemTable) NumBuildRows() int64 { return t.numRows }

func (t *MemTable) BuildColumn(idx int) *vector.Vector {
	return t.build.Vecs[idx]
}

func (t *MemTable) BuildKeyHasNull(row int64) bool {
	return t.keyIsNull[row]
}

func (t *MemTable) ScanAllRows(iter *RowIter, capacity int, out []int64) int {
	n := 0
	for n < capacity && iter.pos < t.numRows {
		out[n] = iter.pos
		n++
		iter.pos++
	}
	return n
}

func (t *MemTable) ScanNullKeyRows(iter *RowIter, capacity int, out []int64) int {
	n := 0
	for n < capacity && iter.pos < int64(len(t.nullRows)) {
		out[n] = t.nullRows[iter.pos]
		n++
		iter.pos++
	}
	return n
}
