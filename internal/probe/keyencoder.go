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
	"github.com/vectorquery/hashprobe/container/types"
	"github.com/vectorquery/hashprobe/container/vector"
	"github.com/vectorquery/hashprobe/internal/rowhash"
	"github.com/vectorquery/hashprobe/jointable"
)

// keyEncoder decodes a probe batch's key columns into lookup.Rows and
// lookup.Hashes, combining successive key columns into one value per row
// the way matrixone's hashtable package folds multi-column keys. It
// carries no state of its own; the join node's key-column positions are
// passed in on each call.
type keyEncoder struct{}

// encode walks every row of input, combining the hash of each column named
// by leftKeys. Rows with a null key column are left out of lookup.Rows and
// out of nonNullRows. lookup.Hashes always carries the combined hash,
// never a value-ID: MemTable.Probe (and any other Table implementation)
// groups build rows by that same combined hash in both hash mode and
// value-ID mode, so the probe side must key its lookup the same way
// regardless of mode. In value-ID mode, LookupValueID is consulted purely
// to drop rows whose key never appeared in the build side's dictionary,
// since such a row cannot possibly match; the translated ID itself is not
// used for the equality lookup.
func (keyEncoder) encode(leftKeys []int, input *batch.Batch, table jointable.Table, lookup *jointable.HashLookup, nonNullRows *bitmap.Bitmap) {
	n := input.RowCount()
	lookup.Reset()
	lookup.EnsureHitsCapacity(int(n))
	nonNullRows.Reset()
	nonNullRows.TryExpand(n)

	hashMode := table.HashMode()
	for r := int64(0); r < n; r++ {
		combined := uint64(0)
		hasNull := false
		for _, col := range leftKeys {
			h, ok := columnHash(input.Vecs[col], r)
			if !ok {
				hasNull = true
				break
			}
			combined = rowhash.Combine(combined, h)
		}
		if hasNull {
			continue
		}
		nonNullRows.Add(r)

		if !hashMode {
			if _, ok := table.LookupValueID(combined); !ok {
				continue
			}
		}
		lookup.Rows = append(lookup.Rows, r)
		lookup.Hashes = append(lookup.Hashes, combined)
	}
}

// expandRowsToFull replaces lookup.Rows with the ascending [0, n) range,
// for outer/anti modes once table.Probe has already run against the
// non-null-key subset. lookup.Hashes is left untouched; nothing reads it
// again for this input batch.
func expandRowsToFull(lookup *jointable.HashLookup, n int64) {
	lookup.Rows = lookup.Rows[:0]
	for r := int64(0); r < n; r++ {
		lookup.Rows = append(lookup.Rows, r)
	}
}

func columnHash(v *vector.Vector, row int64) (uint64, bool) {
	switch v.Type().Kind {
	case types.KindInt64:
		val, ok := v.Int64At(row)
		if !ok {
			return 0, false
		}
		return rowhash.Int64(val), true
	case types.KindFloat64:
		val, ok := v.Float64At(row)
		if !ok {
			return 0, false
		}
		return rowhash.Float64(val), true
	case types.KindString:
		val, ok := v.StringAt(row)
		if !ok {
			return 0, false
		}
		return rowhash.String(val), true
	case types.KindBool:
		val, ok := v.BoolAt(row)
		if !ok {
			return 0, false
		}
		return rowhash.Bool(val), true
	default:
		return 0, false
	}
}
