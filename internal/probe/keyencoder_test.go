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
	"github.com/vectorquery/hashprobe/container/bitmap"
	"github.com/vectorquery/hashprobe/container/nulls"
	"github.com/vectorquery/hashprobe/container/vector"
	"github.com/vectorquery/hashprobe/internal/rowhash"
	"github.com/vectorquery/hashprobe/jointable"
)

func TestKeyEncoderSkipsNullKeyRows(t *testing.T) {
	nsp := nulls.New()
	nsp.Add(1)
	in := batch.New(1)
	in.Vecs[0] = vector.NewFlatInt64([]int64{10, 0, 30}, nsp)

	build := batch.New(1)
	build.Vecs[0] = vector.NewFlatInt64([]int64{10, 30}, nil)
	buildHashes := []uint64{rowhash.Int64(10), rowhash.Int64(30)}
	table := jointable.NewMemTable(build, buildHashes, []bool{false, false}, true)

	var lookup jointable.HashLookup
	var nonNull bitmap.Bitmap
	var enc keyEncoder
	enc.encode([]int{0}, in, table, &lookup, &nonNull)

	require.Equal(t, []int64{0, 2}, lookup.Rows)
	require.True(t, nonNull.Contains(0))
	require.False(t, nonNull.Contains(1))
	require.True(t, nonNull.Contains(2))
}

func TestKeyEncoderValueIDModeSkipsUnknownKeys(t *testing.T) {
	in := batch.New(1)
	in.Vecs[0] = vector.NewFlatInt64([]int64{1, 2, 3}, nil)

	build := batch.New(1)
	build.Vecs[0] = vector.NewFlatInt64([]int64{1, 3}, nil)
	buildHashes := []uint64{rowhash.Int64(1), rowhash.Int64(3)}
	table := jointable.NewMemTable(build, buildHashes, []bool{false, false}, false)

	var lookup jointable.HashLookup
	var nonNull bitmap.Bitmap
	var enc keyEncoder
	enc.encode([]int{0}, in, table, &lookup, &nonNull)

	// row 1 (key=2) never appeared in the build side's dictionary.
	require.Equal(t, []int64{0, 2}, lookup.Rows)
	require.True(t, nonNull.Contains(1), "value-ID skip must not be confused with a null key")
}

func TestKeyEncoderValueIDModeProbeResolvesHits(t *testing.T) {
	// lookup.Hashes must stay keyed by the combined hash even in value-ID
	// mode: MemTable.head is always keyed by that hash, never by the
	// value-ID LookupValueID translates to.
	in := batch.New(1)
	in.Vecs[0] = vector.NewFlatInt64([]int64{7, 8, 9}, nil)

	build := batch.New(1)
	build.Vecs[0] = vector.NewFlatInt64([]int64{7, 8}, nil)
	buildHashes := []uint64{rowhash.Int64(7), rowhash.Int64(8)}
	table := jointable.NewMemTable(build, buildHashes, []bool{false, false}, false)
	require.False(t, table.HashMode())

	var lookup jointable.HashLookup
	var nonNull bitmap.Bitmap
	var enc keyEncoder
	enc.encode([]int{0}, in, table, &lookup, &nonNull)

	require.NoError(t, table.Probe(&lookup))
	require.Equal(t, int64(0), lookup.Hits[0], "row 0 (key=7) must resolve to build row 0")
	require.Equal(t, int64(1), lookup.Hits[1], "row 1 (key=8) must resolve to build row 1")
}

func TestKeyEncoderCombinesMultipleColumns(t *testing.T) {
	in := batch.New(2)
	in.Vecs[0] = vector.NewFlatInt64([]int64{1, 1}, nil)
	in.Vecs[1] = vector.NewFlatString([]string{"a", "b"}, nil)

	build := batch.New(2)
	build.Vecs[0] = vector.NewFlatInt64([]int64{1}, nil)
	build.Vecs[1] = vector.NewFlatString([]string{"a"}, nil)
	combined := rowhash.Combine(rowhash.Combine(0, rowhash.Int64(1)), rowhash.String("a"))
	table := jointable.NewMemTable(build, []uint64{combined}, []bool{false}, true)

	var lookup jointable.HashLookup
	var nonNull bitmap.Bitmap
	var enc keyEncoder
	enc.encode([]int{0, 1}, in, table, &lookup, &nonNull)

	require.NoError(t, table.Probe(&lookup))
	require.Equal(t, int64(0), lookup.Hits[0])
	require.Equal(t, jointable.NoHit, lookup.Hits[1])
}

func TestExpandRowsToFullCoversEveryRow(t *testing.T) {
	lookup := jointable.HashLookup{Rows: []int64{0, 2}}
	expandRowsToFull(&lookup, 4)
	require.Equal(t, []int64{0, 1, 2, 3}, lookup.Rows)
}
