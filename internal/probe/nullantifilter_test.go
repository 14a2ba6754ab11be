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
	"github.com/vectorquery/hashprobe/plan"
)

// Both tests below key on column 0 and filter on column 1, so a residual
// filter outcome can be observed independently of the equality match
// that produced the candidate pair.

func TestNullAwareAntiFilterWithFilterEliminatesOnPass(t *testing.T) {
	in := batch.New(2)
	in.Vecs[0] = vector.NewFlatInt64([]int64{1, 1}, nil) // key, matches build row 0 twice over
	in.Vecs[1] = vector.NewFlatInt64([]int64{5, 10}, nil) // filter value

	build := batch.New(2)
	build.Vecs[0] = vector.NewFlatInt64([]int64{1}, nil)
	build.Vecs[1] = vector.NewFlatInt64([]int64{1}, nil)
	table := jointable.NewMemTable(build, []uint64{rowhash.Int64(1)}, []bool{false}, true)

	node := plan.JoinNode{
		JoinType:        plan.NullAwareAnti,
		LeftKeys:        []int{0},
		Filter:          greaterThanFilter(),
		FilterProbeCols: []int{1},
		FilterBuildCols: []int{1},
	}
	f := newNullAwareAntiFilter(node)

	var lookup jointable.HashLookup
	var nonNull bitmap.Bitmap
	var enc keyEncoder
	enc.encode(node.LeftKeys, in, table, &lookup, &nonNull)
	require.NoError(t, table.Probe(&lookup))
	expandRowsToFull(&lookup, 2)

	require.NoError(t, f.prepare(in, table, &lookup))

	mapping := make([]int64, 10)
	buildRows := make([]int64, 10)
	n := f.emitSurvivors(10, mapping, buildRows)
	// 5 > 1 and 10 > 1 both pass, so both candidate pairs eliminate their
	// probe row from the anti-join's output.
	require.Equal(t, 0, n)
	require.True(t, f.atEnd())
}

func TestNullAwareAntiFilterSurvivorWhenFilterNeverPasses(t *testing.T) {
	in := batch.New(2)
	in.Vecs[0] = vector.NewFlatInt64([]int64{1}, nil)
	in.Vecs[1] = vector.NewFlatInt64([]int64{1}, nil)

	build := batch.New(2)
	build.Vecs[0] = vector.NewFlatInt64([]int64{1}, nil)
	build.Vecs[1] = vector.NewFlatInt64([]int64{100}, nil)
	table := jointable.NewMemTable(build, []uint64{rowhash.Int64(1)}, []bool{false}, true)

	node := plan.JoinNode{
		JoinType:        plan.NullAwareAnti,
		LeftKeys:        []int{0},
		Filter:          greaterThanFilter(),
		FilterProbeCols: []int{1},
		FilterBuildCols: []int{1},
	}
	f := newNullAwareAntiFilter(node)

	var lookup jointable.HashLookup
	var nonNull bitmap.Bitmap
	var enc keyEncoder
	enc.encode(node.LeftKeys, in, table, &lookup, &nonNull)
	require.NoError(t, table.Probe(&lookup))
	expandRowsToFull(&lookup, 1)

	require.NoError(t, f.prepare(in, table, &lookup))

	mapping := make([]int64, 10)
	buildRows := make([]int64, 10)
	n := f.emitSurvivors(10, mapping, buildRows)
	require.Equal(t, 1, n, "1 > 100 is false, so the probe row survives the anti-join")
	require.Equal(t, int64(0), mapping[0])
	require.Equal(t, jointable.NoHit, buildRows[0])
}

func TestFilterProbeInputIsNull(t *testing.T) {
	nsp := nulls.New()
	nsp.Add(0)
	in := batch.New(1)
	in.Vecs[0] = vector.NewFlatInt64([]int64{0, 1}, nsp)

	require.True(t, filterProbeInputIsNull(in, []int{0}, 0))
	require.False(t, filterProbeInputIsNull(in, []int{0}, 1))
}
