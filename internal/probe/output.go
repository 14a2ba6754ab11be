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
	"github.com/vectorquery/hashprobe/container/types"
	"github.com/vectorquery/hashprobe/container/vector"
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/plan"
)

// outputAssembler builds the operator's output batches: probe columns
// are dictionary-wrapped over the current row mapping (no copy), build
// columns are bulk-extracted from the build table. It reuses its
// previous output batch's column slots across calls rather than
// reallocating the *batch.Batch shell every time.
type outputAssembler struct {
	node plan.JoinNode
	prev *batch.Batch
}

func newOutputAssembler(node plan.JoinNode) *outputAssembler {
	return &outputAssembler{node: node}
}

func (a *outputAssembler) acquire() *batch.Batch {
	if a.prev == nil {
		a.prev = batch.New(len(a.node.Result))
	}
	return a.prev
}

// assemble builds an output batch for n emitted (probeRow, buildRow)
// pairs: mapping[0:n] names the probe rows, buildRows[0:n] the build
// rows.
func (a *outputAssembler) assemble(input *batch.Batch, table jointable.Table, mapping, buildRows []int64, n int) *batch.Batch {
	out := a.acquire()
	for outCol, rc := range a.node.Result {
		switch rc.Rel {
		case plan.ProbeSide:
			out.Vecs[outCol] = input.Vecs[rc.Pos].Wrap(mapping[:n])
		case plan.BuildSide:
			out.Vecs[outCol] = table.BuildColumn(rc.Pos).Extract(buildRows[:n])
		}
	}
	return out
}

// assembleUnmatchedBuild builds an output batch for n unmatched build
// rows during DrainUnmatchedBuild: probe columns are typed null
// constants (there is no probe input left to wrap), build columns are
// extracted as usual. probeColTypes gives the probe schema's column
// types, captured from the first input batch this driver ever saw.
func (a *outputAssembler) assembleUnmatchedBuild(table jointable.Table, buildRows []int64, n int, probeColTypes []types.Type) *batch.Batch {
	out := a.acquire()
	for outCol, rc := range a.node.Result {
		switch rc.Rel {
		case plan.ProbeSide:
			out.Vecs[outCol] = vector.NewConstNull(probeColTypes[rc.Pos], int64(n))
		case plan.BuildSide:
			out.Vecs[outCol] = table.BuildColumn(rc.Pos).Extract(buildRows[:n])
		}
	}
	return out
}
