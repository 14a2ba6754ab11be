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

// Package probe implements the probe-side hash-join operator: key
// encoding, the lookup scratch buffer, the ProbeDriver state machine,
// residual-filter evaluation, null-aware anti-join handling, output
// assembly, and dynamic-filter publication. Join-mode dispatch lives here
// as a tagged plan.JoinType switch rather than per-mode subpackages —
// matrixone spreads the same logic across
// pkg/sql/colexec/{join,left,anti,semi,rightsemi,rightanti}, which this
// module collapses into one operator parameterized by join type instead
// of nine separate ones.
package probe

import (
	"github.com/vectorquery/hashprobe/bridge"
	"github.com/vectorquery/hashprobe/config"
	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/bitmap"
	"github.com/vectorquery/hashprobe/container/types"
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/plan"
)

// State is the operator's lifecycle state.
type State int

const (
	StateInitial State = iota
	StateWaitForBuild
	StateRunning
	StateDrainUnmatchedBuild
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateWaitForBuild:
		return "WaitForBuild"
	case StateRunning:
		return "Running"
	case StateDrainUnmatchedBuild:
		return "DrainUnmatchedBuild"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// BlockReason is returned by IsBlocked.
type BlockReason int

const (
	NotBlocked BlockReason = iota
	WaitForJoinBuild
)

// Stats are the runtime statistics the operator reports.
type Stats struct {
	ReplacedWithDynamicFilterRows int64
}

// Driver is the probe-side operator state machine, implementing the
// IsBlocked/AddInput/NeedsInput/GetOutput/NoMoreInput/IsFinished
// operator contract.
type Driver struct {
	node        plan.JoinNode
	cfg         config.Config
	joinBridge  bridge.JoinBridge
	barrier     *bridge.BarrierClient // nil unless node.JoinType.IsRightFamily()
	dynPublish  *dynamicFilterPublisher
	state       State
	table       jointable.Table
	antiAllNull bool // build reported "anti-join universally empty" (null build keys)

	replacedWithDynamicFilter bool

	// Probe-side column types, captured from the first AddInput call. Only
	// needed for DrainUnmatchedBuild's null-constant probe columns.
	probeColTypes []types.Type

	// Per-input scratch, reused across batches.
	input       *batch.Batch
	lookup      jointable.HashLookup
	keyEnc      keyEncoder
	nonNullRows bitmap.Bitmap
	cursor      *jointable.ResultCursor
	drainIter   *jointable.RowIter

	// mapping/buildRows hold the output rows a GetOutput call is about to
	// assemble; rawMapping/rawBuildRows hold the raw page ListResults just
	// produced, before residual-filter compaction and no-match padding.
	mapping      []int64
	buildRows    []int64
	rawMapping   []int64
	rawBuildRows []int64

	noMatch  *noMatchDetector
	leftSemi *leftSemiTracker
	filt     *residualFilter
	nullAnti *nullAwareAntiFilter
	asm      *outputAssembler

	noMoreInputCalled bool
	isLastProbeDriver bool

	stats Stats
}

// NewDriver constructs a ProbeDriver for one join node, pulling its build
// table through jb and, for right/full/right-semi, its last-probe
// election through bc (which must be nil otherwise). sink may be nil; if
// non-nil, it receives any dynamic filter this driver publishes.
func NewDriver(node plan.JoinNode, cfg config.Config, jb bridge.JoinBridge, bc *bridge.BarrierClient, sink PushdownSink) *Driver {
	d := &Driver{
		node:       node,
		cfg:        cfg,
		joinBridge: jb,
		barrier:    bc,
		dynPublish: newDynamicFilterPublisher(sink),
		state:      StateInitial,
		cursor:     jointable.NewCursor(),
		asm:        newOutputAssembler(node),
	}
	switch node.JoinType {
	case plan.Left, plan.Full:
		d.noMatch = newNoMatchDetector()
	case plan.LeftSemi:
		d.leftSemi = newLeftSemiTracker()
	}
	if node.Filter != nil {
		d.filt = newResidualFilter(node)
	}
	if node.JoinType == plan.NullAwareAnti {
		d.nullAnti = newNullAwareAntiFilter(node)
	}
	return d
}

// Stats returns a snapshot of this driver's runtime statistics.
func (d *Driver) Stats() Stats { return d.stats }

// IsLastProbeDriver reports whether this driver won the last-probe
// barrier and is (or was) responsible for DrainUnmatchedBuild. Only
// meaningful once NoMoreInput has been called.
func (d *Driver) IsLastProbeDriver() bool { return d.isLastProbeDriver }
