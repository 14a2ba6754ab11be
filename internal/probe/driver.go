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
	"context"

	"go.uber.org/zap"

	"github.com/vectorquery/hashprobe/common/joinerr"
	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/types"
	"github.com/vectorquery/hashprobe/expreval"
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/logutil"
	"github.com/vectorquery/hashprobe/plan"
)

// IsBlocked drives the Initial -> WaitForBuild transition and, while in
// WaitForBuild, polls the join bridge for the build table. Once Running
// (or Finished) it never blocks again.
func (d *Driver) IsBlocked(ctx context.Context) (BlockReason, <-chan struct{}, error) {
	if d.state == StateInitial {
		d.state = StateWaitForBuild
	}
	if d.state != StateWaitForBuild {
		return NotBlocked, nil, nil
	}

	result, wait, err := d.joinBridge.TableOrFuture(ctx)
	if err != nil {
		return NotBlocked, nil, joinerr.NewCancelled(err)
	}
	if wait != nil {
		return WaitForJoinBuild, wait, nil
	}

	d.table = result.Table
	d.antiAllNull = result.AntiJoinHasNullKeys

	if d.node.JoinType == plan.NullAwareAnti && d.antiAllNull {
		logutil.Debug("null-aware anti-join short-circuited: build has null keys")
		d.state = StateFinished
		return NotBlocked, nil, nil
	}
	if d.table.NumBuildRows() == 0 {
		switch d.node.JoinType {
		case plan.Inner, plan.Right, plan.RightSemi, plan.LeftSemi:
			logutil.Debug("probe driver short-circuited on empty build", zap.String("joinType", d.node.JoinType.String()))
			d.state = StateFinished
			return NotBlocked, nil, nil
		}
	}

	if d.dynPublish.publish(d.node, d.table, d.cfg.DynamicFilterMaxDistinct) {
		d.replacedWithDynamicFilter = true
		logutil.Info("probe driver replaced with dynamic filter pass-through", zap.String("joinType", d.node.JoinType.String()))
	}
	logutil.Debug("probe driver entering Running", zap.String("joinType", d.node.JoinType.String()), zap.Int64("buildRows", d.table.NumBuildRows()))
	d.state = StateRunning
	return NotBlocked, nil, nil
}

// NeedsInput reports whether the driver is ready to accept another batch.
func (d *Driver) NeedsInput() bool {
	return d.state == StateRunning && d.input == nil && !d.noMoreInputCalled
}

// AddInput hands the driver one probe batch. It must not be called unless
// NeedsInput is true.
func (d *Driver) AddInput(b *batch.Batch) error {
	if !d.NeedsInput() {
		return joinerr.NewContractViolation("AddInput called while driver is not accepting input (state=%s)", d.state)
	}
	if d.probeColTypes == nil {
		d.probeColTypes = make([]types.Type, len(b.Vecs))
		for i, v := range b.Vecs {
			d.probeColTypes[i] = v.Type()
		}
	}
	d.input = b
	d.cursor = jointable.NewCursor()
	if d.noMatch != nil {
		d.noMatch.reset()
	}
	if d.leftSemi != nil {
		d.leftSemi.reset()
	}
	if d.nullAnti != nil {
		d.nullAnti.reset()
	}

	if d.replacedWithDynamicFilter {
		d.stats.ReplacedWithDynamicFilterRows += b.RowCount()
		return nil
	}

	d.keyEnc.encode(d.node.LeftKeys, b, d.table, &d.lookup, &d.nonNullRows)
	if err := d.table.Probe(&d.lookup); err != nil {
		return err
	}
	if d.node.JoinType.IsOuterOrAnti() {
		expandRowsToFull(&d.lookup, b.RowCount())
	}
	return nil
}

// GetOutput produces the next output batch for the input currently held,
// or (nil, nil) when either more input is needed or draining has nothing
// left to emit right now.
func (d *Driver) GetOutput() (*batch.Batch, error) {
	if d.state == StateDrainUnmatchedBuild {
		return d.drainUnmatchedBuild()
	}
	if d.state != StateRunning || d.input == nil {
		return nil, nil
	}

	if d.replacedWithDynamicFilter {
		out := d.input
		d.input = nil
		return out, nil
	}

	inputSize := int(d.input.RowCount())

	switch {
	case d.table.NumBuildRows() == 0:
		d.ensureScratch(inputSize + 1)
		numOut := d.emitIdentityMapping(inputSize)
		out, err := d.assembleIfAny(numOut)
		d.input = nil
		return out, err

	case d.node.JoinType == plan.NullAwareAnti && d.node.Filter == nil:
		d.ensureScratch(inputSize + 1)
		numOut := d.emitNullAwareAntiNoFilter(inputSize)
		out, err := d.assembleIfAny(numOut)
		d.input = nil
		return out, err

	case d.node.JoinType == plan.NullAwareAnti:
		if err := d.nullAnti.prepare(d.input, d.table, &d.lookup); err != nil {
			return nil, err
		}
		capacity := d.cfg.PreferredOutputBatchSize
		d.ensureScratch(capacity)
		numOut := d.nullAnti.emitSurvivors(capacity, d.mapping, d.buildRows)
		if numOut == 0 {
			d.input = nil
			return nil, nil
		}
		out := d.asm.assemble(d.input, d.table, d.mapping, d.buildRows, numOut)
		if d.nullAnti.atEnd() {
			d.input = nil
		}
		return out, nil

	default:
		return d.getOutputGeneral(inputSize)
	}
}

// getOutputGeneral handles every join mode but the two build-empty and
// null-aware-anti cases above: inner, left, full, left-semi, right and
// right-semi, each driven by Table.ListResults paging through the
// current input's candidate pairs.
func (d *Driver) getOutputGeneral(inputSize int) (*batch.Batch, error) {
	capacity := d.cfg.PreferredOutputBatchSize
	d.ensureScratch(capacity + 1)

	numOut, err := d.emitGeneral(capacity)
	if err != nil {
		return nil, err
	}
	if numOut == 0 {
		// emitGeneral can return 0 either because ListResults has nothing
		// left (cursor at end, this input is done) or because a full page
		// of candidate pairs post-filtered to zero with more pairs still
		// pending. Only the former may consume the input; the latter must
		// keep paging on the next GetOutput call.
		if d.cursor.AtEnd() {
			d.input = nil
		}
		return nil, nil
	}

	if d.node.JoinType.IsRightFamily() {
		d.table.SetProbed(d.buildRows[:numOut])
	}
	if d.node.JoinType == plan.RightSemi {
		if d.cursor.AtEnd() {
			d.input = nil
		}
		return nil, nil
	}

	out := d.asm.assemble(d.input, d.table, d.mapping, d.buildRows, numOut)
	if d.cursor.AtEnd() {
		d.input = nil
	}
	return out, nil
}

// emitGeneral pulls one page of candidate pairs and, depending on join
// type, turns it into the final (mapping, buildRows) output selection.
func (d *Driver) emitGeneral(capacity int) (int, error) {
	includeMisses := d.node.JoinType == plan.Left || d.node.JoinType == plan.Full
	n := d.table.ListResults(d.cursor, &d.lookup, capacity, includeMisses, d.rawMapping[:capacity], d.rawBuildRows[:capacity])
	if n == 0 {
		return 0, nil
	}
	switch d.node.JoinType {
	case plan.LeftSemi:
		return d.applyLeftSemi(n)
	case plan.Left, plan.Full:
		return d.applyLeftFull(n)
	default:
		return d.applyPlainFilter(n)
	}
}

// applyPlainFilter handles inner, right and right-semi: every pair either
// passes the residual filter (or there is none) or is dropped outright.
func (d *Driver) applyPlainFilter(n int) (int, error) {
	if d.node.Filter == nil {
		copy(d.mapping[:n], d.rawMapping[:n])
		copy(d.buildRows[:n], d.rawBuildRows[:n])
		return n, nil
	}
	result, err := d.filt.eval(d.input, d.table, d.rawMapping, d.rawBuildRows, n)
	if err != nil {
		return 0, joinerr.NewEvaluator(err)
	}
	copy(d.mapping[:n], d.rawMapping[:n])
	copy(d.buildRows[:n], d.rawBuildRows[:n])
	return compactPassing(d.mapping, d.buildRows, n, result), nil
}

// applyLeftSemi applies the residual filter (if any) and the
// at-most-once-per-probe-row rule.
func (d *Driver) applyLeftSemi(n int) (int, error) {
	var result *expreval.BoolColumn
	if d.node.Filter != nil {
		r, err := d.filt.eval(d.input, d.table, d.rawMapping, d.rawBuildRows, n)
		if err != nil {
			return 0, joinerr.NewEvaluator(err)
		}
		result = r
	}
	out := 0
	for i := 0; i < n; i++ {
		passed := true
		if result != nil {
			passed = result.At(i)
		}
		if d.leftSemi.shouldEmit(d.rawMapping[i], passed) {
			d.mapping[out] = d.rawMapping[i]
			d.buildRows[out] = d.rawBuildRows[i]
			out++
		}
	}
	return out, nil
}

// applyLeftFull separates the page's real (probe, build) matches from its
// includeMisses placeholders, evaluates the residual filter over the real
// matches, and feeds every observation through noMatch in order so a
// synthetic (row, no-match) pair is emitted for any probe row none of
// whose candidates passed.
func (d *Driver) applyLeftFull(n int) (int, error) {
	realN := 0
	for i := 0; i < n; i++ {
		if d.rawBuildRows[i] != jointable.NoHit {
			realN++
		}
	}

	var result *expreval.BoolColumn
	if d.node.Filter != nil && realN > 0 {
		cm := make([]int64, realN)
		cb := make([]int64, realN)
		k := 0
		for i := 0; i < n; i++ {
			if d.rawBuildRows[i] == jointable.NoHit {
				continue
			}
			cm[k] = d.rawMapping[i]
			cb[k] = d.rawBuildRows[i]
			k++
		}
		r, err := d.filt.eval(d.input, d.table, cm, cb, realN)
		if err != nil {
			return 0, joinerr.NewEvaluator(err)
		}
		result = r
	}

	out := 0
	realPos := 0
	for i := 0; i < n; i++ {
		j := d.rawMapping[i]
		var passed bool
		switch {
		case d.rawBuildRows[i] == jointable.NoHit:
			passed = false
		case d.node.Filter == nil:
			passed = true
		default:
			passed = result.At(realPos)
			realPos++
		}

		if emit, missRow := d.noMatch.advance(j, passed); emit {
			d.mapping[out] = missRow
			d.buildRows[out] = jointable.NoHit
			out++
		}
		if passed {
			d.mapping[out] = j
			d.buildRows[out] = d.rawBuildRows[i]
			out++
		}
	}

	if d.cursor.AtEnd() {
		if emit, missRow := d.noMatch.finish(); emit {
			d.mapping[out] = missRow
			d.buildRows[out] = jointable.NoHit
			out++
		}
	}
	return out, nil
}

// emitIdentityMapping maps every probe row to a (row, NoHit) pair,
// unconditionally, for left/full/null-aware-anti over an empty build side
// (every probe row survives with nothing on the build side to pair it
// with).
func (d *Driver) emitIdentityMapping(n int) int {
	for i := 0; i < n; i++ {
		d.mapping[i] = int64(i)
		d.buildRows[i] = jointable.NoHit
	}
	return n
}

// emitNullAwareAntiNoFilter is the no-residual-filter fast path: a probe
// row survives the anti-join iff its key is non-null and the equality
// lookup found no build match.
func (d *Driver) emitNullAwareAntiNoFilter(n int) int {
	out := 0
	for i := int64(0); i < int64(n); i++ {
		if !d.nonNullRows.Contains(i) {
			continue
		}
		if d.lookup.Hits[i] != jointable.NoHit {
			continue
		}
		d.mapping[out] = i
		d.buildRows[out] = jointable.NoHit
		out++
	}
	return out
}

// assembleIfAny assembles an output batch for numOut rows, or returns nil
// if there is nothing to emit.
func (d *Driver) assembleIfAny(numOut int) (*batch.Batch, error) {
	if numOut == 0 {
		return nil, nil
	}
	return d.asm.assemble(d.input, d.table, d.mapping, d.buildRows, numOut), nil
}

// ensureScratch grows the per-batch scratch slices to at least n.
func (d *Driver) ensureScratch(n int) {
	d.mapping = ensureLen(d.mapping, n)
	d.buildRows = ensureLen(d.buildRows, n)
	d.rawMapping = ensureLen(d.rawMapping, n)
	d.rawBuildRows = ensureLen(d.rawBuildRows, n)
}

func ensureLen(s []int64, n int) []int64 {
	if cap(s) < n {
		return make([]int64, n)
	}
	return s[:n]
}

// drainUnmatchedBuild emits build rows left over once every peer probe
// driver has finished: unprobed rows for right/full, probed rows for
// right-semi.
func (d *Driver) drainUnmatchedBuild() (*batch.Batch, error) {
	if d.drainIter == nil {
		d.drainIter = jointable.NewRowIter()
	}
	capacity := d.cfg.PreferredOutputBatchSize
	d.buildRows = ensureLen(d.buildRows, capacity)

	var n int
	if d.node.JoinType == plan.RightSemi {
		n = d.table.ListProbedRows(d.drainIter, capacity, d.buildRows)
	} else {
		n = d.table.ListNotProbedRows(d.drainIter, capacity, d.buildRows)
	}
	if n == 0 {
		d.state = StateFinished
		return nil, nil
	}
	return d.asm.assembleUnmatchedBuild(d.table, d.buildRows, n, d.probeColTypes), nil
}

// NoMoreInput signals end-of-input on this driver. Right/full/right-semi
// drivers rendezvous at the barrier; only the last to arrive proceeds to
// DrainUnmatchedBuild.
func (d *Driver) NoMoreInput() error {
	d.noMoreInputCalled = true
	if d.state != StateRunning {
		return nil
	}
	if d.node.JoinType.IsRightFamily() {
		if d.barrier == nil {
			return joinerr.NewContractViolation("right-family driver has no barrier client")
		}
		if d.barrier.AllPeersFinished() {
			logutil.Info("probe driver won last-probe barrier, draining build table", zap.String("joinType", d.node.JoinType.String()))
			d.isLastProbeDriver = true
			d.state = StateDrainUnmatchedBuild
			return nil
		}
	}
	d.state = StateFinished
	return nil
}

// IsFinished reports whether the driver has nothing left to produce.
func (d *Driver) IsFinished() bool {
	return d.state == StateFinished
}
