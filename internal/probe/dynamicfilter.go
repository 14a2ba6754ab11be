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
	"github.com/vectorquery/hashprobe/jointable"
	"github.com/vectorquery/hashprobe/plan"
)

// PushdownFilter is what DynamicFilterPublisher hands to an upstream scan:
// the set of build-time value IDs observed for one key channel. Pushdown
// only fires in value-ID mode.
type PushdownFilter struct {
	KeyChannel int
	ValueIDs   []int32
}

// PushdownSink is the out-of-scope upstream-scan collaborator a
// DynamicFilterPublisher pushes filters to.
type PushdownSink interface {
	Publish(PushdownFilter)
}

// dynamicFilterPublisher runs once build acquisition completes: for
// inner/left-semi/right-semi joins over a non-hash-mode (value-ID) table,
// it publishes a pushdown filter per key channel, and — when the join
// additionally has exactly one key, no duplicates, no build projections,
// and no residual filter — flags the operator to replace subsequent
// batches with pass-through.
type dynamicFilterPublisher struct {
	sink      PushdownSink
	published bool
}

func newDynamicFilterPublisher(sink PushdownSink) *dynamicFilterPublisher {
	return &dynamicFilterPublisher{sink: sink}
}

func eligibleForPushdown(jt plan.JoinType) bool {
	switch jt {
	case plan.Inner, plan.LeftSemi, plan.RightSemi:
		return true
	default:
		return false
	}
}

// canReplaceWithDynamicFilter reports whether the join is simple enough
// that a published single-key filter lets the operator skip probing
// entirely and pass batches through untouched.
func canReplaceWithDynamicFilter(node plan.JoinNode, table jointable.Table) bool {
	return len(node.LeftKeys) == 1 &&
		!table.HasDuplicateKeys() &&
		!hasBuildProjection(node) &&
		node.Filter == nil
}

func hasBuildProjection(node plan.JoinNode) bool {
	for _, rc := range node.Result {
		if rc.Rel == plan.BuildSide {
			return true
		}
	}
	return false
}

// publish runs once, after the build table is acquired, for a small
// enough value-ID-mode table. It reports whether
// canReplaceWithDynamicFilter should now be set.
func (p *dynamicFilterPublisher) publish(node plan.JoinNode, table jointable.Table, maxDistinct int64) bool {
	if p.published || p.sink == nil {
		return false
	}
	if !eligibleForPushdown(node.JoinType) || table.HashMode() {
		return false
	}
	if table.NumDistinct() > maxDistinct {
		return false
	}
	p.published = true
	ids := table.DistinctValueIDs()
	for ch := range node.LeftKeys {
		p.sink.Publish(PushdownFilter{KeyChannel: ch, ValueIDs: ids})
	}
	return canReplaceWithDynamicFilter(node, table)
}
