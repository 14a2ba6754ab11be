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

// Package bridge implements the two external collaborators the probe
// operator needs but does not own: JoinBridge, which hands the ready
// build table to every probe driver, and BarrierClient, which elects
// exactly one "last probe" driver to drain unmatched build rows for
// right/full/right-semi joins. Modeled
// on matrixone's pkg/vm/message.JoinMapMsg broadcast-to-all-probes
// convention for the handoff, and on the historical rightanti operator's
// `ap.Channel <- &ctr.matched` peer-merge for the barrier, generalized
// into an explicit counting rendezvous.
package bridge

import (
	"context"
	"sync"

	"github.com/vectorquery/hashprobe/jointable"
)

// BuildResult is what the build side hands to every probe driver once
// ready: the shared, read-only table, and whether the build detected that
// an anti-join's result is universally empty because of a null build key,
// which lets every waiting driver skip straight to Finished.
type BuildResult struct {
	Table               jointable.Table
	AntiJoinHasNullKeys bool
}

// JoinBridge is consumed via tableOrFuture: returns immediately once the
// build is ready, or a future (channel) that closes when it is.
type JoinBridge interface {
	// TableOrFuture returns the build result if ready. If not, it returns
	// a channel that closes once SetResult/Cancel is called, and the
	// caller must re-invoke TableOrFuture after that channel closes.
	TableOrFuture(ctx context.Context) (*BuildResult, <-chan struct{}, error)
}

// Bridge is the concrete JoinBridge: a single build result broadcast to
// every probe driver that shares its (plan-node, split-group) identity.
type Bridge struct {
	mu     sync.Mutex
	ready  chan struct{}
	result *BuildResult
	err    error
}

// NewBridge returns a Bridge with no result yet.
func NewBridge() *Bridge {
	return &Bridge{ready: make(chan struct{})}
}

// SetResult publishes the build result and wakes every waiter. Once a
// result or error has been published, later SetResult calls are ignored.
func (b *Bridge) SetResult(r *BuildResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.result != nil || b.err != nil {
		return
	}
	b.result = r
	close(b.ready)
}

// Cancel publishes a terminal error instead of a result — the build
// failed, or the query was cancelled.
func (b *Bridge) Cancel(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.result != nil || b.err != nil {
		return
	}
	b.err = err
	close(b.ready)
}

func (b *Bridge) TableOrFuture(ctx context.Context) (*BuildResult, <-chan struct{}, error) {
	b.mu.Lock()
	result, err, ready := b.result, b.err, b.ready
	b.mu.Unlock()

	select {
	case <-ready:
		if err != nil {
			return nil, nil, err
		}
		return result, nil, nil
	default:
	}

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}
	return nil, ready, nil
}

// BarrierClient elects exactly one "last probe" driver among the peers
// sharing a right/full/right-semi join, so only that one drains unmatched
// build rows.
type BarrierClient struct {
	mu      sync.Mutex
	total   int
	arrived int
}

// NewBarrierClient returns a barrier for the given number of peer probe
// drivers.
func NewBarrierClient(totalPeers int) *BarrierClient {
	return &BarrierClient{total: totalPeers}
}

// AllPeersFinished registers this driver's arrival at noMoreInput and
// reports whether it is the last one to arrive, and therefore the driver
// responsible for DrainUnmatchedBuild. The "probed" flags it then reads
// are visible because every peer's write to them happened-before this
// call returned true for the last arrival.
func (c *BarrierClient) AllPeersFinished() (isLastProbe bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arrived++
	return c.arrived == c.total
}
