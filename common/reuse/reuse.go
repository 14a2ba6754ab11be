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

// Package reuse provides a generic scratch-buffer pool, modeled on
// matrixone's pkg/common/reuse (whose checker.go tracks create/get/free
// pairing under a debug flag). The probe operator's residual filter uses
// it to recycle its filter-input batch shells across calls instead of
// reallocating each time.
package reuse

import "sync"

// ReusableObject is implemented by anything a Pool manages: it must know
// how to reset itself to a fresh, empty state before being handed out
// again.
type ReusableObject interface {
	Reset()
}

// Pool hands out T values, reusing previously-freed ones where possible.
type Pool[T any] struct {
	new func() T
	p   sync.Pool
}

// NewPool builds a pool whose values are created by newFn when empty.
func NewPool[T any](newFn func() T) *Pool[T] {
	pool := &Pool[T]{new: newFn}
	pool.p.New = func() any { return newFn() }
	return pool
}

// Alloc returns a T, either freshly created or recycled from a prior Free.
func (p *Pool[T]) Alloc() T {
	return p.p.Get().(T)
}

// Free resets v and returns it to the pool for a future Alloc.
func (p *Pool[T]) Free(v T, r ReusableObject) {
	r.Reset()
	p.p.Put(v)
}
