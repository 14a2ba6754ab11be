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

// Package batch implements the ordered tuple of equal-length columns that
// flows between probe operator stages, modeled on matrixone's
// pkg/container/batch.Batch.
package batch

import "github.com/vectorquery/hashprobe/container/vector"

// Batch is an ordered tuple of columns, all of equal logical length.
type Batch struct {
	Vecs []*vector.Vector
}

// New allocates a batch with n column slots, all nil.
func New(n int) *Batch {
	return &Batch{Vecs: make([]*vector.Vector, n)}
}

// RowCount returns the batch's row count, taken from its first column.
// A batch with zero columns has zero rows by convention.
func (b *Batch) RowCount() int64 {
	if len(b.Vecs) == 0 || b.Vecs[0] == nil {
		return 0
	}
	return b.Vecs[0].Length()
}

// IsEmpty reports whether the batch carries no rows.
func (b *Batch) IsEmpty() bool {
	return b.RowCount() == 0
}

// Reset clears every column slot to nil, keeping the Vecs slice itself, so
// the batch shell can be recycled by a reuse.Pool without retaining a
// reference to vectors from the call that last populated it.
func (b *Batch) Reset() {
	for i := range b.Vecs {
		b.Vecs[i] = nil
	}
}
