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

// Package nulls tracks which rows of a vector are null. Modeled on
// matrixone's pkg/container/nulls, narrowed to the read/write surface the
// probe operator exercises (the encode/decode-for-wire surface belongs to
// the out-of-scope I/O layer).
package nulls

import "github.com/vectorquery/hashprobe/container/bitmap"

// Nulls is the set of null row positions within a vector.
type Nulls struct {
	bm bitmap.Bitmap
}

// New returns an empty null set.
func New() *Nulls {
	return &Nulls{}
}

// Add marks row as null.
func (n *Nulls) Add(row int64) {
	n.bm.Add(row)
}

// Contains reports whether row is null.
func (n *Nulls) Contains(row int64) bool {
	if n == nil {
		return false
	}
	return n.bm.Contains(row)
}

// Any reports whether any row is null.
func (n *Nulls) Any() bool {
	if n == nil {
		return false
	}
	return !n.bm.IsEmpty()
}

// Count returns the number of null rows.
func (n *Nulls) Count() int {
	if n == nil {
		return 0
	}
	return n.bm.Count()
}
