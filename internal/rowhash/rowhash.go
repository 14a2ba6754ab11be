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

// Package rowhash computes the per-row 64-bit hash the key encoder needs
// in hash mode, combining successive key columns the way matrixone's
// pkg/container/hashtable combines multi-column hash states.
// It is built on cespare/xxhash/v2, already one of matrixone's own
// (indirect) dependencies.
package rowhash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// combinePrime is an odd multiplier used to fold a new column's hash into
// the running combined hash, the same shape as FNV-style combine used
// throughout the hashtable package this is modeled on.
const combinePrime = 1099511628211

// Combine folds a column's hash into the running combined hash for a row.
// Called once per key column, in key order, starting from 0 for the
// first column.
func Combine(running uint64, colHash uint64) uint64 {
	return running*combinePrime ^ colHash
}

// Int64 hashes a single int64 key value.
func Int64(v int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return xxhash.Sum64(buf[:])
}

// Float64 hashes a single float64 key value.
func Float64(v float64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return xxhash.Sum64(buf[:])
}

// String hashes a single string key value.
func String(v string) uint64 {
	return xxhash.Sum64String(v)
}

// Bool hashes a single bool key value.
func Bool(v bool) uint64 {
	if v {
		return xxhash.Sum64([]byte{1})
	}
	return xxhash.Sum64([]byte{0})
}
