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

package expreval

import (
	"github.com/vectorquery/hashprobe/container/batch"
	"github.com/vectorquery/hashprobe/container/vector"
)

// Func is a reference Expr, built directly from a Go predicate rather than
// a compiled expression tree, for driving the probe operator's tests
// without a real expression engine.
type Func struct {
	// Predicate reports the row's boolean result and whether that result
	// is null, given the filter-input batch's columns in order.
	Predicate func(cols []*vector.Vector, row int64) (pass bool, isNull bool)
	// Propagate is what PropagatesNulls reports. Most SQL predicates
	// propagate nulls; set false to opt out.
	Propagate bool
}

func (f Func) Eval(batches []*batch.Batch) (*BoolColumn, error) {
	var cols []*vector.Vector
	var n int64
	for _, b := range batches {
		cols = append(cols, b.Vecs...)
		if rc := b.RowCount(); rc > n {
			n = rc
		}
	}
	values := make([]bool, n)
	nulls := make([]bool, n)
	for r := int64(0); r < n; r++ {
		pass, isNull := f.Predicate(cols, r)
		if isNull {
			nulls[r] = true
			continue
		}
		values[r] = pass
	}
	return &BoolColumn{Values: values, Nulls: nulls}, nil
}

func (f Func) PropagatesNulls() bool { return f.Propagate }
