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

// Package expreval defines the residual-predicate evaluator contract the
// probe operator consumes, modeled on matrixone's
// pkg/sql/colexec.ExpressionExecutor. Building a real expression engine is
// out of scope here; this package only names the interface and, for
// tests, provides a small reference Expr built from a plain Go predicate
// function.
package expreval

import "github.com/vectorquery/hashprobe/container/batch"

// Expr evaluates a residual predicate over one or more input batches
// (typically the materialized filter-input batch built by ResidualFilter)
// and returns a boolean column, one value per row, nulls allowed.
type Expr interface {
	// Eval returns a *BoolColumn with one row per input row across batches (batches are concatenated column-wise, not
	// row-wise: each batch supplies columns from one side of the join).
	Eval(batches []*batch.Batch) (*BoolColumn, error)
}

// BoolColumn is the minimal result shape Eval must produce: a plain slice
// plus a null mask, so every Expr implementation can build one without
// depending on a particular vector representation for its result.
type BoolColumn struct {
	Values []bool
	Nulls  []bool // Nulls[i] true means row i's result is null (treated as false)
}

// At reports the effective boolean result for row i: a null is always
// false.
func (c *BoolColumn) At(i int) bool {
	if c.Nulls != nil && c.Nulls[i] {
		return false
	}
	return c.Values[i]
}

// Len returns the number of rows in the column.
func (c *BoolColumn) Len() int { return len(c.Values) }

// PropagatesNulls reports whether an Expr's null handling requires the
// null-aware anti-join's skip rule: if the filter propagates nulls and
// any filter-input probe column is null at a row, that row is skipped
// rather than evaluated. Most predicates compiled from SQL propagate
// nulls (NULL in, NULL out); an Expr may opt out by implementing
// NullPropagating itself.
type NullPropagating interface {
	PropagatesNulls() bool
}

// Propagates reports e's null-propagation behavior, defaulting to true
// (the common case for SQL predicates) when e does not implement
// NullPropagating.
func Propagates(e Expr) bool {
	if np, ok := e.(NullPropagating); ok {
		return np.PropagatesNulls()
	}
	return true
}
