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

// Package plan carries the small, fixed set of join-node descriptors the
// probe operator needs: join type, key channels, output projections, and
// the (optional) residual filter. Modeled on matrixone's pb/plan join
// descriptors and the Rel/Pos result-column convention used throughout
// pkg/sql/colexec (e.g. pkg/sql/colexec/join/join.go's ap.Result).
package plan

import "github.com/vectorquery/hashprobe/expreval"

// JoinType selects the state machine and filter interpretation a Driver
// runs.
type JoinType int

const (
	Inner JoinType = iota
	Left
	Right
	Full
	LeftSemi
	RightSemi
	NullAwareAnti
)

func (t JoinType) String() string {
	switch t {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Full:
		return "full"
	case LeftSemi:
		return "left-semi"
	case RightSemi:
		return "right-semi"
	case NullAwareAnti:
		return "null-aware-anti"
	default:
		return "unknown"
	}
}

// IsOuterOrAnti reports whether the join type retains probe rows with no
// match (left/full/anti), as opposed to dropping them (inner/right/semi).
func (t JoinType) IsOuterOrAnti() bool {
	switch t {
	case Left, Full, NullAwareAnti:
		return true
	default:
		return false
	}
}

// IsRightFamily reports whether unmatched build rows must be drained by
// the last-finishing probe driver.
func (t JoinType) IsRightFamily() bool {
	switch t {
	case Right, Full, RightSemi:
		return true
	default:
		return false
	}
}

// Side identifies which input of the join a column comes from.
type Side int

const (
	ProbeSide Side = 0
	BuildSide Side = 1
)

// ResultColumn names one output column: either probe column Pos (Rel ==
// ProbeSide) or build column Pos (Rel == BuildSide).
type ResultColumn struct {
	Rel Side
	Pos int
}

// JoinNode is the static descriptor of a single probe operator instance.
type JoinNode struct {
	JoinType JoinType
	// LeftKeys/RightKeys are parallel probe/build column indices forming
	// the equality key.
	LeftKeys  []int
	RightKeys []int
	// Filter is the optional residual predicate, or nil.
	Filter expreval.Expr
	// Result is the output projection, expressed as one ordered list of
	// probe- and build-side columns.
	Result []ResultColumn
	// FilterProbeCols/FilterBuildCols name the probe/build columns the
	// Filter expression reads, beyond the key columns.
	FilterProbeCols []int
	FilterBuildCols []int
}
