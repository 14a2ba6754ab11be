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

// Package vector implements the columnar value container the probe
// operator reads and writes: flat, dictionary-encoded, constant, and lazy
// vectors. Modeled on matrixone's
// pkg/container/vector, but collapsed from matrixone's type-parameterized
// fixed/varlena split into a single tagged-union Vector, since this module
// only needs four scalar kinds (container/types.Kind) rather than the
// engine's full type catalog.
package vector

import (
	"fmt"

	"github.com/vectorquery/hashprobe/container/nulls"
	"github.com/vectorquery/hashprobe/container/types"
)

// Encoding identifies how a Vector's values are physically represented.
type Encoding uint8

const (
	// Flat vectors hold one value per logical row, directly.
	Flat Encoding = iota
	// Dict vectors hold indices into a base vector; wrapping a base vector
	// in a Dict is how OutputAssembler projects probe columns without
	// copying.
	Dict
	// Const vectors repeat a single value (or null) for every logical row.
	Const
	// Lazy vectors defer materialization until EnsureLoaded is called for
	// a specific set of rows.
	Lazy
)

// Loader materializes the rows of a lazy column on first access. It may
// materialize more than the requested rows (e.g. the whole column) but
// must guarantee correctness for every row in rows.
type Loader func(rows []int64) (*Vector, error)

// Vector is the columnar value container passed between probe components.
type Vector struct {
	typ types.Type
	enc Encoding
	n   int64 // logical row count

	// Flat
	i64 []int64
	f64 []float64
	str []string
	b   []bool
	nsp *nulls.Nulls

	// Dict
	base    *Vector
	indices []int64

	// Const
	constNull bool

	// Lazy
	loader   Loader
	realized *Vector
}

// NewFlatInt64 builds a flat int64 vector. nsp may be nil.
func NewFlatInt64(vals []int64, nsp *nulls.Nulls) *Vector {
	return &Vector{typ: types.Type{Kind: types.KindInt64, Nullable: nsp.Any()}, enc: Flat, n: int64(len(vals)), i64: vals, nsp: nsp}
}

// NewFlatFloat64 builds a flat float64 vector.
func NewFlatFloat64(vals []float64, nsp *nulls.Nulls) *Vector {
	return &Vector{typ: types.Type{Kind: types.KindFloat64, Nullable: nsp.Any()}, enc: Flat, n: int64(len(vals)), f64: vals, nsp: nsp}
}

// NewFlatString builds a flat string vector.
func NewFlatString(vals []string, nsp *nulls.Nulls) *Vector {
	return &Vector{typ: types.Type{Kind: types.KindString, Nullable: nsp.Any()}, enc: Flat, n: int64(len(vals)), str: vals, nsp: nsp}
}

// NewFlatBool builds a flat bool vector.
func NewFlatBool(vals []bool, nsp *nulls.Nulls) *Vector {
	return &Vector{typ: types.Type{Kind: types.KindBool, Nullable: nsp.Any()}, enc: Flat, n: int64(len(vals)), b: vals, nsp: nsp}
}

// NewConstNull builds a constant-null vector of length n, used by
// OutputAssembler to fill unmatched probe-side columns during
// DrainUnmatchedBuild.
func NewConstNull(typ types.Type, n int64) *Vector {
	return &Vector{typ: typ, enc: Const, n: n, constNull: true}
}

// NewLazy builds a vector whose values are materialized on first
// EnsureLoaded call.
func NewLazy(typ types.Type, n int64, loader Loader) *Vector {
	return &Vector{typ: typ, enc: Lazy, n: n, loader: loader}
}

// Type returns the vector's column type.
func (v *Vector) Type() types.Type { return v.typ }

// Length returns the number of logical rows.
func (v *Vector) Length() int64 { return v.n }

// IsConstNull reports whether this vector is a constant-null column.
func (v *Vector) IsConstNull() bool { return v.enc == Const && v.constNull }

// resolved returns the flat vector backing this one's values, following
// Dict and Lazy indirection. It never follows through an un-loaded Lazy
// vector; callers must EnsureLoaded first.
func (v *Vector) resolved() *Vector {
	switch v.enc {
	case Dict:
		return v.base.resolved()
	case Lazy:
		if v.realized != nil {
			return v.realized
		}
		return v
	default:
		return v
	}
}

// EnsureLoaded materializes a lazy vector's values. It is a no-op for
// non-lazy vectors and for a lazy vector already materialized. rows is
// the set of logical rows the caller intends to read; the reference
// Loader may choose to materialize the whole column regardless.
func (v *Vector) EnsureLoaded(rows []int64) error {
	if v.enc != Lazy || v.realized != nil {
		return nil
	}
	materialized, err := v.loader(rows)
	if err != nil {
		return err
	}
	v.realized = materialized
	return nil
}

// IsNullAt reports whether the logical row is null.
func (v *Vector) IsNullAt(row int64) bool {
	if v.enc == Const {
		return v.constNull
	}
	if v.enc == Dict {
		return v.base.IsNullAt(v.indices[row])
	}
	if v.enc == Lazy {
		if v.realized == nil {
			panic("vector: IsNullAt on un-loaded lazy vector")
		}
		return v.realized.IsNullAt(row)
	}
	return v.nsp.Contains(row)
}

func (v *Vector) flatFor(row int64) (*Vector, int64) {
	switch v.enc {
	case Dict:
		base, r := v.base.flatFor(v.indices[row])
		return base, r
	case Const:
		return v, 0
	case Lazy:
		if v.realized == nil {
			panic("vector: access on un-loaded lazy vector")
		}
		return v.realized.flatFor(row)
	default:
		return v, row
	}
}

// Int64At returns the int64 value at row; the bool result is false if the
// row is null.
func (v *Vector) Int64At(row int64) (int64, bool) {
	if v.IsNullAt(row) {
		return 0, false
	}
	flat, r := v.flatFor(row)
	if flat.typ.Kind != types.KindInt64 {
		panic(fmt.Sprintf("vector: Int64At on %s column", flat.typ))
	}
	return flat.i64[r], true
}

// Float64At returns the float64 value at row.
func (v *Vector) Float64At(row int64) (float64, bool) {
	if v.IsNullAt(row) {
		return 0, false
	}
	flat, r := v.flatFor(row)
	if flat.typ.Kind != types.KindFloat64 {
		panic(fmt.Sprintf("vector: Float64At on %s column", flat.typ))
	}
	return flat.f64[r], true
}

// StringAt returns the string value at row.
func (v *Vector) StringAt(row int64) (string, bool) {
	if v.IsNullAt(row) {
		return "", false
	}
	flat, r := v.flatFor(row)
	if flat.typ.Kind != types.KindString {
		panic(fmt.Sprintf("vector: StringAt on %s column", flat.typ))
	}
	return flat.str[r], true
}

// BoolAt returns the bool value at row. A null value also returns
// (false, false); callers evaluating a filter result must treat null as
// false.
func (v *Vector) BoolAt(row int64) (bool, bool) {
	if v.IsNullAt(row) {
		return false, false
	}
	flat, r := v.flatFor(row)
	if flat.typ.Kind != types.KindBool {
		panic(fmt.Sprintf("vector: BoolAt on %s column", flat.typ))
	}
	return flat.b[r], true
}

// Wrap returns a new vector that is this one dictionary-wrapped by
// mapping: row r of the result refers to row mapping[r] of v. No values
// are copied. This is how OutputAssembler projects probe columns into an
// output batch.
func (v *Vector) Wrap(mapping []int64) *Vector {
	idx := make([]int64, len(mapping))
	copy(idx, mapping)
	return &Vector{typ: v.typ, enc: Dict, n: int64(len(mapping)), base: v, indices: idx}
}

// Extract bulk-copies the values at rows into a new flat vector. This is
// how OutputAssembler projects build-side columns, and how ResidualFilter
// materializes build-side filter inputs. A negative row (jointable.NoHit,
// for an outer-join probe row with no build match) extracts as null
// rather than indexing the source vector.
func (v *Vector) Extract(rows []int64) *Vector {
	switch v.typ.Kind {
	case types.KindInt64:
		vals := make([]int64, len(rows))
		nsp := nulls.New()
		for i, r := range rows {
			if r < 0 {
				nsp.Add(int64(i))
				continue
			}
			val, ok := v.Int64At(r)
			if !ok {
				nsp.Add(int64(i))
				continue
			}
			vals[i] = val
		}
		return NewFlatInt64(vals, nsp)
	case types.KindFloat64:
		vals := make([]float64, len(rows))
		nsp := nulls.New()
		for i, r := range rows {
			if r < 0 {
				nsp.Add(int64(i))
				continue
			}
			val, ok := v.Float64At(r)
			if !ok {
				nsp.Add(int64(i))
				continue
			}
			vals[i] = val
		}
		return NewFlatFloat64(vals, nsp)
	case types.KindString:
		vals := make([]string, len(rows))
		nsp := nulls.New()
		for i, r := range rows {
			if r < 0 {
				nsp.Add(int64(i))
				continue
			}
			val, ok := v.StringAt(r)
			if !ok {
				nsp.Add(int64(i))
				continue
			}
			vals[i] = val
		}
		return NewFlatString(vals, nsp)
	case types.KindBool:
		vals := make([]bool, len(rows))
		nsp := nulls.New()
		for i, r := range rows {
			if r < 0 {
				nsp.Add(int64(i))
				continue
			}
			val, ok := v.BoolAt(r)
			if !ok {
				nsp.Add(int64(i))
				continue
			}
			vals[i] = val
		}
		return NewFlatBool(vals, nsp)
	default:
		panic(fmt.Sprintf("vector: Extract on unknown kind %v", v.typ.Kind))
	}
}

// UniquelyOwned reports whether this vector may be mutated/reused in
// place rather than reallocated. The reference implementation never
// shares vectors across batches, so every flat vector it owns is unique;
// dictionary and lazy vectors alias a base and are never reusable.
func (v *Vector) UniquelyOwned() bool {
	return v.enc == Flat
}

// ResetFlat clears a flat vector's contents so it can be reused as fresh
// scratch for the next output batch, reusing the previous output
// vector when it is uniquely owned.
func (v *Vector) ResetFlat() {
	if v.enc != Flat {
		panic("vector: ResetFlat on non-flat vector")
	}
	v.n = 0
	v.i64 = v.i64[:0]
	v.f64 = v.f64[:0]
	v.str = v.str[:0]
	v.b = v.b[:0]
	v.nsp = nulls.New()
}
