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

package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddContains(t *testing.T) {
	b := New()
	b.Add(3)
	b.Add(70)
	require.True(t, b.Contains(3))
	require.True(t, b.Contains(70))
	require.False(t, b.Contains(4))
	require.False(t, b.Contains(0))
}

func TestAddBeyondInitialSizeGrows(t *testing.T) {
	b := NewWithSize(4)
	b.Add(200)
	require.True(t, b.Contains(200))
}

func TestRemove(t *testing.T) {
	b := NewWithSize(8)
	b.Add(5)
	b.Remove(5)
	require.False(t, b.Contains(5))
}

func TestResetKeepsBackingArray(t *testing.T) {
	b := NewWithSize(128)
	b.Add(100)
	b.Reset()
	require.True(t, b.IsEmpty())
	require.Equal(t, int64(0), b.Len())
	b.TryExpand(128)
	require.False(t, b.Contains(100))
}

func TestAllSet(t *testing.T) {
	b := NewWithSize(70)
	require.False(t, b.AllSet())
	b.AddRange(0, 70)
	require.True(t, b.AllSet())
}

func TestAllSetEmptyBitmap(t *testing.T) {
	b := NewWithSize(0)
	require.True(t, b.AllSet())
}

func TestCount(t *testing.T) {
	b := NewWithSize(10)
	b.Add(1)
	b.Add(5)
	b.Add(9)
	require.Equal(t, 3, b.Count())
}

func TestOr(t *testing.T) {
	a := NewWithSize(10)
	a.Add(1)
	b := NewWithSize(20)
	b.Add(15)
	a.Or(&b)
	require.True(t, a.Contains(1))
	require.True(t, a.Contains(15))
}

func TestIteratorWalksSetBitsInOrder(t *testing.T) {
	b := NewWithSize(100)
	want := []int64{2, 9, 64, 99}
	for _, r := range want {
		b.Add(r)
	}
	var got []int64
	it := b.Iterator()
	for it.HasNext() {
		got = append(got, it.Next())
	}
	require.Equal(t, want, got)
}

func TestContainsOutOfRangeIsFalse(t *testing.T) {
	b := NewWithSize(4)
	require.False(t, b.Contains(-1))
	require.False(t, b.Contains(1000))
}
