// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package btree

import (
	"slices"
	"testing"

	"github.com/Fantom-foundation/Carmen/go/common"
)

// TestScenarioS4 matches spec §8 S4: capacity 8, insert 0..19.
func TestScenarioS4(t *testing.T) {
	tr, _ := New[uint32, int](8, common.Uint32Comparator{})
	for i := uint32(0); i < 20; i++ {
		tr.Insert(i, int(i))
	}

	// Only keys 0..19 were inserted, so a range starting at 20 is empty.
	got := collectKeys(tr.Range(IncludedBound[uint32](20), IncludedBound[uint32](60)))
	if len(got) != 0 {
		t.Errorf("Range(20,60) = %v, want empty", got)
	}

	got = collectKeys(tr.Range(UnboundedBound[uint32](), ExcludedBound[uint32](5)))
	want := []uint32{0, 1, 2, 3, 4}
	if !slices.Equal(got, want) {
		t.Errorf("Range(Unbounded, Excluded(5)) = %v, want %v", got, want)
	}
}

func TestRangeEquivalenceLaw(t *testing.T) {
	tr, _ := New[uint32, int](6, common.Uint32Comparator{})
	for i := uint32(0); i < 100; i += 3 {
		tr.Insert(i, int(i))
	}

	lo, hi := uint32(10), uint32(70)
	ranged := collectKeys(tr.Range(IncludedBound(lo), IncludedBound(hi)))

	var filtered []uint32
	it := tr.Iterator()
	for it.HasNext() {
		k, _ := it.Next()
		if k >= lo && k <= hi {
			filtered = append(filtered, k)
		}
	}

	if !slices.Equal(ranged, filtered) {
		t.Errorf("Range does not match filtered Iterator: %v != %v", ranged, filtered)
	}
}

func TestRangeExcludedBounds(t *testing.T) {
	tr, _ := New[uint32, int](4, common.Uint32Comparator{})
	for i := uint32(0); i < 10; i++ {
		tr.Insert(i, int(i))
	}

	got := collectKeys(tr.Range(ExcludedBound[uint32](2), ExcludedBound[uint32](7)))
	want := []uint32{3, 4, 5, 6}
	if !slices.Equal(got, want) {
		t.Errorf("Range(Excluded(2), Excluded(7)) = %v, want %v", got, want)
	}
}

func collectKeys(it common.Iterator[uint32, int]) []uint32 {
	var keys []uint32
	for it.HasNext() {
		k, _ := it.Next()
		keys = append(keys, k)
	}
	return keys
}
