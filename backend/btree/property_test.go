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
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/Fantom-foundation/Carmen/go/common"
)

const numKeys = 1000

// TestScenarioS5 matches spec §8 S5: insert 1..20 then remove every third
// key, at the spec's minimum capacity.
func TestScenarioS5(t *testing.T) {
	tr, _ := New[uint32, uint32](minCapacity, common.Uint32Comparator{})
	for i := uint32(1); i <= 20; i++ {
		tr.Insert(i, i*i)
	}

	removed := map[uint32]bool{}
	for i := uint32(1); i <= 20; i += 3 {
		tr.Remove(i)
		removed[i] = true
	}

	for i := uint32(1); i <= 20; i++ {
		v, ok := tr.Get(i)
		if removed[i] {
			if ok {
				t.Errorf("key %d should have been removed", i)
			}
			continue
		}
		if !ok || v != i*i {
			t.Errorf("Get(%d) = %v, %v, want %d, true", i, v, ok, i*i)
		}
	}
	if err := tr.CheckInvariants(); err != nil {
		t.Errorf("invariants broken: %v", err)
	}
}

// TestScenarioS6 matches spec §8 S6: capacity 16, 100,000 random keys with
// a fixed seed; forward iteration is strictly increasing.
func TestScenarioS6(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large randomized test in short mode")
	}

	tr, _ := New[uint32, struct{}](16, common.Uint32Comparator{})
	rng := rand.New(rand.NewSource(42))

	seen := map[uint32]bool{}
	for i := 0; i < 100_000; i++ {
		k := uint32(rng.Intn(1 << 28))
		tr.Insert(k, struct{}{})
		seen[k] = true
	}

	var prev uint32
	havePrev := false
	count := 0
	it := tr.Iterator()
	for it.HasNext() {
		k, _ := it.Next()
		if havePrev && k <= prev {
			t.Fatalf("iteration not strictly increasing: %d after %d", k, prev)
		}
		prev, havePrev = k, true
		count++
	}
	if count != len(seen) {
		t.Errorf("iterated %d entries, want %d distinct keys", count, len(seen))
	}
}

// TestInsertRemoveRandomOrderPreservesInvariants inserts a non-repeating
// random key set at several widths, then removes every key in a random
// order, checking the B+ tree invariants once after the inserts and again
// after each removal.
func TestInsertRemoveRandomOrderPreservesInvariants(t *testing.T) {
	widths := []int{4, 1 << 3, 1 << 5}

	for _, width := range widths {
		t.Run(fmt.Sprintf("btree, capacity %d, items %d", width, numKeys), func(t *testing.T) {
			tr, data := initNonRepeatingRandomKeys(t, width, numKeys)

			if err := tr.CheckInvariants(); err != nil {
				t.Fatalf("invariants broken after inserts: %v", err)
			}
			if !slices.IsSorted(collectAllKeys(tr)) {
				t.Fatalf("iteration is not sorted")
			}

			rand.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })

			for len(data) > 0 {
				key := data[len(data)-1]
				data = data[:len(data)-1]

				if !tr.Contains(key) {
					t.Fatalf("key %d should exist before removal", key)
				}
				if _, ok := tr.Remove(key); !ok {
					t.Fatalf("Remove(%d) should report success", key)
				}
				if tr.Contains(key) {
					t.Fatalf("key %d should be gone after removal", key)
				}
				if err := tr.CheckInvariants(); err != nil {
					t.Fatalf("invariants broken after removing %d: %v", key, err)
				}
			}

			if !tr.IsEmpty() {
				t.Fatalf("tree should be empty once every key is removed")
			}
		})
	}
}

// TestRangeAgainstSortedReferenceData checks Range against a plain sorted
// slice built independently of the tree.
func TestRangeAgainstSortedReferenceData(t *testing.T) {
	widths := []int{4, 1 << 3, 1 << 5}

	for _, width := range widths {
		t.Run(fmt.Sprintf("btree, capacity %d, items %d", width, numKeys), func(t *testing.T) {
			tr, data := initNonRepeatingRandomKeys(t, width, numKeys)
			sort.Slice(data, func(i, j int) bool { return data[i] < data[j] })

			for i := 0; i < len(data); i += 10 {
				start := rand.Intn(i + 1)
				end := rand.Intn(len(data)-i) + i

				got := collectKeysOf(tr, IncludedBound(data[start]), ExcludedBound(data[end]))
				want := append([]uint32{}, data[start:end]...)
				if !slices.Equal(got, want) {
					t.Fatalf("range [%d,%d) = %v, want %v", data[start], data[end], got, want)
				}
			}
		})
	}
}

// initNonRepeatingRandomKeys builds a distinct random key set of size n,
// inserts it into a fresh tree in random order, and returns both.
func initNonRepeatingRandomKeys(t *testing.T, width, n int) (*Tree[uint32, int], []uint32) {
	t.Helper()
	tr, err := New[uint32, int](width, common.Uint32Comparator{})
	if err != nil {
		t.Fatal(err)
	}
	data := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		data = append(data, uint32(i*10+rand.Intn(10)))
	}
	rand.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })
	for _, key := range data {
		tr.Insert(key, int(key))
	}
	return tr, data
}

func collectAllKeys(tr *Tree[uint32, int]) []uint32 {
	var keys []uint32
	it := tr.Iterator()
	for it.HasNext() {
		k, _ := it.Next()
		keys = append(keys, k)
	}
	return keys
}

func collectKeysOf(tr *Tree[uint32, int], lo, hi Bound[uint32]) []uint32 {
	var keys []uint32
	it := tr.Range(lo, hi)
	for it.HasNext() {
		k, _ := it.Next()
		keys = append(keys, k)
	}
	return keys
}
