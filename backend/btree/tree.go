// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package btree implements an in-memory, ordered key-value map as a B+
// tree: values live only in leaves, branch nodes hold routing separators,
// and leaves are chained through next_leaf pointers for fast sequential
// scans. The tree is single-threaded; callers needing concurrent access
// must provide their own exclusion.
package btree

import (
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/Carmen/go/common"
)

// Tree is an in-memory ordered map backed by a B+ tree of capacity C.
type Tree[K comparable, V any] struct {
	arena      *Arena[K, V]
	root       NodeId
	headLeaf   NodeId
	size       int
	capacity   int
	comparator common.Comparator[K]
	metrics    *Metrics
}

// New creates an empty tree. capacity must be at least 4; smaller values
// are rejected with ErrInvalidCapacity.
func New[K comparable, V any](capacity int, comparator common.Comparator[K]) (*Tree[K, V], error) {
	if capacity < minCapacity {
		return nil, ErrInvalidCapacity
	}

	arena := NewArena[K, V]()
	root := newLeafNode[K, V](capacity, comparator)
	rootID := arena.AllocateLeaf(root)

	return &Tree[K, V]{
		arena:      arena,
		root:       rootID,
		headLeaf:   rootID,
		capacity:   capacity,
		comparator: comparator,
	}, nil
}

// Len returns the number of entries currently stored.
func (t *Tree[K, V]) Len() int {
	return t.size
}

// IsEmpty reports whether the tree holds no entries.
func (t *Tree[K, V]) IsEmpty() bool {
	return t.size == 0
}

// Clear removes every entry, discarding the whole arena so that no slot of
// the old tree remains live (P7: no leaks). The arena then holds exactly
// one live slot: the fresh, empty root leaf.
func (t *Tree[K, V]) Clear() {
	t.arena.reset()
	root := newLeafNode[K, V](t.capacity, t.comparator)
	rootID := t.arena.AllocateLeaf(root)
	t.root = rootID
	t.headLeaf = rootID
	t.size = 0
}

// descendToLeaf walks from the root to the leaf that would contain key.
func (t *Tree[K, V]) descendToLeaf(key K) NodeId {
	id := t.root
	for id.isBranch() {
		b := t.arena.Branch(id)
		idx := b.childFor(key)
		id = b.children[idx]
	}
	return id
}

// Get returns the value stored for key, if any.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	leaf := t.arena.Leaf(t.descendToLeaf(key))
	return leaf.find(key)
}

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// Insert associates value with key, returning the previous value and true
// if key already existed (size is unchanged), or the zero value and
// false if it is new (size increases by one).
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	previous, existed, rightID, separator, split := t.insertRec(t.root, key, value)
	if split {
		// The split itself was already counted inside insertRec; wrapping
		// the two halves in a fresh root is not a second split event.
		newRoot := newBranchNode[K](t.capacity, t.comparator)
		newRoot.sepKeys = append(newRoot.sepKeys, separator)
		newRoot.children = append(newRoot.children, t.root, rightID)
		t.root = t.arena.AllocateBranch(newRoot)
	}
	if !existed {
		t.size++
	}
	return previous, existed
}

func (t *Tree[K, V]) insertRec(id NodeId, key K, value V) (previous V, existed bool, rightID NodeId, separator K, split bool) {
	if !id.isBranch() {
		leaf := t.arena.Leaf(id)
		previous, existed, rightID, separator, split = leaf.insert(t.arena, key, value)
		if split {
			t.metrics.incSplit()
		}
		return
	}

	branch := t.arena.Branch(id)
	idx := branch.childFor(key)
	childID := branch.children[idx]

	var childRightID NodeId
	var childSep K
	var childSplit bool
	previous, existed, childRightID, childSep, childSplit = t.insertRec(childID, key, value)
	if !childSplit {
		return previous, existed, NullNode, separator, false
	}

	promoted, rID, didSplit := branch.insertSeparator(idx, childSep, childRightID, t.arena.AllocateBranch)
	if didSplit {
		t.metrics.incSplit()
	}
	return previous, existed, rID, promoted, didSplit
}

// Remove deletes key, returning the removed value and true on success, or
// the zero value and false if key was absent. Size decreases by one on
// success.
func (t *Tree[K, V]) Remove(key K) (V, bool) {
	removed, existed, _ := t.removeRec(t.root, key, true)
	if !existed {
		return removed, false
	}
	t.size--

	if t.root.isBranch() {
		root := t.arena.Branch(t.root)
		if root.size() == 0 {
			onlyChild := root.children[0]
			t.arena.FreeBranch(t.root)
			t.root = onlyChild
			if !t.root.isBranch() {
				t.headLeaf = t.root
			}
		}
	}

	return removed, true
}

func (t *Tree[K, V]) removeRec(id NodeId, key K, isRoot bool) (removed V, existed bool, underflow bool) {
	if !id.isBranch() {
		leaf := t.arena.Leaf(id)
		return leaf.remove(key, isRoot)
	}

	branch := t.arena.Branch(id)
	idx := branch.childFor(key)
	childID := branch.children[idx]

	removed, existed, childUnderflow := t.removeRec(childID, key, false)
	if !existed || !childUnderflow {
		return removed, existed, false
	}

	selfUnderflow := t.fixChildUnderflow(branch, idx)
	if isRoot {
		return removed, existed, false
	}
	return removed, existed, selfUnderflow
}

// fixChildUnderflow repairs the underflowed child at branch.children[idx]
// by borrowing from a sibling or merging with one, per §4.5. It reports
// whether branch itself is now below the minimum occupancy.
func (t *Tree[K, V]) fixChildUnderflow(branch *BranchNode[K], idx int) bool {
	if branch.children[idx].isBranch() {
		return t.fixBranchChildUnderflow(branch, idx)
	}
	return t.fixLeafChildUnderflow(branch, idx)
}

func (t *Tree[K, V]) fixLeafChildUnderflow(parent *BranchNode[K], idx int) bool {
	min := minKeys(t.capacity)
	childID := parent.children[idx]

	if idx+1 < len(parent.children) {
		child, right := t.arena.BorrowLeafPair(childID, parent.children[idx+1])
		if right.size() > min {
			k, v := right.takeFirst()
			child.put(k, v)
			parent.sepKeys[idx] = right.firstKey()
			t.metrics.incBorrow()
			return false
		}
	}
	if idx-1 >= 0 {
		left, child := t.arena.BorrowLeafPair(parent.children[idx-1], childID)
		if left.size() > min {
			k, v := left.takeLast()
			child.put(k, v)
			parent.sepKeys[idx-1] = k
			t.metrics.incBorrow()
			return false
		}
	}

	if idx+1 < len(parent.children) {
		left, right := t.arena.BorrowLeafPair(childID, parent.children[idx+1])
		left.absorb(right)
		t.arena.FreeLeaf(parent.children[idx+1])
		parent.deleteSeparatorAt(idx)
	} else {
		left, right := t.arena.BorrowLeafPair(parent.children[idx-1], childID)
		left.absorb(right)
		t.arena.FreeLeaf(childID)
		parent.deleteSeparatorAt(idx - 1)
	}
	t.metrics.incMerge()
	return parent.size() < min
}

func (t *Tree[K, V]) fixBranchChildUnderflow(parent *BranchNode[K], idx int) bool {
	min := minKeys(t.capacity)
	childID := parent.children[idx]

	if idx+1 < len(parent.children) {
		child, right := t.arena.BorrowBranchPair(childID, parent.children[idx+1])
		if right.size() > min {
			sep := parent.sepKeys[idx]
			child.sepKeys = append(child.sepKeys, sep)
			child.children = append(child.children, right.children[0])
			parent.sepKeys[idx] = right.sepKeys[0]
			right.sepKeys = removeAt(right.sepKeys, 0)
			right.children = removeAt(right.children, 0)
			t.metrics.incBorrow()
			return false
		}
	}
	if idx-1 >= 0 {
		left, child := t.arena.BorrowBranchPair(parent.children[idx-1], childID)
		if left.size() > min {
			sep := parent.sepKeys[idx-1]
			child.sepKeys = append([]K{sep}, child.sepKeys...)
			lastChild := left.children[len(left.children)-1]
			child.children = append([]NodeId{lastChild}, child.children...)
			parent.sepKeys[idx-1] = left.sepKeys[len(left.sepKeys)-1]
			left.sepKeys = left.sepKeys[:len(left.sepKeys)-1]
			left.children = left.children[:len(left.children)-1]
			t.metrics.incBorrow()
			return false
		}
	}

	if idx+1 < len(parent.children) {
		left, right := t.arena.BorrowBranchPair(childID, parent.children[idx+1])
		left.sepKeys = append(left.sepKeys, parent.sepKeys[idx])
		left.sepKeys = append(left.sepKeys, right.sepKeys...)
		left.children = append(left.children, right.children...)
		t.arena.FreeBranch(parent.children[idx+1])
		parent.deleteSeparatorAt(idx)
	} else {
		left, right := t.arena.BorrowBranchPair(parent.children[idx-1], childID)
		left.sepKeys = append(left.sepKeys, parent.sepKeys[idx-1])
		left.sepKeys = append(left.sepKeys, right.sepKeys...)
		left.children = append(left.children, right.children...)
		t.arena.FreeBranch(childID)
		parent.deleteSeparatorAt(idx - 1)
	}
	t.metrics.incMerge()
	return parent.size() < min
}

// Height reports the number of levels from the root to the leaves,
// inclusive. An empty tree (single empty leaf root) has height 1.
func (t *Tree[K, V]) Height() int {
	h := 1
	id := t.root
	for id.isBranch() {
		b := t.arena.Branch(id)
		id = b.children[0]
		h++
	}
	return h
}

// CheckInvariants verifies P1 (order), P2 (occupancy), P3 (depth), P4
// (leaf list), P5 (separator agreement), and P6 (size). It is intended for
// tests and debugging, not the hot path.
func (t *Tree[K, V]) CheckInvariants() error {
	if t.size == 0 && t.root.isBranch() {
		return fmt.Errorf("btree: empty tree has a branch root")
	}

	leafDepth := -1
	// lo/hi bound every key reachable under id: lo <= key < hi, with a nil
	// bound meaning unbounded on that side. They are the separator-implied
	// range a parent carved out for this child, so checking every key
	// against them is what actually exercises P5 — a rotation/merge bug
	// that leaves a stale or misplaced separator in place shows up here
	// even though the separator still sorts fine among its own siblings.
	var walk func(id NodeId, level int, lo, hi *K) error
	walk = func(id NodeId, level int, lo, hi *K) error {
		if id.isBranch() {
			b := t.arena.Branch(id)
			if len(b.sepKeys) != len(b.children)-1 {
				return fmt.Errorf("btree: branch %d has %d separators but %d children", id, len(b.sepKeys), len(b.children))
			}
			for i := 1; i < len(b.sepKeys); i++ {
				a, c := b.sepKeys[i-1], b.sepKeys[i]
				if b.comparator.Compare(&a, &c) >= 0 {
					return fmt.Errorf("btree: branch %d separators not strictly increasing", id)
				}
			}
			for i := range b.sepKeys {
				sep := b.sepKeys[i]
				if lo != nil && b.comparator.Compare(&sep, lo) < 0 {
					return fmt.Errorf("btree: branch %d separator %v below parent's lower bound %v (P5 violated)", id, sep, *lo)
				}
				if hi != nil && b.comparator.Compare(&sep, hi) >= 0 {
					return fmt.Errorf("btree: branch %d separator %v not below parent's upper bound %v (P5 violated)", id, sep, *hi)
				}
			}
			min, max := 1, t.capacity
			if id != t.root {
				min = minKeys(t.capacity)
			}
			if len(b.sepKeys) < min || len(b.sepKeys) > max {
				return fmt.Errorf("btree: branch %d occupancy %d out of [%d,%d]", id, len(b.sepKeys), min, max)
			}
			for i, c := range b.children {
				childLo, childHi := lo, hi
				if i > 0 {
					childLo = &b.sepKeys[i-1]
				}
				if i < len(b.sepKeys) {
					childHi = &b.sepKeys[i]
				}
				if err := walk(c, level+1, childLo, childHi); err != nil {
					return err
				}
			}
			return nil
		}

		leaf := t.arena.Leaf(id)
		entries := leaf.entries()
		for i := 1; i < len(entries); i++ {
			a, c := entries[i-1].Key, entries[i].Key
			if leaf.comparator.Compare(&a, &c) >= 0 {
				return fmt.Errorf("btree: leaf %d keys not strictly increasing", id)
			}
		}
		for i := range entries {
			key := entries[i].Key
			if lo != nil && leaf.comparator.Compare(&key, lo) < 0 {
				return fmt.Errorf("btree: leaf %d key %v below parent's lower bound %v (P5 violated)", id, key, *lo)
			}
			if hi != nil && leaf.comparator.Compare(&key, hi) >= 0 {
				return fmt.Errorf("btree: leaf %d key %v not below parent's upper bound %v (P5 violated)", id, key, *hi)
			}
		}
		if id != t.root && len(entries) < minKeys(t.capacity) {
			return fmt.Errorf("btree: leaf %d occupancy %d below minimum", id, len(entries))
		}
		if len(entries) > t.capacity {
			return fmt.Errorf("btree: leaf %d occupancy %d above capacity", id, len(entries))
		}
		if leafDepth == -1 {
			leafDepth = level
		} else if leafDepth != level {
			return fmt.Errorf("btree: leaves at inconsistent depth: %d vs %d", leafDepth, level)
		}
		return nil
	}
	if err := walk(t.root, 0, nil, nil); err != nil {
		return err
	}

	count := 0
	id := t.headLeaf
	var prevKey K
	havePrev := false
	for id != NullNode {
		leaf := t.arena.Leaf(id)
		for _, e := range leaf.entries() {
			if havePrev && leaf.comparator.Compare(&prevKey, &e.Key) >= 0 {
				return fmt.Errorf("btree: leaf list not strictly increasing across leaves")
			}
			prevKey, havePrev = e.Key, true
		}
		count++
		id = leaf.next
	}
	liveLeaves, _ := t.arena.liveSlots()
	if count != liveLeaves {
		return fmt.Errorf("btree: leaf list visits %d leaves but arena holds %d", count, liveLeaves)
	}

	iterated := 0
	it := t.Iterator()
	for it.HasNext() {
		it.Next()
		iterated++
	}
	if iterated != t.size {
		return fmt.Errorf("btree: size %d does not match iterated count %d", t.size, iterated)
	}

	return nil
}

// ForEach visits every entry in ascending key order.
func (t *Tree[K, V]) ForEach(callback func(K, V)) {
	it := t.Iterator()
	for it.HasNext() {
		k, v := it.Next()
		callback(k, v)
	}
}

// GetMemoryFootprint reports the approximate in-memory size of the tree,
// including every live arena slot.
func (t *Tree[K, V]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*t))

	var leaves, branches uintptr
	for _, l := range t.arena.leaves {
		if l != nil {
			leaves += l.GetMemoryFootprint().Total()
		}
	}
	for _, b := range t.arena.branches {
		if b != nil {
			branches += b.GetMemoryFootprint().Total()
		}
	}
	mf.AddChild("leaves", common.NewMemoryFootprint(leaves))
	mf.AddChild("branches", common.NewMemoryFootprint(branches))
	return mf
}
