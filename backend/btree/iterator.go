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
	"sort"

	"github.com/Fantom-foundation/Carmen/go/common"
)

// Iterator returns a lazy, forward, ordered cursor over every entry.
func (t *Tree[K, V]) Iterator() common.Iterator[K, V] {
	return t.Range(UnboundedBound[K](), UnboundedBound[K]())
}

// Range returns a lazy, forward, ordered cursor over entries satisfying
// both bounds. Positioning costs O(log n); each step thereafter is O(1)
// amortized.
func (t *Tree[K, V]) Range(lo, hi Bound[K]) common.Iterator[K, V] {
	var leafID NodeId
	var pos int

	if lo.Kind == Unbounded {
		leafID = t.headLeaf
		pos = 0
	} else {
		leafID = t.descendToLeaf(lo.Key)
		leaf := t.arena.Leaf(leafID)
		pos = leafLowerBound(leaf, lo.Key, t.comparator, lo.Kind == Excluded)
	}

	return &forwardIterator[K, V]{tree: t, leafID: leafID, pos: pos, hi: hi}
}

// leafLowerBound returns the first index in leaf whose key satisfies lo:
// key >= lo.Key, or key > lo.Key if excludeEqual.
func leafLowerBound[K comparable, V any](leaf *LeafNode[K, V], key K, cmp common.Comparator[K], excludeEqual bool) int {
	entries := leaf.entries()
	return sort.Search(len(entries), func(i int) bool {
		c := cmp.Compare(&entries[i].Key, &key)
		if excludeEqual {
			return c > 0
		}
		return c >= 0
	})
}

type forwardIterator[K comparable, V any] struct {
	tree      *Tree[K, V]
	leafID    NodeId
	pos       int
	hi        Bound[K]
	cachedKey K
	cachedVal V
	hasCached bool
	exhausted bool
}

func (it *forwardIterator[K, V]) fill() {
	if it.hasCached || it.exhausted {
		return
	}
	for it.leafID != NullNode {
		leaf := it.tree.arena.Leaf(it.leafID)
		entries := leaf.entries()
		if it.pos < len(entries) {
			e := entries[it.pos]
			if !it.hi.admitsAsUpper(it.tree.comparator, e.Key) {
				it.exhausted = true
				return
			}
			it.cachedKey, it.cachedVal = e.Key, e.Val
			it.hasCached = true
			return
		}
		it.leafID = leaf.next
		it.pos = 0
	}
	it.exhausted = true
}

func (it *forwardIterator[K, V]) HasNext() bool {
	it.fill()
	return it.hasCached
}

func (it *forwardIterator[K, V]) Next() (K, V) {
	it.fill()
	if !it.hasCached {
		var zk K
		var zv V
		return zk, zv
	}
	k, v := it.cachedKey, it.cachedVal
	it.hasCached = false
	it.pos++
	return k, v
}

// ReverseIterator returns a lazy cursor over every entry in descending
// key order. It is built from a stack of branch indices captured while
// descending to the rightmost leaf, stepped backward through parents to
// find each predecessor leaf — this needs no backward leaf link and no
// second top-down descent per step.
func (t *Tree[K, V]) ReverseIterator() common.Iterator[K, V] {
	it := &reverseIterator[K, V]{tree: t}
	it.descendRightmost(t.root)
	return it
}

type branchFrame struct {
	id  NodeId
	idx int
}

type reverseIterator[K comparable, V any] struct {
	tree      *Tree[K, V]
	stack     []branchFrame
	leafID    NodeId
	pos       int
	cachedKey K
	cachedVal V
	hasCached bool
	exhausted bool
}

func (it *reverseIterator[K, V]) descendRightmost(id NodeId) {
	for id.isBranch() {
		b := it.tree.arena.Branch(id)
		lastIdx := len(b.children) - 1
		it.stack = append(it.stack, branchFrame{id: id, idx: lastIdx})
		id = b.children[lastIdx]
	}
	it.leafID = id
	leaf := it.tree.arena.Leaf(id)
	it.pos = len(leaf.entries()) - 1
}

// stepToPreviousLeaf backtracks through the frame stack to the nearest
// unvisited left sibling subtree and descends to its rightmost leaf.
func (it *reverseIterator[K, V]) stepToPreviousLeaf() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		b := it.tree.arena.Branch(top.id)
		if top.idx > 0 {
			top.idx--
			it.descendRightmost(b.children[top.idx])
			return true
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

func (it *reverseIterator[K, V]) fill() {
	if it.hasCached || it.exhausted {
		return
	}
	for {
		if it.pos >= 0 {
			leaf := it.tree.arena.Leaf(it.leafID)
			e := leaf.entries()[it.pos]
			it.cachedKey, it.cachedVal = e.Key, e.Val
			it.hasCached = true
			return
		}
		if !it.stepToPreviousLeaf() {
			it.exhausted = true
			return
		}
	}
}

func (it *reverseIterator[K, V]) HasNext() bool {
	it.fill()
	return it.hasCached
}

func (it *reverseIterator[K, V]) Next() (K, V) {
	it.fill()
	if !it.hasCached {
		var zk K
		var zv V
		return zk, zv
	}
	k, v := it.cachedKey, it.cachedVal
	it.hasCached = false
	it.pos--
	return k, v
}
