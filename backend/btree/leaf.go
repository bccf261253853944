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
	"unsafe"

	"github.com/Fantom-foundation/Carmen/go/common"
)

// LeafNode stores a sorted run of key/value pairs and a forward link to
// the leaf holding the next-larger keys. Storage is delegated to
// common.SortedMap, which already provides the bisect/shift/Get/Put/Remove
// contract a leaf needs.
type LeafNode[K comparable, V any] struct {
	data       *common.SortedMap[K, V]
	next       NodeId
	capacity   int
	comparator common.Comparator[K]
}

func newLeafNode[K comparable, V any](capacity int, comparator common.Comparator[K]) *LeafNode[K, V] {
	return &LeafNode[K, V]{
		data:       common.NewSortedMap[K, V](capacity+1, comparator),
		next:       NullNode,
		capacity:   capacity,
		comparator: comparator,
	}
}

func (l *LeafNode[K, V]) size() int {
	return l.data.Size()
}

// find reports the value stored for key, if any.
func (l *LeafNode[K, V]) find(key K) (V, bool) {
	return l.data.Get(key)
}

// insert places key/value into the leaf. If key was already present, its
// value is overwritten and the previous value is returned with existed =
// true; size does not change. Otherwise the pair is added; if this
// overflows the leaf's capacity, the leaf is split via arena and the
// right half allocated as a new leaf, returned as rightID/separator/split.
func (l *LeafNode[K, V]) insert(arena *Arena[K, V], key K, value V) (previous V, existed bool, rightID NodeId, separator K, split bool) {
	if prev, ok := l.data.Get(key); ok {
		l.data.Put(key, value)
		return prev, true, NullNode, separator, false
	}

	l.data.Put(key, value)
	if l.size() <= l.capacity {
		return previous, false, NullNode, separator, false
	}

	// Overflow: l.size() == capacity+1. Split so the right (new) leaf
	// receives the upper half; separators are copies of leaf keys.
	entries := l.data.GetEntries()
	total := len(entries)
	leftSize := (total + 1) / 2

	leftEntries := append([]common.MapEntry[K, V]{}, entries[:leftSize]...)
	rightEntries := append([]common.MapEntry[K, V]{}, entries[leftSize:]...)

	l.data = common.InitSortedMap[K, V](l.capacity+1, leftEntries, l.comparator)

	right := newLeafNode[K, V](l.capacity, l.comparator)
	right.data = common.InitSortedMap[K, V](l.capacity+1, rightEntries, l.comparator)
	right.next = l.next

	rightID = arena.AllocateLeaf(right)
	l.next = rightID
	separator = rightEntries[0].Key

	return previous, false, rightID, separator, true
}

// remove deletes key from the leaf. isRoot suppresses the underflow
// report, since a root leaf is allowed to shrink below the usual minimum.
func (l *LeafNode[K, V]) remove(key K, isRoot bool) (removed V, existed bool, underflow bool) {
	val, ok := l.data.Get(key)
	if !ok {
		return removed, false, false
	}
	l.data.Remove(key)
	if isRoot || l.size() >= minKeys(l.capacity) {
		return val, true, false
	}
	return val, true, true
}

// firstKey returns the smallest key in the leaf. The leaf must be
// non-empty.
func (l *LeafNode[K, V]) firstKey() K {
	return l.data.GetEntries()[0].Key
}

// takeFirst removes and returns the smallest entry. The leaf must be
// non-empty.
func (l *LeafNode[K, V]) takeFirst() (K, V) {
	e := l.data.GetEntries()[0]
	l.data.Remove(e.Key)
	return e.Key, e.Val
}

// takeLast removes and returns the largest entry. The leaf must be
// non-empty.
func (l *LeafNode[K, V]) takeLast() (K, V) {
	entries := l.data.GetEntries()
	e := entries[len(entries)-1]
	l.data.Remove(e.Key)
	return e.Key, e.Val
}

// put inserts key/value without ever triggering a split; callers that use
// this (borrow/merge) are responsible for keeping the leaf within
// capacity.
func (l *LeafNode[K, V]) put(key K, value V) {
	l.data.Put(key, value)
}

// absorb copies every entry of other into l, in sorted order, and takes
// over other's next link; it is used by leaf merge. other's entries are
// left in place and it stays allocated; the caller frees its id.
func (l *LeafNode[K, V]) absorb(other *LeafNode[K, V]) {
	for _, e := range other.data.GetEntries() {
		l.data.Put(e.Key, e.Val)
	}
	l.next = other.next
}

func (l *LeafNode[K, V]) forEach(callback func(K, V)) {
	l.data.ForEach(callback)
}

func (l *LeafNode[K, V]) entries() []common.MapEntry[K, V] {
	return l.data.GetEntries()
}

func (l *LeafNode[K, V]) GetMemoryFootprint() *common.MemoryFootprint {
	selfSize := unsafe.Sizeof(*l)
	mf := common.NewMemoryFootprint(selfSize)
	mf.AddChild("data", l.data.GetMemoryFootprint())
	return mf
}

// minKeys is the minimum occupancy (ceil(capacity/2)) a non-root node
// must keep.
func minKeys(capacity int) int {
	return (capacity + 1) / 2
}
