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
	"unsafe"

	"github.com/Fantom-foundation/Carmen/go/common"
)

// BranchNode stores sorted separator keys and one more child id than it
// has separators. childFor/insertSeparator/deleteSeparatorAt implement
// bisect-left routing: for all i, every key in the subtree rooted at
// children[i] is strictly less than sepKeys[i].
type BranchNode[K comparable] struct {
	sepKeys    []K
	children   []NodeId
	capacity   int
	comparator common.Comparator[K]
}

func newBranchNode[K comparable](capacity int, comparator common.Comparator[K]) *BranchNode[K] {
	return &BranchNode[K]{
		sepKeys:    make([]K, 0, capacity+1),
		children:   make([]NodeId, 0, capacity+2),
		capacity:   capacity,
		comparator: comparator,
	}
}

func (b *BranchNode[K]) size() int {
	return len(b.sepKeys)
}

// childFor returns the index of the child subtree that may contain key,
// using bisect-left: the first i with key < sepKeys[i], or size() if key
// is >= every separator.
func (b *BranchNode[K]) childFor(key K) int {
	return sort.Search(len(b.sepKeys), func(i int) bool {
		return b.comparator.Compare(&key, &b.sepKeys[i]) < 0
	})
}

// insertSeparator places (sep, rightChild) at position idx and reports
// whether the branch overflowed capacity and had to split. On split, the
// promoted key and new right sibling's id are returned; the caller is
// responsible for allocating the new branch via the supplied factory.
func (b *BranchNode[K]) insertSeparator(idx int, sep K, rightChild NodeId, allocateBranch func(*BranchNode[K]) NodeId) (promoted K, rightID NodeId, split bool) {
	b.sepKeys = insertAt(b.sepKeys, idx, sep)
	b.children = insertAt(b.children, idx+1, rightChild)

	if len(b.sepKeys) <= b.capacity {
		return promoted, NullNode, false
	}

	// Overflow: capacity+1 separators, capacity+2 children accumulated.
	mid := (b.capacity + 1) / 2
	promoted = b.sepKeys[mid]

	rightSep := append([]K{}, b.sepKeys[mid+1:]...)
	rightChildren := append([]NodeId{}, b.children[mid+1:]...)

	b.sepKeys = append([]K{}, b.sepKeys[:mid]...)
	b.children = append([]NodeId{}, b.children[:mid+1]...)

	right := newBranchNode[K](b.capacity, b.comparator)
	right.sepKeys = rightSep
	right.children = rightChildren

	rightID = allocateBranch(right)
	return promoted, rightID, true
}

// deleteSeparatorAt removes sepKeys[idx] and children[idx+1], used when
// the right child at idx+1 has been merged into, or donated entirely to,
// its left sibling at idx.
func (b *BranchNode[K]) deleteSeparatorAt(idx int) {
	b.sepKeys = removeAt(b.sepKeys, idx)
	b.children = removeAt(b.children, idx+1)
}

func (b *BranchNode[K]) GetMemoryFootprint() *common.MemoryFootprint {
	selfSize := unsafe.Sizeof(*b)
	var k K
	keySize := unsafe.Sizeof(k)
	idSize := unsafe.Sizeof(NodeId(0))
	total := selfSize + uintptr(len(b.sepKeys))*keySize + uintptr(len(b.children))*idSize
	return common.NewMemoryFootprint(total)
}

func insertAt[T any](s []T, idx int, v T) []T {
	s = append(s, v)
	copy(s[idx+1:], s[idx:len(s)-1])
	s[idx] = v
	return s
}

func removeAt[T any](s []T, idx int) []T {
	return append(s[:idx], s[idx+1:]...)
}
