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

import "fmt"

// NodeId is a stable, non-owning handle into an Arena. The top bit tags
// whether the id addresses a branch or a leaf slot, so a caller can
// dispatch on the kind of node without carrying a separate tag value
// around or paying for an interface call on every descent step.
type NodeId uint64

const branchTag NodeId = 1 << 63

// NullNode is the sentinel id meaning "no node" (e.g. a leaf's next_leaf
// at the tail of the list, or a branch that has not been allocated yet).
const NullNode NodeId = ^NodeId(0)

func leafId(index int) NodeId {
	return NodeId(index)
}

func branchId(index int) NodeId {
	return branchTag | NodeId(index)
}

func (id NodeId) isBranch() bool {
	return id != NullNode && id&branchTag != 0
}

func (id NodeId) index() int {
	return int(id &^ branchTag)
}

// Arena owns every LeafNode and BranchNode belonging to a single Tree. It
// hands out NodeIds on allocation and recycles freed slots through a free
// list, so the tree itself never holds a raw pointer across a mutation
// that might reallocate storage elsewhere in the arena.
type Arena[K comparable, V any] struct {
	leaves       []*LeafNode[K, V]
	branches     []*BranchNode[K]
	freeLeaves   []NodeId
	freeBranches []NodeId
}

// NewArena creates an empty arena.
func NewArena[K comparable, V any]() *Arena[K, V] {
	return &Arena[K, V]{}
}

// AllocateLeaf stores leaf in a free or new slot and returns its id.
func (a *Arena[K, V]) AllocateLeaf(leaf *LeafNode[K, V]) NodeId {
	if n := len(a.freeLeaves); n > 0 {
		id := a.freeLeaves[n-1]
		a.freeLeaves = a.freeLeaves[:n-1]
		a.leaves[id.index()] = leaf
		return id
	}
	a.leaves = append(a.leaves, leaf)
	return leafId(len(a.leaves) - 1)
}

// AllocateBranch stores branch in a free or new slot and returns its id.
func (a *Arena[K, V]) AllocateBranch(branch *BranchNode[K]) NodeId {
	if n := len(a.freeBranches); n > 0 {
		id := a.freeBranches[n-1]
		a.freeBranches = a.freeBranches[:n-1]
		a.branches[id.index()] = branch
		return id
	}
	a.branches = append(a.branches, branch)
	return branchId(len(a.branches) - 1)
}

// Leaf dereferences id, which must currently be a live leaf. Dereferencing
// a freed or out-of-range id is a programming error and panics, since
// there is no recoverable meaning for the caller to fall back to.
func (a *Arena[K, V]) Leaf(id NodeId) *LeafNode[K, V] {
	if id.isBranch() {
		panic(fmt.Sprintf("btree: arena id %d is a branch, not a leaf", id))
	}
	idx := id.index()
	if idx < 0 || idx >= len(a.leaves) || a.leaves[idx] == nil {
		panic(fmt.Sprintf("btree: use of freed or invalid leaf id %d", id))
	}
	return a.leaves[idx]
}

// Branch dereferences id, which must currently be a live branch.
func (a *Arena[K, V]) Branch(id NodeId) *BranchNode[K] {
	if !id.isBranch() {
		panic(fmt.Sprintf("btree: arena id %d is a leaf, not a branch", id))
	}
	idx := id.index()
	if idx < 0 || idx >= len(a.branches) || a.branches[idx] == nil {
		panic(fmt.Sprintf("btree: use of freed or invalid branch id %d", id))
	}
	return a.branches[idx]
}

// FreeLeaf releases id back to the free list. Freeing an id twice, or an
// id that was never allocated, is a programming error and panics.
func (a *Arena[K, V]) FreeLeaf(id NodeId) {
	idx := id.index()
	if id.isBranch() || idx < 0 || idx >= len(a.leaves) || a.leaves[idx] == nil {
		panic(fmt.Sprintf("btree: double free or invalid free of leaf id %d", id))
	}
	a.leaves[idx] = nil
	a.freeLeaves = append(a.freeLeaves, id)
}

// FreeBranch releases id back to the free list.
func (a *Arena[K, V]) FreeBranch(id NodeId) {
	idx := id.index()
	if !id.isBranch() || idx < 0 || idx >= len(a.branches) || a.branches[idx] == nil {
		panic(fmt.Sprintf("btree: double free or invalid free of branch id %d", id))
	}
	a.branches[idx] = nil
	a.freeBranches = append(a.freeBranches, id)
}

// BorrowLeafPair returns two distinct, simultaneously live leaf pointers.
// It exists so rebalancing (underfull + sibling) never needs to smuggle
// aliased references across the arena boundary. Splits do not use it: the
// new node is built before it is allocated.
func (a *Arena[K, V]) BorrowLeafPair(x, y NodeId) (*LeafNode[K, V], *LeafNode[K, V]) {
	if x == y {
		panic("btree: BorrowLeafPair called with identical ids")
	}
	return a.Leaf(x), a.Leaf(y)
}

// BorrowBranchPair returns two distinct, simultaneously live branch pointers.
func (a *Arena[K, V]) BorrowBranchPair(x, y NodeId) (*BranchNode[K], *BranchNode[K]) {
	if x == y {
		panic("btree: BorrowBranchPair called with identical ids")
	}
	return a.Branch(x), a.Branch(y)
}

// reset discards every node in the arena, returning it to its initial,
// empty state. Used by Tree.Clear to guarantee no slot of the old tree
// stays live (P7: no leaks).
func (a *Arena[K, V]) reset() {
	a.leaves = nil
	a.branches = nil
	a.freeLeaves = nil
	a.freeBranches = nil
}

// liveSlots reports how many leaf and branch slots are currently
// allocated (non-freed). Used by invariant checks and tests.
func (a *Arena[K, V]) liveSlots() (leaves, branches int) {
	for _, l := range a.leaves {
		if l != nil {
			leaves++
		}
	}
	for _, b := range a.branches {
		if b != nil {
			branches++
		}
	}
	return
}
