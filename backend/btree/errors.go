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

import "github.com/Fantom-foundation/Carmen/go/common"

// ErrInvalidCapacity is returned by New when the requested node capacity
// is below the minimum this package supports.
const ErrInvalidCapacity = common.ConstError("btree: capacity must be >= minCapacity")

// minCapacity is the smallest node capacity the tree accepts. Below this,
// a node cannot both hold the minimum occupancy after a split and still
// leave room to borrow from a sibling before a merge is forced.
const minCapacity = 4
