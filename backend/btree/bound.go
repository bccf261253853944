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

// BoundKind distinguishes the three ways a Range endpoint can constrain
// keys.
type BoundKind int

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one endpoint of a Range query.
type Bound[K any] struct {
	Kind BoundKind
	Key  K
}

// UnboundedBound places no constraint on this end of the range.
func UnboundedBound[K any]() Bound[K] {
	return Bound[K]{Kind: Unbounded}
}

// IncludedBound constrains this end of the range to keys <= key (as the
// upper bound) or >= key (as the lower bound), i.e. key itself qualifies.
func IncludedBound[K any](key K) Bound[K] {
	return Bound[K]{Kind: Included, Key: key}
}

// ExcludedBound is like IncludedBound but key itself does not qualify.
func ExcludedBound[K any](key K) Bound[K] {
	return Bound[K]{Kind: Excluded, Key: key}
}

// admitsAsUpper reports whether key satisfies this bound used as an upper
// (hi) limit.
func (b Bound[K]) admitsAsUpper(cmp common.Comparator[K], key K) bool {
	switch b.Kind {
	case Unbounded:
		return true
	case Included:
		return cmp.Compare(&key, &b.Key) <= 0
	default: // Excluded
		return cmp.Compare(&key, &b.Key) < 0
	}
}
