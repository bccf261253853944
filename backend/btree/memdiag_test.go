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
	"testing"

	"github.com/Fantom-foundation/Carmen/go/common"
)

// TestMemoryFootprintTracksRuntimeUsage builds a sizeable tree while
// sampling the process's own memory stats, and checks that the tree's
// self-reported GetMemoryFootprint is non-zero and that the runtime's
// TotalAlloc counter did not decrease over the build.
func TestMemoryFootprintTracksRuntimeUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping memory diagnostics in short mode")
	}

	tr, err := New[uint32, uint64](32, common.Uint32Comparator{})
	if err != nil {
		t.Fatal(err)
	}

	before := common.GetMemUsage(true)
	common.SampleAndPrintMemUsageForCall(1, false, func() {
		for i := uint32(0); i < 50_000; i++ {
			tr.Insert(i, uint64(i)*uint64(i))
		}
	})
	after := common.GetMemUsage(true)

	reported := tr.GetMemoryFootprint().Total()
	if reported == 0 {
		t.Errorf("GetMemoryFootprint reported 0 bytes for a %d-entry tree", tr.Len())
	}
	if after.TotalAlloc < before.TotalAlloc {
		t.Errorf("TotalAlloc should be monotonically increasing, got %d -> %d", before.TotalAlloc, after.TotalAlloc)
	}
	common.PrintMemUsage(true)
}
