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

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts structural rebalancing events for a Tree. A Tree created
// via New has nil metrics; WithMetrics attaches a live set of counters.
// All increment methods are nil-receiver safe so the hot path never has
// to branch on whether metrics were requested.
type Metrics struct {
	Splits  prometheus.Counter
	Merges  prometheus.Counter
	Borrows prometheus.Counter
}

// WithMetrics attaches Prometheus counters to t, registering them against
// registerer if non-nil, and returns the Metrics so the caller can read
// or re-register them elsewhere. namespace prefixes the metric names
// (e.g. "myservice" -> "myservice_btree_splits_total").
func WithMetrics[K comparable, V any](t *Tree[K, V], namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		Splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "btree_splits_total",
			Help:      "Number of leaf and branch node splits performed by the tree.",
		}),
		Merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "btree_merges_total",
			Help:      "Number of leaf and branch node merges performed during rebalancing.",
		}),
		Borrows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "btree_borrows_total",
			Help:      "Number of sibling borrows performed during rebalancing.",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.Splits, m.Merges, m.Borrows)
	}
	t.metrics = m
	return m
}

func (m *Metrics) incSplit() {
	if m != nil && m.Splits != nil {
		m.Splits.Inc()
	}
}

func (m *Metrics) incMerge() {
	if m != nil && m.Merges != nil {
		m.Merges.Inc()
	}
}

func (m *Metrics) incBorrow() {
	if m != nil && m.Borrows != nil {
		m.Borrows.Inc()
	}
}
