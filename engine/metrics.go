// Copyright (C) 2024, Ledger Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ledgerlabs/tokenledger/actions"
)

type metrics struct {
	ops      map[string]prometheus.Counter
	rejected prometheus.Counter
	aborted  prometheus.Counter
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		ops: map[string]prometheus.Counter{},
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "engine",
			Name:      "rejected",
			Help:      "number of operations rejected for missing authority",
		}),
		aborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "engine",
			Name:      "aborted",
			Help:      "number of operations aborted during execution",
		}),
	}
	errs := wrappers.Errs{}
	for _, op := range actions.OpNames() {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "operations",
			Name:      op,
			Help:      "number of " + op + " operations committed",
		})
		m.ops[op] = c
		errs.Add(r.Register(c))
	}
	errs.Add(
		r.Register(m.rejected),
		r.Register(m.aborted),
	)
	return m, errs.Err
}

func (m *metrics) committed(op string) {
	if c, ok := m.ops[op]; ok {
		c.Inc()
	}
}
