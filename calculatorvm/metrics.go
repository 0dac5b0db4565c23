// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/calculatorvm/calculator"
)

const metricsNamespace = "calculatorvm"

type metrics struct {
	blocksAccepted prometheus.Counter
	txsAccepted    prometheus.Counter
	invocations    *prometheus.CounterVec
	txsDropped     prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blocks_accepted",
			Help:      "Number of blocks accepted",
		}),
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "txs_accepted",
			Help:      "Number of transactions accepted",
		}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invocations",
			Help:      "Number of accepted program invocations by operation",
		}, []string{"operation"}),
		txsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "txs_dropped",
			Help:      "Number of transactions dropped while building blocks because they failed",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.blocksAccepted),
		registerer.Register(m.txsAccepted),
		registerer.Register(m.invocations),
		registerer.Register(m.txsDropped),
	)
	return m, errs.Err
}

func (m *metrics) accepted(blk *Block) {
	m.blocksAccepted.Inc()
	m.txsAccepted.Add(float64(len(blk.Txs)))
	for _, tx := range blk.Txs {
		invoke, ok := tx.UnsignedTx.(*InvokeTx)
		if !ok {
			continue
		}
		operation := "none"
		if len(invoke.Data) > 0 {
			operation = calculator.Operation(invoke.Data[0]).String()
		}
		m.invocations.WithLabelValues(operation).Inc()
	}
}
