// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	conflicts        prometheus.Counter
	escrowHeld       prometheus.Gauge
	payoutsTotal     prometheus.Counter
	feesTotal        prometheus.Counter
	refundsTotal     prometheus.Counter
	eventsEmitted    prometheus.Counter
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	// promauto.With(nil) creates unregistered collectors
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worksync_ledger_operations_total",
			Help: "ledger operations by name and result kind",
		},
		[]string{"op", "result"},
	)
	m.operationLatency = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worksync_ledger_operation_seconds",
			Help:    "latency of mutating ledger operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"op"},
	)
	m.conflicts = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "worksync_ledger_conflicts_total",
		Help: "mutations refused because the entity was busy or stale",
	})
	m.escrowHeld = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "worksync_ledger_escrow_held",
		Help: "base units currently held in job escrow",
	})
	m.payoutsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "worksync_ledger_payouts_total",
		Help: "base units released to freelancers",
	})
	m.feesTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "worksync_ledger_fees_total",
		Help: "base units collected as platform fees",
	})
	m.refundsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "worksync_ledger_refunds_total",
		Help: "base units refunded to job owners",
	})
	m.eventsEmitted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "worksync_ledger_events_total",
		Help: "job events appended to the event log",
	})
}
