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
package blob

import "github.com/prometheus/client_golang/prometheus"

const blobMetricNamePrefix = "database_blob_"

// Metrics tracks blob store operations for a single backend
type Metrics struct {
	opsTotal   *prometheus.CounterVec
	bytesTotal *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

// NewMetrics registers the blob metrics on the given registry. A nil registry
// yields a nil *Metrics, on which all methods are no-ops.
func NewMetrics(registry prometheus.Registerer, backend string) *Metrics {
	if registry == nil {
		return nil
	}
	labels := prometheus.Labels{"backend": backend}
	m := &Metrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        blobMetricNamePrefix + "ops_total",
				Help:        "Total number of blob operations",
				ConstLabels: labels,
			},
			[]string{"op"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        blobMetricNamePrefix + "bytes_total",
				Help:        "Total bytes read/written for blob operations",
				ConstLabels: labels,
			},
			[]string{"op"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        blobMetricNamePrefix + "errors_total",
				Help:        "Total number of failed blob operations",
				ConstLabels: labels,
			},
			[]string{"op"},
		),
	}
	registry.MustRegister(m.opsTotal, m.bytesTotal, m.errors)
	return m
}

// Observe records a completed operation and the number of bytes it moved
func (m *Metrics) Observe(op string, size int, err error) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues(op).Inc()
	if err != nil {
		m.errors.WithLabelValues(op).Inc()
		return
	}
	m.bytesTotal.WithLabelValues(op).Add(float64(size))
}
