// Copyright 2015 Google Inc. All Rights Reserved.
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

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Dispatcher reports to. A nil
// *Metrics is never passed to user code; New always substitutes the result
// of NewMetrics(nil) when Config.Metrics is unset.
type Metrics struct {
	opTotal    *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
	opErrors   *prometheus.CounterVec

	inodeTableSize prometheus.Gauge
	poolQueueDepth prometheus.Gauge
}

// NewMetrics builds a Metrics and, if reg is non-nil, registers every
// collector against it. Pass nil to get an unregistered, still-usable
// instance (the common case in tests, which don't stand up a registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfuse_dispatch_ops_total",
			Help: "Number of file system operations dispatched, by operation name.",
		}, []string{"op"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathfuse_dispatch_op_duration_seconds",
			Help:    "Latency of dispatched operations, by operation name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pathfuse_dispatch_op_errors_total",
			Help: "Number of dispatched operations that returned a non-nil error, by operation name.",
		}, []string{"op"}),
		inodeTableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pathfuse_inode_table_size",
			Help: "Number of allocated inode table slots, including free ones awaiting reuse.",
		}),
		poolQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pathfuse_workerpool_queue_depth",
			Help: "Number of tasks currently queued to the worker pool.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.opTotal, m.opDuration, m.opErrors, m.inodeTableSize, m.poolQueueDepth)
	}

	return m
}

// ObserveOp counts one completed operation and, if err is non-nil, one
// error for it. Latency is recorded separately by ObserveLatency.
func (m *Metrics) ObserveOp(opName string, err error) {
	m.opTotal.WithLabelValues(opName).Inc()
	if err != nil {
		m.opErrors.WithLabelValues(opName).Inc()
	}
}

// ObserveLatency records how long opName took.
func (m *Metrics) ObserveLatency(opName string, seconds float64) {
	m.opDuration.WithLabelValues(opName).Observe(seconds)
}

// SetInodeTableSize reports the current inode table footprint.
func (m *Metrics) SetInodeTableSize(n int) {
	m.inodeTableSize.Set(float64(n))
}

// SetPoolQueueDepth reports the current worker pool queue length.
func (m *Metrics) SetPoolQueueDepth(n int) {
	m.poolQueueDepth.Set(float64(n))
}
