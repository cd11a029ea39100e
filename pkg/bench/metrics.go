// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package bench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomePanic = "panic"

	statusOK    = "ok"
	statusError = "error"
)

var (
	// Invocation metrics
	invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microbench_invocations_total",
			Help: "Total number of wrapped function invocations",
		},
		[]string{"function", "outcome"},
	)

	invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microbench_invocation_duration_seconds",
			Help:    "Duration of wrapped function calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 12),
		},
		[]string{"function"},
	)

	// Capture pipeline metrics
	captureUnitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "microbench_capture_unit_duration_seconds",
			Help:    "Duration of capture units in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"unit"},
	)

	captureUnitPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microbench_capture_unit_panics_total",
			Help: "Total number of recovered capture unit panics",
		},
		[]string{"unit"},
	)

	fieldCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "microbench_field_collisions_total",
			Help: "Total number of fields written by more than one writer",
		},
	)

	encoderFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "microbench_encoder_fallbacks_total",
			Help: "Total number of values replaced by the unencodable placeholder",
		},
	)

	// Output metrics
	sinkAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microbench_sink_appends_total",
			Help: "Total number of record appends by status",
		},
		[]string{"status"},
	)

	telemetrySamples = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microbench_telemetry_samples_total",
			Help: "Total number of telemetry sampling attempts by status",
		},
		[]string{"status"},
	)
)

func telemetryResult(err error) {
	if err != nil {
		telemetrySamples.WithLabelValues(statusError).Inc()
		return
	}
	telemetrySamples.WithLabelValues(statusOK).Inc()
}
