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
	"log/slog"
	"time"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/encoder"
	"github.com/NVIDIA/microbench/pkg/sink"
	"github.com/NVIDIA/microbench/pkg/telemetry"
	"k8s.io/utils/clock"
)

// Option configures a Benchmark.
type Option func(*Config)

// Config holds the settings of a Benchmark. It is frozen by New.
type Config struct {
	Mixins            []capture.Mixin
	Sink              sink.Sink
	Telemetry         telemetry.SampleFunc
	TelemetryInterval time.Duration
	Custom            []encoder.CustomFunc
	Static            []StaticField
	Logger            *slog.Logger
	Clock             clock.WithTicker
	ErrorHandler      func(error)
}

// StaticField is a fixed key/value written to every record before any
// capture unit runs.
type StaticField struct {
	Key   string
	Value any
}

// WithMixins appends capture mixins in composition order.
func WithMixins(mixins ...capture.Mixin) Option {
	return func(c *Config) {
		c.Mixins = append(c.Mixins, mixins...)
	}
}

// WithSink sets the output sink.
func WithSink(s sink.Sink) Option {
	return func(c *Config) {
		c.Sink = s
	}
}

// WithTelemetry enables background sampling with fn every interval. A
// non-positive interval uses the default.
func WithTelemetry(fn telemetry.SampleFunc, interval time.Duration) Option {
	return func(c *Config) {
		c.Telemetry = fn
		c.TelemetryInterval = interval
	}
}

// WithCustomEncoder appends functions tried for values the base encoder
// cannot represent.
func WithCustomEncoder(fns ...encoder.CustomFunc) Option {
	return func(c *Config) {
		c.Custom = append(c.Custom, fns...)
	}
}

// WithStatic adds a fixed field to every record. Keys must be unique.
func WithStatic(key string, value any) Option {
	return func(c *Config) {
		c.Static = append(c.Static, StaticField{Key: key, Value: value})
	}
}

// WithLogger sets the logger for pipeline warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithClock sets the clock for timestamps and telemetry ticks.
func WithClock(clk clock.WithTicker) Option {
	return func(c *Config) {
		if clk != nil {
			c.Clock = clk
		}
	}
}

// WithErrorHandler sets a function called with every sink append error.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Config) {
		c.ErrorHandler = fn
	}
}
