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
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/encoder"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/NVIDIA/microbench/pkg/telemetry"
	"github.com/shirou/gopsutil/v3/process"
)

// Benchmark records one JSON document per wrapped call. It is safe for
// concurrent use.
type Benchmark struct {
	cfg        Config
	registry   *capture.Registry
	encoder    *encoder.Encoder
	clock      *MonotonicClock
	logger     *slog.Logger
	aggregator *Aggregator

	selfOnce sync.Once
	self     *process.Process
}

// New creates a Benchmark. A sink is required.
func New(opts ...Option) (*Benchmark, error) {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Sink == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "sink is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	seen := make(map[string]struct{}, len(cfg.Static))
	for _, f := range cfg.Static {
		if f.Key == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "static field key is required")
		}
		if _, dup := seen[f.Key]; dup {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig, "duplicate static field",
				map[string]any{"key": f.Key})
		}
		seen[f.Key] = struct{}{}
	}

	clk := processClock
	if cfg.Clock != nil {
		clk = NewMonotonicClock(cfg.Clock)
	}

	b := &Benchmark{
		cfg:      cfg,
		registry: capture.NewRegistry(cfg.Mixins...),
		encoder:  encoder.New(encoder.WithCustom(cfg.Custom...)),
		clock:    clk,
		logger:   cfg.Logger,
	}
	b.aggregator = NewAggregator(b.registry.Resolve(), cfg.Static, clk, cfg.Logger)
	return b, nil
}

// Plan returns the resolved capture plan.
func (b *Benchmark) Plan() *capture.Plan {
	return b.registry.Resolve()
}

// Call invokes fn and appends one record describing the call. fn's result
// and error are returned unchanged; a panic in fn is re-raised with the
// original value after the record is written.
func (b *Benchmark) Call(ctx context.Context, name string, args []any, fn func(context.Context) (any, error)) (any, error) {
	inv := capture.NewInvocation(name, args)
	rec := b.aggregator.Begin(ctx, inv)

	sampler := b.startSampler(ctx, name)

	started := time.Now()
	samples := b.invoke(ctx, fn, inv, sampler)
	invocationDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())

	b.aggregator.End(ctx, rec, inv)

	if sampler != nil {
		if samples == nil {
			samples = []record.Sample{}
		}
		rec.SetWriter(WriterTelemetry)
		rec.Set(record.FieldTelemetry, samples)
	}

	b.emit(ctx, rec, name)

	switch {
	case inv.Panicked:
		invocationsTotal.WithLabelValues(name, outcomePanic).Inc()
		panic(inv.Panic)
	case inv.Err != nil:
		invocationsTotal.WithLabelValues(name, outcomeError).Inc()
	default:
		invocationsTotal.WithLabelValues(name, outcomeOK).Inc()
	}
	return inv.Result, inv.Err
}

// invoke runs fn, stores its outcome in inv and stops the sampler on every
// exit path.
func (b *Benchmark) invoke(ctx context.Context, fn func(context.Context) (any, error), inv *capture.Invocation, sampler *telemetry.Sampler) (samples []record.Sample) {
	defer func() {
		if sampler != nil {
			samples = sampler.Stop()
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			inv.Panicked = true
			inv.Panic = r
		}
	}()

	inv.Result, inv.Err = fn(ctx)
	return nil
}

func (b *Benchmark) startSampler(ctx context.Context, name string) *telemetry.Sampler {
	if b.cfg.Telemetry == nil {
		return nil
	}

	opts := []telemetry.Option{
		telemetry.WithLogger(b.logger.With("function", name)),
		telemetry.WithResultHook(telemetryResult),
		telemetry.WithTimestamps(b.clock.Now),
	}
	if b.cfg.Clock != nil {
		opts = append(opts, telemetry.WithClock(b.cfg.Clock))
	}

	s := telemetry.NewSampler(b.cfg.Telemetry, b.cfg.TelemetryInterval, opts...)
	if err := s.Start(ctx, b.process()); err != nil {
		b.logger.Warn("failed to start telemetry sampler",
			"code", errors.CodeOf(err),
			"function", name,
			"error", err)
		return nil
	}
	return s
}

// process returns the handle of the current process, or nil when it
// cannot be opened.
func (b *Benchmark) process() *process.Process {
	b.selfOnce.Do(func() {
		p, err := telemetry.Self()
		if err != nil {
			b.logger.Debug("process handle unavailable", "error", err)
			return
		}
		b.self = p
	})
	return b.self
}

// emit encodes rec and appends it to the sink. Failures are logged and
// reported to the error handler.
func (b *Benchmark) emit(ctx context.Context, rec *record.Record, name string) {
	line, fallbacks, err := b.encoder.Encode(rec)
	for _, f := range fallbacks {
		encoderFallbacks.Inc()
		b.logger.Warn("value is not JSON encodable",
			"code", errors.ErrCodeSerializationFallback,
			"function", name,
			"path", f.Path,
			"type", f.Type)
	}
	if err == nil {
		err = b.cfg.Sink.Append(ctx, line)
	}
	if err != nil {
		sinkAppends.WithLabelValues(statusError).Inc()
		b.logger.Error("failed to append record",
			"code", errors.CodeOf(err),
			"function", name,
			"error", err)
		if b.cfg.ErrorHandler != nil {
			b.cfg.ErrorHandler(err)
		}
		return
	}
	sinkAppends.WithLabelValues(statusOK).Inc()
}
