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
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
)

// Writer names attributed to fields not written by a capture unit.
const (
	WriterStatic    = "static"
	WriterTiming    = "timing"
	WriterTelemetry = "telemetry"
)

// Aggregator runs a capture plan around one call and builds its record.
type Aggregator struct {
	plan   *capture.Plan
	static []StaticField
	clock  *MonotonicClock
	logger *slog.Logger
}

// NewAggregator creates an aggregator for a resolved plan.
func NewAggregator(plan *capture.Plan, static []StaticField, clk *MonotonicClock, logger *slog.Logger) *Aggregator {
	if clk == nil {
		clk = processClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{plan: plan, static: static, clock: clk, logger: logger}
}

// Begin creates the record for inv: static fields, then pre-call units in
// plan order, then start_time.
func (a *Aggregator) Begin(ctx context.Context, inv *capture.Invocation) *record.Record {
	rec := record.New(record.WithCollisionHandler(func(c record.Collision) {
		fieldCollisions.Inc()
		a.logger.Warn("capture field collision",
			"code", errors.ErrCodeCollision,
			"function", inv.FunctionName,
			"field", c.Field,
			"previous", c.Previous,
			"current", c.Current)
	}))

	rec.SetWriter(WriterStatic)
	for _, f := range a.static {
		rec.Set(f.Key, f.Value)
	}

	for _, u := range a.plan.Pre {
		a.run(ctx, u, rec, inv)
	}

	rec.SetWriter(WriterTiming)
	rec.Set(record.FieldStartTime, a.clock.Now())
	return rec
}

// End records finish_time, then runs post-call units in plan order.
func (a *Aggregator) End(ctx context.Context, rec *record.Record, inv *capture.Invocation) {
	rec.SetWriter(WriterTiming)
	rec.Set(record.FieldFinishTime, a.clock.Now())

	for _, u := range a.plan.Post {
		a.run(ctx, u, rec, inv)
	}
}

// run executes one unit with its name as the record writer. A panicking
// unit is logged and skipped.
func (a *Aggregator) run(ctx context.Context, u capture.Unit, rec *record.Record, inv *capture.Invocation) {
	name := u.Name()
	rec.SetWriter(name)
	start := time.Now()

	defer func() {
		captureUnitDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			captureUnitPanics.WithLabelValues(name).Inc()
			a.logger.Warn("capture unit panicked",
				"code", errors.ErrCodeInternal,
				"function", inv.FunctionName,
				"unit", name,
				"phase", u.Phase().String(),
				"panic", fmt.Sprint(r))
		}
	}()

	u.Capture(ctx, rec, inv)
}
