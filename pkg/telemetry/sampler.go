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

package telemetry

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/time/rate"
	"k8s.io/utils/clock"
)

// State is the lifecycle state of a Sampler.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SampleFunc produces one sample for the process p.
type SampleFunc func(ctx context.Context, p *process.Process) (map[string]any, error)

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock sets the clock driving the ticker and sample timestamps.
func WithClock(c clock.WithTicker) Option {
	return func(s *Sampler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTimestamps sets the source of sample timestamps. The ticker still
// runs on the sampler clock.
func WithTimestamps(now func() time.Time) Option {
	return func(s *Sampler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for sampling failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResultHook sets a function called after every sampling attempt with
// its error, nil on success. It runs on the sampler goroutine.
func WithResultHook(fn func(error)) Option {
	return func(s *Sampler) {
		s.onResult = fn
	}
}

// Sampler runs a SampleFunc periodically on its own goroutine.
type Sampler struct {
	fn       SampleFunc
	interval time.Duration
	clock    clock.WithTicker
	now      func() time.Time
	logger   *slog.Logger
	onResult func(error)

	mu       sync.Mutex
	state    State
	stop     chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
	samples  []record.Sample
	failures int
}

// NewSampler creates an idle sampler. A non-positive interval uses
// defaults.TelemetryInterval.
func NewSampler(fn SampleFunc, interval time.Duration, opts ...Option) *Sampler {
	if interval <= 0 {
		interval = defaults.TelemetryInterval
	}
	s := &Sampler{
		fn:       fn,
		interval: interval,
		clock:    clock.RealClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.now == nil {
		s.now = s.clock.Now
	}
	return s
}

// Interval returns the sampling interval.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// State returns the current state.
func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failures returns the number of failed sampling attempts of the last run.
// It is only meaningful once Stop has returned.
func (s *Sampler) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// Start launches the sampling goroutine. It fails unless the sampler is idle.
// Sampling ends when Stop is called or ctx is done. The context handed to
// the sample function is canceled by Stop.
func (s *Sampler) Start(ctx context.Context, handle *process.Process) error {
	if s.fn == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "sampler has no sample function")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return errors.NewWithContext(errors.ErrCodeInternal, "sampler is not idle",
			map[string]any{"state": s.state.String()})
	}

	s.state = Running
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.samples = nil
	s.failures = 0

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	r := &run{
		sampler: s,
		handle:  handle,
		start:   s.now(),
		limiter: &rate.Sometimes{
			First:    defaults.TelemetryFailureLogFirst,
			Interval: defaults.TelemetryFailureLogInterval,
		},
	}
	go r.loop(ctx, s.stop, s.done)

	return nil
}

// Stop signals the goroutine, waits for it to exit, and returns the samples
// in order. On an idle sampler it returns nil.
func (s *Sampler) Stop() []record.Sample {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return nil
	}
	s.state = Stopping
	close(s.stop)
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	samples := s.samples
	s.samples = nil
	s.state = Idle
	return samples
}

// run holds the goroutine-owned state of one Start/Stop cycle.
type run struct {
	sampler  *Sampler
	handle   *process.Process
	start    time.Time
	limiter  *rate.Sometimes
	samples  []record.Sample
	failures int
}

func (r *run) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	s := r.sampler
	ticker := s.clock.NewTicker(s.interval)

	defer func() {
		ticker.Stop()
		s.mu.Lock()
		s.samples = r.samples
		s.failures = r.failures
		s.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C():
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			default:
			}
			r.sample(ctx)
		}
	}
}

func (r *run) sample(ctx context.Context) {
	s := r.sampler

	values, err := r.call(ctx)
	if err != nil && ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
		// interrupted by Stop
		return
	}
	now := s.now()

	if s.onResult != nil {
		s.onResult(err)
	}

	if err != nil {
		r.failures++
		failures := r.failures
		r.limiter.Do(func() {
			s.logger.Warn("telemetry sample failed",
				"code", errors.ErrCodeTelemetrySample,
				"failures", failures,
				"error", err)
		})
		return
	}

	r.samples = append(r.samples, record.Sample{
		Seq:       len(r.samples),
		Timestamp: now,
		Elapsed:   now.Sub(r.start),
		Values:    values,
	})
}

func (r *run) call(ctx context.Context) (values map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			values = nil
			err = errors.NewWithContext(errors.ErrCodeTelemetrySample, "sample function panicked",
				map[string]any{"panic": fmt.Sprint(p)})
		}
	}()
	return r.sampler.fn(ctx, r.handle)
}
