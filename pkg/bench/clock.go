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
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// processClock is shared by every Benchmark using the real clock so all
// records written by one process are ordered.
var processClock = NewMonotonicClock(clock.RealClock{})

// MonotonicClock is a wall clock that never goes backwards. Readings are UTC.
type MonotonicClock struct {
	clock clock.PassiveClock

	mu   sync.Mutex
	last time.Time
}

// NewMonotonicClock wraps c.
func NewMonotonicClock(c clock.PassiveClock) *MonotonicClock {
	return &MonotonicClock{clock: c}
}

// Now returns the later of the underlying clock's time and the previous
// reading.
func (m *MonotonicClock) Now() time.Time {
	now := m.clock.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Before(m.last) {
		return m.last
	}
	m.last = now
	return now
}

// Since returns the time elapsed since t.
func (m *MonotonicClock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}
