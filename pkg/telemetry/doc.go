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

// Package telemetry samples resource usage while a wrapped function runs.
//
// A Sampler calls a SampleFunc on a fixed interval from one background
// goroutine, between Start and Stop:
//
//	s := telemetry.NewSampler(telemetry.ProcessSampler(), 5*time.Second)
//	if err := s.Start(ctx, self); err != nil {
//	    return err
//	}
//	result, err := fn(ctx)
//	samples := s.Stop()
//
// Stop blocks until the goroutine has exited, so no sample is added after
// it returns, and hands the collected samples to the caller. No sample is
// taken at start or stop; a call shorter than the interval has none.
//
// Sampling failures (errors or panics from the SampleFunc) never stop the
// sampler. They are counted and logged at a limited rate.
//
// The state machine is Idle -> Running -> Stopping -> Idle. Start is only
// valid when Idle; Stop on an idle sampler is a no-op.
package telemetry
