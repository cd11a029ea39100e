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

package record

import "time"

// Reserved sample keys; sample values with these names are emitted with a
// "value_" prefix.
const (
	SampleKeyTimestamp = "timestamp"
	SampleKeySeq       = "seq"
	SampleKeyElapsed   = "elapsed"
)

// Sample is one telemetry snapshot taken while a wrapped function runs.
type Sample struct {
	// Seq is the 0-based position of the sample within its invocation.
	Seq int
	// Timestamp is the wall-clock time the sample was taken.
	Timestamp time.Time
	// Elapsed is the time since the sampler started.
	Elapsed time.Duration
	// Values holds the sampling function's output.
	Values map[string]any
}

// IsReservedSampleKey reports whether key collides with a sample's own fields.
func IsReservedSampleKey(key string) bool {
	switch key {
	case SampleKeyTimestamp, SampleKeySeq, SampleKeyElapsed:
		return true
	default:
		return false
	}
}
