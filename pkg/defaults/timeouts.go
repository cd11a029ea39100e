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

package defaults

import "time"

// Capture timeouts for bounded I/O performed by capture units.
const (
	// CaptureTimeout is the default timeout for a single capture unit
	// that shells out or talks to a local daemon (nvidia-smi, D-Bus).
	// Units should respect parent context deadlines when shorter.
	CaptureTimeout = 10 * time.Second

	// CaptureK8sTimeout is the timeout for Kubernetes API calls in capture units.
	CaptureK8sTimeout = 30 * time.Second
)

// Telemetry sampling defaults.
const (
	// TelemetryInterval is the default time between two telemetry samples.
	TelemetryInterval = 60 * time.Second

	// TelemetryFailureLogInterval bounds how often repeated sampling
	// failures are logged after the first few.
	TelemetryFailureLogInterval = 30 * time.Second

	// TelemetryFailureLogFirst is the number of sampling failures that are
	// always logged before rate limiting kicks in.
	TelemetryFailureLogFirst = 3
)

// Sink timeouts for remote append operations.
const (
	// SinkRemoteTimeout is the timeout for a single remote append (RPUSH).
	SinkRemoteTimeout = 5 * time.Second

	// SinkDialTimeout is the timeout for establishing a connection to a remote sink.
	SinkDialTimeout = 5 * time.Second
)

// Encoder limits.
const (
	// EncoderMaxDepth bounds nesting of values and custom encoder
	// substitutions before a value is replaced by the placeholder.
	EncoderMaxDepth = 32
)
