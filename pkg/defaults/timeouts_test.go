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

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Capture timeouts
		{"CaptureTimeout", CaptureTimeout, 1 * time.Second, 30 * time.Second},
		{"CaptureK8sTimeout", CaptureK8sTimeout, 10 * time.Second, 60 * time.Second},

		// Telemetry
		{"TelemetryInterval", TelemetryInterval, 1 * time.Second, 10 * time.Minute},
		{"TelemetryFailureLogInterval", TelemetryFailureLogInterval, 1 * time.Second, 5 * time.Minute},

		// Sinks
		{"SinkRemoteTimeout", SinkRemoteTimeout, 1 * time.Second, 30 * time.Second},
		{"SinkDialTimeout", SinkDialTimeout, 1 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s = %v, below minimum %v", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s = %v, above maximum %v", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestTelemetryIntervalDefault(t *testing.T) {
	if TelemetryInterval != 60*time.Second {
		t.Errorf("TelemetryInterval = %v, want 60s", TelemetryInterval)
	}
}

func TestEncoderMaxDepth(t *testing.T) {
	if EncoderMaxDepth < 4 {
		t.Errorf("EncoderMaxDepth = %d, too small for nested records", EncoderMaxDepth)
	}
}
