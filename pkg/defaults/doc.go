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

// Package defaults provides centralized configuration constants for microbench.
//
// This package defines timeout values, sampling intervals, and other defaults
// used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Categories
//
//   - Capture timeouts: bounded I/O performed by capture units
//   - Telemetry: default sampling interval
//   - Sink timeouts: remote append operations
//   - Encoder limits: recursion bounds for custom encoders
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/microbench/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CaptureTimeout)
//	defer cancel()
//
// # Guidelines
//
//   - Capture units: 10s default, respects parent context deadline
//   - Kubernetes lookups: 30s, the API server may be rate limited
//   - Telemetry: 60s between samples unless configured otherwise
package defaults
