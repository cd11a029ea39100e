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

// Package config loads microbench command-line settings from a YAML file and
// MICROBENCH_* environment variables.
//
// Example ~/.microbench.yaml:
//
//	output: redis://results.internal:6379/0?key=llm-bench
//	mixins: [run-id, function-call, outcome, host-info, nvidia-smi]
//	env: [CUDA_VISIBLE_DEVICES, NCCL_DEBUG]
//	gpu-attributes: [gpu_name, memory.total, driver_version]
//	static:
//	  experiment: fp8-sweep
//	telemetry: true
//	telemetry-interval: 10s
//
// Keys map to environment variables by upper-casing and replacing dashes with
// underscores: MICROBENCH_TELEMETRY_INTERVAL=10s. List values from the
// environment are comma separated.
package config
