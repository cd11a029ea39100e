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

// Package gpu provides a capture unit reporting NVIDIA GPU attributes.
//
// The unit runs nvidia-smi once per invocation in query mode:
//
//	nvidia-smi --query-gpu=uuid,gpu_name,memory.total --format=csv,noheader,nounits
//
// and writes one field per attribute, named nvidia_<attribute> and mapping
// GPU UUID to value:
//
//	"nvidia_gpu_name":     {"GPU-5e3a...": "NVIDIA H100 80GB HBM3"},
//	"nvidia_memory.total": {"GPU-5e3a...": "81559"}
//
// The attribute list is configurable with WithAttributes; see
// `nvidia-smi --help-query-gpu` for valid names. When nvidia-smi is missing
// or fails, every attribute field is nil.
package gpu
