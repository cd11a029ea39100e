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

// Package host provides capture units describing the machine and the
// current process.
//
// Mixins:
//
//   - HostInfo: hostname and a one-line operating system description
//   - OSRelease: the /etc/os-release key/value pairs
//   - Resources: logical and physical CPU cores and total RAM
//   - ProcessUsage: CPU time, RSS and thread count of the current process,
//     captured after the call
//
// Host data comes from gopsutil. Every unit records nil for a field it
// cannot read instead of failing the invocation.
package host
