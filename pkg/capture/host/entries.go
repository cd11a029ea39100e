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

package host

import "github.com/NVIDIA/microbench/pkg/capture"

// Entries returns catalog entries for this package's mixins.
func Entries() []capture.Entry {
	return []capture.Entry{
		{
			Name:        MixinHostInfo,
			Description: "hostname and operating system",
			Fields:      []string{FieldHostname, FieldOS},
			New:         func(capture.Options) capture.Mixin { return HostInfo() },
		},
		{
			Name:        MixinOSRelease,
			Description: "/etc/os-release contents",
			Fields:      []string{FieldOSRelease},
			New:         func(capture.Options) capture.Mixin { return OSRelease() },
		},
		{
			Name:        MixinResources,
			Description: "CPU cores and total RAM",
			Fields:      []string{FieldCoresLogical, FieldCoresPhysical, FieldRAMTotal},
			New:         func(capture.Options) capture.Mixin { return Resources() },
		},
		{
			Name:        MixinProcessUsage,
			Description: "CPU time, RSS and threads of this process after the call",
			Fields:      []string{FieldProcessCPUUser, FieldProcessCPUSystem, FieldProcessRSS, FieldProcessNumThreads},
			New:         func(capture.Options) capture.Mixin { return ProcessUsage() },
		},
	}
}
