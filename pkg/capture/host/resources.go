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

import (
	"context"
	"log/slog"
	"os"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Fields written by ProcessUsage.
const (
	FieldProcessCPUUser    = "process_cpu_user"
	FieldProcessCPUSystem  = "process_cpu_system"
	FieldProcessRSS        = "process_rss"
	FieldProcessNumThreads = "process_num_threads"
)

var (
	cpuCounts     = cpu.CountsWithContext
	virtualMemory = mem.VirtualMemoryWithContext
	currentProc   = func(ctx context.Context) (*process.Process, error) {
		return process.NewProcessWithContext(ctx, int32(os.Getpid()))
	}
)

// Resources records CPU core counts and total RAM in bytes.
func Resources() capture.Mixin {
	return capture.NewMixin(MixinResources,
		capture.Func(MixinResources, capture.PreCall, func(ctx context.Context, rec *record.Record, _ *capture.Invocation) {
			ctx, cancel := context.WithTimeout(ctx, defaults.CaptureTimeout)
			defer cancel()

			rec.Set(FieldCoresLogical, count(ctx, true))
			rec.Set(FieldCoresPhysical, count(ctx, false))

			vm, err := virtualMemory(ctx)
			if err != nil || vm == nil {
				slog.Debug("memory info unavailable", "error", err)
				rec.Set(FieldRAMTotal, nil)
				return
			}
			rec.Set(FieldRAMTotal, vm.Total)
		}, FieldCoresLogical, FieldCoresPhysical, FieldRAMTotal),
	)
}

func count(ctx context.Context, logical bool) any {
	n, err := cpuCounts(ctx, logical)
	if err != nil || n <= 0 {
		slog.Debug("cpu count unavailable", "logical", logical, "error", err)
		return nil
	}
	return n
}

// ProcessUsage records cumulative CPU time in seconds, resident memory in
// bytes and thread count of the current process after the call.
func ProcessUsage() capture.Mixin {
	fields := []string{FieldProcessCPUUser, FieldProcessCPUSystem, FieldProcessRSS, FieldProcessNumThreads}

	return capture.NewMixin(MixinProcessUsage,
		capture.Func(MixinProcessUsage, capture.PostCall, func(ctx context.Context, rec *record.Record, _ *capture.Invocation) {
			ctx, cancel := context.WithTimeout(ctx, defaults.CaptureTimeout)
			defer cancel()

			for _, f := range fields {
				rec.Set(f, nil)
			}

			p, err := currentProc(ctx)
			if err != nil {
				slog.Debug("process handle unavailable", "error", err)
				return
			}

			if times, err := p.TimesWithContext(ctx); err == nil {
				rec.Set(FieldProcessCPUUser, times.User)
				rec.Set(FieldProcessCPUSystem, times.System)
			}
			if m, err := p.MemoryInfoWithContext(ctx); err == nil {
				rec.Set(FieldProcessRSS, m.RSS)
			}
			if n, err := p.NumThreadsWithContext(ctx); err == nil {
				rec.Set(FieldProcessNumThreads, n)
			}
		}, fields...),
	)
}
