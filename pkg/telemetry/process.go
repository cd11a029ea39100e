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

package telemetry

import (
	"context"
	"os"

	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// Keys written by the process sample functions.
const (
	KeyRSS        = "rss"
	KeyVMS        = "vms"
	KeyCPUPercent = "cpu_percent"
	KeyNumThreads = "num_threads"
	KeyProcesses  = "processes"
)

// Self returns a handle to the current process.
func Self() (*process.Process, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to open current process", err)
	}
	return p, nil
}

var errNoHandle = errors.New(errors.ErrCodeTelemetrySample, "no process handle")

// ProcessSampler samples memory, CPU and thread count of the handle process.
func ProcessSampler() SampleFunc {
	return func(ctx context.Context, p *process.Process) (map[string]any, error) {
		if p == nil {
			return nil, errNoHandle
		}
		return sampleProcess(ctx, p)
	}
}

// ProcessTreeSampler samples the handle process and all of its descendants,
// summing memory, CPU and threads. Descendants that exit mid-sample are
// skipped.
func ProcessTreeSampler() SampleFunc {
	return func(ctx context.Context, p *process.Process) (map[string]any, error) {
		if p == nil {
			return nil, errNoHandle
		}

		total, err := sampleProcess(ctx, p)
		if err != nil {
			return nil, err
		}

		procs := 1
		for _, child := range descendants(ctx, p) {
			v, err := sampleProcess(ctx, child)
			if err != nil {
				continue
			}
			procs++
			total[KeyRSS] = total[KeyRSS].(uint64) + v[KeyRSS].(uint64)
			total[KeyVMS] = total[KeyVMS].(uint64) + v[KeyVMS].(uint64)
			total[KeyCPUPercent] = total[KeyCPUPercent].(float64) + v[KeyCPUPercent].(float64)
			total[KeyNumThreads] = total[KeyNumThreads].(int32) + v[KeyNumThreads].(int32)
		}
		total[KeyProcesses] = procs

		return total, nil
	}
}

func sampleProcess(ctx context.Context, p *process.Process) (map[string]any, error) {
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTelemetrySample,
			"failed to read process memory", err, map[string]any{"pid": p.Pid})
	}
	cpu, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTelemetrySample,
			"failed to read process cpu", err, map[string]any{"pid": p.Pid})
	}
	threads, err := p.NumThreadsWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTelemetrySample,
			"failed to read process threads", err, map[string]any{"pid": p.Pid})
	}

	return map[string]any{
		KeyRSS:        mem.RSS,
		KeyVMS:        mem.VMS,
		KeyCPUPercent: cpu,
		KeyNumThreads: threads,
	}, nil
}

func descendants(ctx context.Context, p *process.Process) []*process.Process {
	var out []*process.Process
	queue := []*process.Process{p}
	seen := map[int32]bool{p.Pid: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		// ErrorNoChildren and vanished processes both end this branch.
		children, err := cur.ChildrenWithContext(ctx)
		if err != nil {
			continue
		}
		for _, c := range children {
			if seen[c.Pid] {
				continue
			}
			seen[c.Pid] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}

	return out
}
