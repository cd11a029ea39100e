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
	"strings"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/capture/file"
	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/shirou/gopsutil/v3/host"
)

// Mixin names.
const (
	MixinHostInfo      = "host-info"
	MixinOSRelease     = "os-release"
	MixinResources     = "host-resources"
	MixinProcessUsage  = "process-usage"
	FieldHostname      = "hostname"
	FieldOS            = "operating_system"
	FieldOSRelease     = "os_release"
	FieldCoresLogical  = "cpu_cores_logical"
	FieldCoresPhysical = "cpu_cores_physical"
	FieldRAMTotal      = "ram_total"
)

var (
	hostInfo = host.InfoWithContext
	hostname = os.Hostname

	releasePathPrimary  = "/etc/os-release"
	releasePathFallback = "/usr/lib/os-release"
)

// HostInfo records the hostname and an operating system description such
// as "linux ubuntu 24.04 (kernel 6.8.0-1024-aws, x86_64)".
func HostInfo() capture.Mixin {
	return capture.NewMixin(MixinHostInfo,
		capture.Func(MixinHostInfo, capture.PreCall, func(ctx context.Context, rec *record.Record, _ *capture.Invocation) {
			if name, err := hostname(); err == nil {
				rec.Set(FieldHostname, name)
			} else {
				slog.Debug("hostname unavailable", "error", err)
				rec.Set(FieldHostname, nil)
			}

			ctx, cancel := context.WithTimeout(ctx, defaults.CaptureTimeout)
			defer cancel()

			info, err := hostInfo(ctx)
			if err != nil || info == nil {
				slog.Debug("host info unavailable", "error", err)
				rec.Set(FieldOS, nil)
				return
			}
			rec.Set(FieldOS, describeOS(info))
		}, FieldHostname, FieldOS),
	)
}

func describeOS(info *host.InfoStat) string {
	parts := []string{info.OS}
	if info.Platform != "" {
		parts = append(parts, info.Platform)
	}
	if info.PlatformVersion != "" {
		parts = append(parts, info.PlatformVersion)
	}
	desc := strings.Join(parts, " ")

	var extra []string
	if info.KernelVersion != "" {
		extra = append(extra, "kernel "+info.KernelVersion)
	}
	if info.KernelArch != "" {
		extra = append(extra, info.KernelArch)
	}
	if len(extra) > 0 {
		desc += " (" + strings.Join(extra, ", ") + ")"
	}
	return desc
}

// OSRelease records the os-release key/value pairs, reading
// /usr/lib/os-release when /etc/os-release does not exist.
func OSRelease() capture.Mixin {
	parser := file.NewParser(
		file.WithTrimChars(`"'`),
		file.WithSkipEmptyValues(true),
	)

	return capture.NewMixin(MixinOSRelease,
		capture.Func(MixinOSRelease, capture.PreCall, func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			path := releasePathPrimary
			if _, err := os.Stat(path); os.IsNotExist(err) {
				path = releasePathFallback
			}

			release, err := parser.ReadMap(path)
			if err != nil {
				slog.Debug("os release unavailable", "path", path, "error", err)
				rec.Set(FieldOSRelease, nil)
				return
			}
			rec.Set(FieldOSRelease, release)
		}, FieldOSRelease),
	)
}
