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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, m capture.Mixin) *record.Record {
	t.Helper()
	rec := record.New()
	inv := capture.NewInvocation("f", nil)
	for _, u := range m.Units {
		rec.SetWriter(u.Name())
		u.Capture(t.Context(), rec, inv)
	}
	return rec
}

func field(t *testing.T, rec *record.Record, key string) any {
	t.Helper()
	v, ok := rec.Get(key)
	require.True(t, ok, "field %q not set", key)
	return v
}

func TestHostInfo(t *testing.T) {
	origInfo, origName := hostInfo, hostname
	t.Cleanup(func() { hostInfo, hostname = origInfo, origName })

	hostname = func() (string, error) { return "bench-01", nil }
	hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			OS:              "linux",
			Platform:        "ubuntu",
			PlatformVersion: "24.04",
			KernelVersion:   "6.8.0-1024-aws",
			KernelArch:      "x86_64",
		}, nil
	}

	rec := run(t, HostInfo())
	assert.Equal(t, "bench-01", field(t, rec, FieldHostname))
	assert.Equal(t, "linux ubuntu 24.04 (kernel 6.8.0-1024-aws, x86_64)", field(t, rec, FieldOS))
}

func TestHostInfo_Unavailable(t *testing.T) {
	origInfo, origName := hostInfo, hostname
	t.Cleanup(func() { hostInfo, hostname = origInfo, origName })

	hostname = func() (string, error) { return "", errors.New("no hostname") }
	hostInfo = func(context.Context) (*host.InfoStat, error) { return nil, errors.New("no host info") }

	rec := run(t, HostInfo())
	assert.Nil(t, field(t, rec, FieldHostname))
	assert.Nil(t, field(t, rec, FieldOS))
}

func TestDescribeOS(t *testing.T) {
	assert.Equal(t, "darwin", describeOS(&host.InfoStat{OS: "darwin"}))
	assert.Equal(t, "linux (x86_64)", describeOS(&host.InfoStat{OS: "linux", KernelArch: "x86_64"}))
}

func TestOSRelease(t *testing.T) {
	origPrimary, origFallback := releasePathPrimary, releasePathFallback
	t.Cleanup(func() { releasePathPrimary, releasePathFallback = origPrimary, origFallback })

	dir := t.TempDir()
	releasePathPrimary = filepath.Join(dir, "missing")
	releasePathFallback = filepath.Join(dir, "os-release")
	require.NoError(t, os.WriteFile(releasePathFallback, []byte("ID=ubuntu\nVERSION_ID=\"24.04\"\n"), 0o600))

	rec := run(t, OSRelease())
	assert.Equal(t, map[string]string{"ID": "ubuntu", "VERSION_ID": "24.04"}, field(t, rec, FieldOSRelease))

	releasePathFallback = filepath.Join(dir, "also-missing")
	rec = run(t, OSRelease())
	assert.Nil(t, field(t, rec, FieldOSRelease))
}

func TestResources(t *testing.T) {
	origCounts, origMem := cpuCounts, virtualMemory
	t.Cleanup(func() { cpuCounts, virtualMemory = origCounts, origMem })

	cpuCounts = func(_ context.Context, logical bool) (int, error) {
		if logical {
			return 16, nil
		}
		return 0, errors.New("unknown")
	}
	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 64 << 30}, nil
	}

	rec := run(t, Resources())
	assert.Equal(t, 16, field(t, rec, FieldCoresLogical))
	assert.Nil(t, field(t, rec, FieldCoresPhysical))
	assert.Equal(t, uint64(64<<30), field(t, rec, FieldRAMTotal))
}

func TestProcessUsage(t *testing.T) {
	rec := run(t, ProcessUsage())

	assert.Equal(t, []string{FieldProcessCPUUser, FieldProcessCPUSystem, FieldProcessRSS, FieldProcessNumThreads}, rec.Keys())
	assert.NotNil(t, field(t, rec, FieldProcessRSS))
	assert.NotNil(t, field(t, rec, FieldProcessNumThreads))
}

func TestEntries(t *testing.T) {
	for _, e := range Entries() {
		m := e.New(capture.Options{})
		assert.Equal(t, e.Name, m.Name)
		assert.NotEmpty(t, m.Units)
	}
}
