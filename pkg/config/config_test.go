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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NVIDIA/microbench/pkg/capture/catalog"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `output: /var/log/microbench/results.jsonl
mixins: [run-id, outcome, nvidia-smi]
env: [CUDA_VISIBLE_DEVICES]
gpu-attributes:
  - gpu_name
  - driver_version
static:
  experiment: fp8-sweep
telemetry: true
telemetry-interval: 15s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "microbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "/var/log/microbench/results.jsonl", cfg.Output)
	assert.Equal(t, []string{"run-id", "outcome", "nvidia-smi"}, cfg.Mixins)
	assert.Equal(t, []string{"gpu_name", "driver_version"}, cfg.GPUAttributes)
	assert.Equal(t, map[string]string{"experiment": "fp8-sweep"}, cfg.Static)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, 15*time.Second, cfg.TelemetryInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_DiscoveredInWorkingDir(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(FileName+".yaml", []byte("output: mem://\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mem://", cfg.Output)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MICROBENCH_OUTPUT", "redis://localhost:6379/0")
	t.Setenv("MICROBENCH_TELEMETRY_INTERVAL", "2s")
	t.Setenv("MICROBENCH_MIXINS", "run-id, host-info")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379/0", cfg.Output)
	assert.Equal(t, 2*time.Second, cfg.TelemetryInterval)
	assert.Equal(t, []string{"run-id", "host-info"}, cfg.Mixins)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
}

func TestLoad_Malformed(t *testing.T) {
	isolate(t)

	_, err := Load(writeConfig(t, "mixins: [run-id\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "negative interval", mutate: func(c *Config) { c.TelemetryInterval = -time.Second }, wantErr: true},
		{name: "unknown mixin", mutate: func(c *Config) { c.Mixins = []string{"gpu-temp"} }, wantErr: true},
		{name: "empty static key", mutate: func(c *Config) { c.Static = map[string]string{" ": "x"} }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "warn level", mutate: func(c *Config) { c.LogLevel = "WARN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate(cat)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCaptureOptions(t *testing.T) {
	cfg := Default()
	cfg.SystemdUnits = []string{"kubelet"}
	cfg.Kubeconfig = "/etc/kubeconfig"

	opts := cfg.CaptureOptions()
	assert.Equal(t, []string{"kubelet"}, opts.SystemdUnits)
	assert.Equal(t, "/etc/kubeconfig", opts.Kubeconfig)
}
