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

package gpu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoGPUs = `GPU-aaaa, NVIDIA H100 80GB HBM3, 81559
GPU-bbbb, NVIDIA H100 80GB HBM3, 81559
`

func run(t *testing.T, m capture.Mixin) *record.Record {
	t.Helper()
	rec := record.New()
	for _, u := range m.Units {
		u.Capture(t.Context(), rec, capture.NewInvocation("f", nil))
	}
	return rec
}

func TestMixin_Query(t *testing.T) {
	var gotArgs []string
	runner := func(_ context.Context, name string, args ...string) ([]byte, error) {
		assert.Equal(t, "nvidia-smi", name)
		gotArgs = args
		return []byte(twoGPUs), nil
	}

	rec := run(t, Mixin(WithRunner(runner)))

	assert.Equal(t, []string{"--query-gpu=uuid,gpu_name,memory.total", "--format=csv,noheader,nounits"}, gotArgs)
	assert.Equal(t, []string{"nvidia_gpu_name", "nvidia_memory.total"}, rec.Keys())

	names, _ := rec.Get("nvidia_gpu_name")
	assert.Equal(t, map[string]string{
		"GPU-aaaa": "NVIDIA H100 80GB HBM3",
		"GPU-bbbb": "NVIDIA H100 80GB HBM3",
	}, names)
	mem, _ := rec.Get("nvidia_memory.total")
	assert.Equal(t, "81559", mem.(map[string]string)["GPU-bbbb"])
}

func TestMixin_CustomAttributes(t *testing.T) {
	runner := func(_ context.Context, _ string, args ...string) ([]byte, error) {
		assert.Equal(t, "--query-gpu=uuid,power.draw", args[0])
		return []byte("GPU-aaaa, 312.45\n"), nil
	}

	m := Mixin(WithRunner(runner), WithAttributes(" power.draw ", "uuid", ""))
	assert.Equal(t, []string{"nvidia_power.draw"}, m.Units[0].(capture.FieldDeclarer).Fields())

	rec := run(t, m)
	v, _ := rec.Get("nvidia_power.draw")
	assert.Equal(t, map[string]string{"GPU-aaaa": "312.45"}, v)
}

func TestMixin_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		runner Runner
	}{
		{
			name: "command fails",
			runner: func(context.Context, string, ...string) ([]byte, error) {
				return nil, errors.New("nvidia-smi not found in PATH")
			},
		},
		{
			name: "malformed output",
			runner: func(context.Context, string, ...string) ([]byte, error) {
				return []byte("GPU-aaaa\n"), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := run(t, Mixin(WithRunner(tt.runner)))
			for _, f := range []string{"nvidia_gpu_name", "nvidia_memory.total"} {
				v, ok := rec.Get(f)
				assert.True(t, ok)
				assert.Nil(t, v)
			}
		})
	}
}

func TestParseCSV_NoGPUs(t *testing.T) {
	values, err := parseCSV(nil, []string{"gpu_name"})
	require.NoError(t, err)
	assert.Empty(t, values["gpu_name"])
}

func TestExecRunner_Missing(t *testing.T) {
	_, err := execRunner(t.Context(), "definitely-not-a-real-binary-"+strings.Repeat("x", 8))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestEntries(t *testing.T) {
	entries := Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	m := e.New(capture.Options{GPUAttributes: []string{"driver_version"}})
	assert.Equal(t, MixinName, m.Name)
	assert.Equal(t, []string{"nvidia_driver_version"}, m.Units[0].(capture.FieldDeclarer).Fields())
}
