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

package image

import (
	"testing"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const digest = "sha256:9b0d3f1f1e3c2d4a5b6c7d8e9f00112233445566778899aabbccddeeff001122"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Reference
	}{
		{
			name: "registry with tag",
			in:   "nvcr.io/nvidia/pytorch:25.01-py3",
			want: Reference{Name: "nvcr.io/nvidia/pytorch", Domain: "nvcr.io", Path: "nvidia/pytorch", Tag: "25.01-py3"},
		},
		{
			name: "docker hub short name",
			in:   "ubuntu",
			want: Reference{Name: "docker.io/library/ubuntu", Domain: "docker.io", Path: "library/ubuntu", Tag: "latest"},
		},
		{
			name: "digest only",
			in:   "ghcr.io/nvidia/app@" + digest,
			want: Reference{Name: "ghcr.io/nvidia/app", Domain: "ghcr.io", Path: "nvidia/app", Digest: digest},
		},
		{
			name: "tag and digest",
			in:   "ghcr.io/nvidia/app:v1@" + digest,
			want: Reference{Name: "ghcr.io/nvidia/app", Domain: "ghcr.io", Path: "nvidia/app", Tag: "v1", Digest: digest},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("UPPER/Case:tag")
	assert.Error(t, err)
}

func captureImage(t *testing.T) any {
	t.Helper()
	rec := record.New()
	for _, u := range Mixin().Units {
		u.Capture(t.Context(), rec, capture.NewInvocation("f", nil))
	}
	v, ok := rec.Get(FieldImage)
	require.True(t, ok)
	return v
}

func TestMixin(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv(EnvImage, "nvcr.io/nvidia/pytorch:25.01-py3")
		ref, ok := captureImage(t).(*Reference)
		require.True(t, ok)
		assert.Equal(t, "25.01-py3", ref.Tag)
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv(EnvImage, "")
		assert.Nil(t, captureImage(t))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(EnvImage, "::bad::")
		assert.Nil(t, captureImage(t))
	})
}
