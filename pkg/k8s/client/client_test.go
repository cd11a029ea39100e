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

package client

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKubeconfig = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
  name: test
contexts:
- context:
    cluster: test
    user: test
  name: test
current-context: test
users:
- name: test
  user:
    token: abc
`

func resetSingleton() {
	clientOnce = sync.Once{}
	cachedClient = nil
	cachedConfig = nil
	clientErr = nil
}

func TestResolveKubeconfig(t *testing.T) {
	t.Setenv("KUBECONFIG", "/from/env")
	assert.Equal(t, "/explicit", resolveKubeconfig("/explicit"))
	assert.Equal(t, "/from/env", resolveKubeconfig(""))

	t.Setenv("KUBECONFIG", "")
	t.Setenv("HOME", t.TempDir())
	assert.Equal(t, "", resolveKubeconfig(""))
}

func TestBuildKubeClient_InvalidPath(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		env  string
	}{
		{name: "explicit invalid path", arg: "/nonexistent/path/to/kubeconfig"},
		{name: "env var with invalid path", env: "/nonexistent/env/kubeconfig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.env)

			_, _, err := BuildKubeClient(tt.arg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to build kube config")
		})
	}
}

func TestBuildKubeClient_InvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte("invalid yaml content"), 0o600))

	c, _, err := BuildKubeClient(path)
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestBuildKubeClient_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(validKubeconfig), 0o600))

	c, config, err := BuildKubeClient(path)
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestGetKubeClient_Singleton(t *testing.T) {
	resetSingleton()
	t.Cleanup(resetSingleton)

	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(validKubeconfig), 0o600))
	t.Setenv("KUBECONFIG", path)

	c1, cfg1, err1 := GetKubeClient()
	c2, cfg2, err2 := GetKubeClient()

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Same(t, cfg1, cfg2)
	assert.Equal(t, c1, c2)
}

func TestGetKubeClient_CachesError(t *testing.T) {
	resetSingleton()
	t.Cleanup(resetSingleton)
	t.Setenv("KUBECONFIG", "/nonexistent/kubeconfig")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = GetKubeClient()
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.Same(t, errs[0], err)
	}
}
