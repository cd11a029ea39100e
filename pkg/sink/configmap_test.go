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

package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestConfigMapSink_CreatesThenAppends(t *testing.T) {
	cs := fake.NewClientset()
	s := NewConfigMapSink(cs, "bench", "records")

	require.NoError(t, s.Append(t.Context(), []byte(`{"n":1}`)))
	require.NoError(t, s.Append(t.Context(), []byte(`{"n":2}`)))

	cm, err := cs.CoreV1().ConfigMaps("bench").Get(t.Context(), "records", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n", cm.Data[ConfigMapDataKey])
	assert.Equal(t, "microbench", cm.Labels["app.kubernetes.io/name"])
}

func TestConfigMapSink_ExistingWithoutData(t *testing.T) {
	cs := fake.NewClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "records", Namespace: "bench"},
	})
	s := NewConfigMapSink(cs, "bench", "records")

	require.NoError(t, s.Append(t.Context(), []byte(`{}`)))

	cm, err := cs.CoreV1().ConfigMaps("bench").Get(t.Context(), "records", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", cm.Data[ConfigMapDataKey])
}
