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
	"context"
	"log/slog"

	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/k8s/client"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"
)

// ConfigMapDataKey is the ConfigMap data key holding appended records.
const ConfigMapDataKey = "records.jsonl"

// ConfigMapSink appends lines to a data key of a Kubernetes ConfigMap,
// creating the ConfigMap on first use. Updates use optimistic concurrency
// and are retried on conflict, so concurrent writers do not lose lines.
// ConfigMaps are limited to 1 MiB; appends past that fail.
type ConfigMapSink struct {
	client    client.Interface
	namespace string
	name      string
}

// NewConfigMapSink writes to namespace/name using c.
func NewConfigMapSink(c client.Interface, namespace, name string) *ConfigMapSink {
	return &ConfigMapSink{client: c, namespace: namespace, name: name}
}

// Append adds line to the ConfigMap.
func (s *ConfigMapSink) Append(ctx context.Context, line []byte) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.SinkRemoteTimeout)
	defer cancel()

	data := string(terminate(line))
	cms := s.client.CoreV1().ConfigMaps(s.namespace)

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		cm, err := cms.Get(ctx, s.name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			slog.Debug("creating record configmap", "namespace", s.namespace, "name", s.name)
			_, err = cms.Create(ctx, &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      s.name,
					Namespace: s.namespace,
					Labels: map[string]string{
						"app.kubernetes.io/name":      "microbench",
						"app.kubernetes.io/component": "records",
					},
				},
				Data: map[string]string{ConfigMapDataKey: data},
			}, metav1.CreateOptions{})
			if apierrors.IsAlreadyExists(err) {
				return apierrors.NewConflict(corev1.Resource("configmaps"), s.name, err)
			}
			return err
		}
		if err != nil {
			return err
		}

		if cm.Data == nil {
			cm.Data = make(map[string]string)
		}
		cm.Data[ConfigMapDataKey] += data
		_, err = cms.Update(ctx, cm, metav1.UpdateOptions{})
		return err
	})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeSinkWrite, "failed to append record to configmap", err,
			map[string]any{"namespace": s.namespace, "name": s.name})
	}

	return nil
}
