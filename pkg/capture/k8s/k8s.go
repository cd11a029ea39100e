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

package k8s

import (
	"context"
	"log/slog"
	"sync"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/k8s/client"
	"github.com/NVIDIA/microbench/pkg/k8s/node"
	"github.com/NVIDIA/microbench/pkg/record"
)

const (
	// MixinName is the catalog name of the node mixin.
	MixinName = "kubernetes-node"
	// FieldNode holds the node description.
	FieldNode = "k8s_node"
)

// Option configures the node mixin.
type Option func(*nodeUnit)

// WithClient sets the Kubernetes client. Without it a client is built
// from the kubeconfig on first capture.
func WithClient(c client.Interface) Option {
	return func(u *nodeUnit) {
		u.client = c
	}
}

// WithKubeconfig sets the kubeconfig path used to build the client.
func WithKubeconfig(path string) Option {
	return func(u *nodeUnit) {
		u.kubeconfig = path
	}
}

type nodeUnit struct {
	kubeconfig string

	once      sync.Once
	client    client.Interface
	clientErr error
}

// Mixin returns the kubernetes-node capture mixin.
func Mixin(opts ...Option) capture.Mixin {
	u := &nodeUnit{}
	for _, opt := range opts {
		opt(u)
	}
	return capture.NewMixin(MixinName, u)
}

func (u *nodeUnit) Name() string { return MixinName }

func (u *nodeUnit) Phase() capture.Phase { return capture.PreCall }

func (u *nodeUnit) Fields() []string { return []string{FieldNode} }

func (u *nodeUnit) Capture(ctx context.Context, rec *record.Record, _ *capture.Invocation) {
	c, err := u.getClient()
	if err != nil {
		slog.Debug("kubernetes client unavailable", "error", err)
		rec.Set(FieldNode, nil)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.CaptureK8sTimeout)
	defer cancel()

	info, err := node.Current(ctx, c)
	if err != nil {
		slog.Debug("kubernetes node unavailable", "error", err)
		rec.Set(FieldNode, nil)
		return
	}
	rec.Set(FieldNode, info)
}

func (u *nodeUnit) getClient() (client.Interface, error) {
	u.once.Do(func() {
		if u.client != nil {
			return
		}
		if u.kubeconfig == "" {
			u.client, _, u.clientErr = client.GetKubeClient()
			return
		}
		u.client, _, u.clientErr = client.BuildKubeClient(u.kubeconfig)
	})
	return u.client, u.clientErr
}

// Entries returns catalog entries for this package's mixins.
func Entries() []capture.Entry {
	return []capture.Entry{
		{
			Name:        MixinName,
			Description: "Kubernetes node named by NODE_NAME",
			Fields:      []string{FieldNode},
			New: func(o capture.Options) capture.Mixin {
				return Mixin(WithKubeconfig(o.Kubeconfig))
			},
		},
	}
}
