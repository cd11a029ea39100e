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

// Package node looks up the Kubernetes node the current process runs on.
package node

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/NVIDIA/microbench/pkg/k8s/client"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Environment variables consulted for the node name, in order.
const (
	EnvNodeName           = "NODE_NAME"
	EnvKubernetesNodeName = "KUBERNETES_NODE_NAME"
	EnvHostname           = "HOSTNAME"
)

const (
	NodeRoleLabelPrefix = "node-role.kubernetes.io/"
	NodeRoleLabel       = "nodeRole"
	NodeRoleUndefined   = "undefined"
)

// Info summarizes a node.
type Info struct {
	Name             string            `json:"name"`
	Role             string            `json:"role"`
	Provider         string            `json:"provider,omitempty"`
	ProviderID       string            `json:"provider_id,omitempty"`
	KubeletVersion   string            `json:"kubelet_version,omitempty"`
	KernelVersion    string            `json:"kernel_version,omitempty"`
	OSImage          string            `json:"os_image,omitempty"`
	ContainerRuntime string            `json:"container_runtime,omitempty"`
	Labels           map[string]string `json:"labels,omitempty"`
}

// Name returns the current node name from NODE_NAME (usually set with the
// Downward API), KUBERNETES_NODE_NAME, or HOSTNAME, whichever is set first.
// HOSTNAME is often the pod name rather than the node name.
func Name() string {
	for _, env := range []string{EnvNodeName, EnvKubernetesNodeName, EnvHostname} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// Get fetches a node by name.
func Get(ctx context.Context, c client.Interface, name string) (*v1.Node, error) {
	if name == "" {
		return nil, fmt.Errorf("node name is required")
	}
	n, err := c.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %q: %w", name, err)
	}
	return n, nil
}

// Current fetches and describes the node named by Name.
func Current(ctx context.Context, c client.Interface) (*Info, error) {
	name := Name()
	if name == "" {
		return nil, fmt.Errorf("could not detect current node (set %s)", EnvNodeName)
	}
	slog.Debug("using current node from environment", "node", name)

	n, err := Get(ctx, c, name)
	if err != nil {
		return nil, err
	}
	return Describe(n), nil
}

// Describe extracts Info from a node object.
func Describe(n *v1.Node) *Info {
	ni := n.Status.NodeInfo
	info := &Info{
		Name:             n.Name,
		Role:             ParseNodeRole(n),
		ProviderID:       n.Spec.ProviderID,
		Provider:         ParseProvider(n.Spec.ProviderID),
		KubeletVersion:   ni.KubeletVersion,
		KernelVersion:    ni.KernelVersion,
		OSImage:          ni.OSImage,
		ContainerRuntime: ni.ContainerRuntimeVersion,
	}
	if len(n.Labels) > 0 {
		info.Labels = make(map[string]string, len(n.Labels))
		for k, v := range n.Labels {
			info.Labels[k] = v
		}
	}
	return info
}

// ParseNodeRole returns the role from a node-role.kubernetes.io/<role>
// label, then from a nodeRole label, or NodeRoleUndefined.
func ParseNodeRole(n *v1.Node) string {
	for k := range n.Labels {
		if role := strings.TrimPrefix(k, NodeRoleLabelPrefix); role != k && role != "" {
			return role
		}
	}

	for k, v := range n.Labels {
		if strings.EqualFold(k, NodeRoleLabel) {
			return v
		}
	}

	return NodeRoleUndefined
}

// ParseProvider maps a providerID prefix to a managed Kubernetes service:
//
//	aws:///us-west-2a/i-0123  -> eks
//	gce://proj/zone/node      -> gke
//	azure:///subscriptions/.. -> aks
//	oci://..                  -> oke
//
// Other prefixes are returned lowercased; an empty providerID yields "".
func ParseProvider(providerID string) string {
	if providerID == "" {
		return ""
	}

	prefix, _, _ := strings.Cut(providerID, "://")
	provider := strings.ToLower(strings.TrimSpace(prefix))

	switch provider {
	case "aws":
		return "eks"
	case "gce":
		return "gke"
	case "azure":
		return "aks"
	case "oci":
		return "oke"
	default:
		return provider
	}
}
