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

// Package k8s groups the Kubernetes integration used by microbench.
//
// # Sub-packages
//
// client: shared Kubernetes client with automatic kubeconfig discovery
//
//	clientset, _, err := client.GetKubeClient()
//	if err != nil {
//	    return err
//	}
//
// node: lookup of the node the process runs on, used by the
// kubernetes-node capture unit
//
//	info, err := node.Current(ctx, clientset)
//
// The ConfigMap sink (cm://namespace/name) and the kubernetes-node capture
// unit both obtain their client from the client package, so a process
// talks to the API server over one connection pool.
package k8s
