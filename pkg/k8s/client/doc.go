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

// Package client provides a shared Kubernetes client.
//
// GetKubeClient initializes the client once and returns the cached result,
// error included, on every later call:
//
//	clientset, config, err := client.GetKubeClient()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//
// BuildKubeClient bypasses the cache for an explicit kubeconfig path.
//
// # Configuration Discovery
//
// With no explicit path the client looks, in order, at:
//
//  1. the KUBECONFIG environment variable
//  2. ~/.kube/config, if it exists
//  3. the in-cluster service account
//
// # Testing
//
// Interface is an alias of kubernetes.Interface, so code under test can take
// a fake clientset:
//
//	clientset := fake.NewSimpleClientset(node)
package client
