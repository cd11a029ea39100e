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

// Package catalog assembles the named capture mixins shipped with
// microbench so they can be selected from configuration or the command
// line.
package catalog

import (
	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/capture/gpu"
	"github.com/NVIDIA/microbench/pkg/capture/host"
	"github.com/NVIDIA/microbench/pkg/capture/image"
	"github.com/NVIDIA/microbench/pkg/capture/k8s"
	"github.com/NVIDIA/microbench/pkg/capture/systemd"
)

// Default returns a catalog holding every shipped mixin.
func Default() *capture.Catalog {
	c := capture.NewCatalog(capture.BuiltinEntries()...)
	for _, entries := range [][]capture.Entry{
		host.Entries(),
		gpu.Entries(),
		systemd.Entries(),
		k8s.Entries(),
		image.Entries(),
	} {
		for _, e := range entries {
			c.Register(e)
		}
	}
	return c
}

// DefaultMixins names the mixins used when none are configured.
var DefaultMixins = []string{
	capture.MixinRunID,
	capture.MixinFunctionCall,
	capture.MixinOutcome,
	host.MixinHostInfo,
}
