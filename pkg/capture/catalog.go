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

package capture

import (
	"sort"

	"github.com/NVIDIA/microbench/pkg/errors"
)

// Options parameterizes mixins built from a Catalog.
type Options struct {
	// Env lists environment variables for the env mixin.
	Env []string
	// Modules filters build-info package versions by module path pattern.
	Modules []string
	// SystemdUnits lists the units queried by the systemd mixin.
	SystemdUnits []string
	// GPUAttributes lists nvidia-smi query attributes.
	GPUAttributes []string
	// Kubeconfig points at a kubeconfig file for the kubernetes-node mixin.
	Kubeconfig string
}

// Entry describes a mixin that can be selected by name.
type Entry struct {
	Name        string
	Description string
	Fields      []string
	New         func(Options) Mixin
}

// Catalog maps mixin names to constructors.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog creates a catalog from entries; later entries replace earlier
// ones with the same name.
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.Register(e)
	}
	return c
}

// Register adds or replaces an entry.
func (c *Catalog) Register(e Entry) {
	c.entries[e.Name] = e
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Entries returns all entries sorted by name.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Build constructs the named mixins in the given order.
func (c *Catalog) Build(names []string, opts Options) ([]Mixin, error) {
	mixins := make([]Mixin, 0, len(names))
	for _, name := range names {
		e, ok := c.entries[name]
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound,
				"unknown capture mixin", map[string]any{"mixin": name})
		}
		mixins = append(mixins, e.New(opts))
	}
	return mixins, nil
}

// BuiltinEntries returns catalog entries for the mixins in this package.
func BuiltinEntries() []Entry {
	return []Entry{
		{
			Name:        MixinRunID,
			Description: "run and call identifiers",
			Fields:      []string{FieldRunID, FieldCallID},
			New:         func(Options) Mixin { return RunID() },
		},
		{
			Name:        MixinFunctionCall,
			Description: "call arguments",
			Fields:      []string{FieldArgs},
			New:         func(Options) Mixin { return FunctionCall() },
		},
		{
			Name:        MixinReturnValue,
			Description: "return value, null on failure",
			Fields:      []string{FieldReturnValue},
			New:         func(Options) Mixin { return ReturnValue() },
		},
		{
			Name:        MixinOutcome,
			Description: "error and panic outcome",
			Fields:      []string{FieldError, FieldPanicked},
			New:         func(Options) Mixin { return Outcome() },
		},
		{
			Name:        MixinGoVersion,
			Description: "Go runtime version and platform",
			Fields:      []string{FieldGoVersion, FieldGoOS, FieldGoArch, FieldGOMAXPROCS},
			New:         func(Options) Mixin { return GoVersion() },
		},
		{
			Name:        MixinEnv,
			Description: "selected environment variables",
			Fields:      []string{FieldEnvPrefix + "<NAME>"},
			New:         func(o Options) Mixin { return Env(o.Env...) },
		},
		{
			Name:        MixinBuildInfo,
			Description: "main module and dependency versions",
			Fields:      []string{FieldMainModule, FieldPackageVersions},
			New:         func(o Options) Mixin { return BuildInfo(o.Modules...) },
		},
		{
			Name:        MixinCPUProfile,
			Description: "CPU profile of the call (base64 pprof)",
			Fields:      []string{FieldCPUProfile},
			New:         func(Options) Mixin { return CPUProfile() },
		},
	}
}
