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
	"context"
	"os"
	"runtime/debug"

	"github.com/NVIDIA/microbench/pkg/record"
)

// Fields written by the build-info unit.
const (
	FieldMainModule      = "main_module"
	FieldPackageVersions = "package_versions"
)

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// Env records each named environment variable as env_<NAME>, nil when unset.
func Env(names ...string) Mixin {
	fields := make([]string, len(names))
	for i, n := range names {
		fields[i] = FieldEnvPrefix + n
	}
	vars := append([]string(nil), names...)

	return NewMixin(MixinEnv,
		Func("env", PreCall, func(_ context.Context, rec *record.Record, _ *Invocation) {
			for _, n := range vars {
				if v, ok := lookupEnv(n); ok {
					rec.Set(FieldEnvPrefix+n, v)
					continue
				}
				rec.Set(FieldEnvPrefix+n, nil)
			}
		}, fields...),
	)
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// BuildInfo records the main module and the versions of its dependencies.
// With patterns, only module paths matching one of them (with '*'
// wildcards) are included. Without build information both fields are nil.
func BuildInfo(patterns ...string) Mixin {
	pats := append([]string(nil), patterns...)

	return NewMixin(MixinBuildInfo,
		Func("build-info", PreCall, func(_ context.Context, rec *record.Record, _ *Invocation) {
			info, ok := readBuildInfo()
			if !ok || info == nil {
				rec.Set(FieldMainModule, nil)
				rec.Set(FieldPackageVersions, nil)
				return
			}

			rec.Set(FieldMainModule, map[string]any{
				"path":    info.Main.Path,
				"version": info.Main.Version,
			})

			versions := make(map[string]any, len(info.Deps))
			for _, dep := range info.Deps {
				if len(pats) > 0 && !record.MatchAny(dep.Path, pats) {
					continue
				}
				mod := dep
				if dep.Replace != nil {
					mod = dep.Replace
				}
				versions[dep.Path] = mod.Version
			}
			rec.Set(FieldPackageVersions, versions)
		}, FieldMainModule, FieldPackageVersions),
	)
}
