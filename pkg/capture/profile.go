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
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"runtime/pprof"

	"github.com/NVIDIA/microbench/pkg/record"
)

// FieldCPUProfile holds the base64-encoded pprof CPU profile of the call.
const FieldCPUProfile = "cpu_profile"

const cpuProfileKey = "cpu-profile.buffer"

// CPUProfile records a CPU profile spanning the call. The Go runtime allows
// one active CPU profile per process, so concurrent calls (or a profile
// started elsewhere) record nil.
func CPUProfile() Mixin {
	start := Func("cpu-profile-start", PreCall, func(_ context.Context, _ *record.Record, inv *Invocation) {
		buf := &bytes.Buffer{}
		if err := pprof.StartCPUProfile(buf); err != nil {
			slog.Debug("cpu profile unavailable", "error", err)
			return
		}
		inv.Stash(cpuProfileKey, buf)
	})

	stop := Func("cpu-profile", PostCall, func(_ context.Context, rec *record.Record, inv *Invocation) {
		v, ok := inv.Unstash(cpuProfileKey)
		if !ok {
			rec.Set(FieldCPUProfile, nil)
			return
		}
		pprof.StopCPUProfile()
		buf, _ := v.(*bytes.Buffer)
		if buf == nil {
			rec.Set(FieldCPUProfile, nil)
			return
		}
		rec.Set(FieldCPUProfile, base64.StdEncoding.EncodeToString(buf.Bytes()))
	}, FieldCPUProfile)

	return NewMixin(MixinCPUProfile, start, stop)
}
