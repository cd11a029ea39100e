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
	"fmt"
	"runtime"

	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/google/uuid"
)

// Mixin names of the built-in units.
const (
	MixinDefaults     = "defaults"
	MixinRunID        = "run-id"
	MixinFunctionCall = "function-call"
	MixinReturnValue  = "return-value"
	MixinOutcome      = "outcome"
	MixinGoVersion    = "go-version"
	MixinEnv          = "env"
	MixinBuildInfo    = "build-info"
	MixinCPUProfile   = "cpu-profile"
)

// Field names written by the built-in units.
const (
	FieldRunID       = "run_id"
	FieldCallID      = "call_id"
	FieldArgs        = "args"
	FieldReturnValue = "return_value"
	FieldError       = "error"
	FieldPanicked    = "panicked"
	FieldGoVersion   = "go_version"
	FieldGoOS        = "go_os"
	FieldGoArch      = "go_arch"
	FieldGOMAXPROCS  = "gomaxprocs"
	FieldEnvPrefix   = "env_"
)

// Defaults returns the base mixin resolved ahead of all others.
func Defaults() Mixin {
	return NewMixin(MixinDefaults,
		Func("function-name", PreCall, func(_ context.Context, rec *record.Record, inv *Invocation) {
			rec.Set(record.FieldFunctionName, inv.FunctionName)
		}, record.FieldFunctionName),
	)
}

// RunID records a run identifier shared by every call made through the same
// mixin value, and a fresh identifier per call.
func RunID() Mixin {
	runID := uuid.NewString()
	return NewMixin(MixinRunID,
		Func("run-id", PreCall, func(_ context.Context, rec *record.Record, _ *Invocation) {
			rec.Set(FieldRunID, runID)
			rec.Set(FieldCallID, uuid.NewString())
		}, FieldRunID, FieldCallID),
	)
}

// FunctionCall records the call arguments.
func FunctionCall() Mixin {
	return NewMixin(MixinFunctionCall,
		Func("args", PreCall, func(_ context.Context, rec *record.Record, inv *Invocation) {
			if inv.Args == nil {
				rec.Set(FieldArgs, []any{})
				return
			}
			rec.Set(FieldArgs, inv.Args)
		}, FieldArgs),
	)
}

// ReturnValue records the result, or nil when the call failed.
func ReturnValue() Mixin {
	return NewMixin(MixinReturnValue,
		Func("return-value", PostCall, func(_ context.Context, rec *record.Record, inv *Invocation) {
			if inv.Failed() {
				rec.Set(FieldReturnValue, nil)
				return
			}
			rec.Set(FieldReturnValue, inv.Result)
		}, FieldReturnValue),
	)
}

// ErrorInfo is the serialized form of a failed call.
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Outcome records how the call ended: error is nil or an ErrorInfo, and
// panicked reports whether the function panicked.
func Outcome() Mixin {
	return NewMixin(MixinOutcome,
		Func("outcome", PostCall, func(_ context.Context, rec *record.Record, inv *Invocation) {
			switch {
			case inv.Panicked:
				rec.Set(FieldError, ErrorInfo{
					Type:    fmt.Sprintf("%T", inv.Panic),
					Message: fmt.Sprint(inv.Panic),
				})
			case inv.Err != nil:
				rec.Set(FieldError, ErrorInfo{
					Type:    fmt.Sprintf("%T", inv.Err),
					Message: inv.Err.Error(),
				})
			default:
				rec.Set(FieldError, nil)
			}
			rec.Set(FieldPanicked, inv.Panicked)
		}, FieldError, FieldPanicked),
	)
}

// GoVersion records the Go runtime version and platform.
func GoVersion() Mixin {
	return NewMixin(MixinGoVersion,
		Func("go-version", PreCall, func(_ context.Context, rec *record.Record, _ *Invocation) {
			rec.Set(FieldGoVersion, runtime.Version())
			rec.Set(FieldGoOS, runtime.GOOS)
			rec.Set(FieldGoArch, runtime.GOARCH)
			rec.Set(FieldGOMAXPROCS, runtime.GOMAXPROCS(0))
		}, FieldGoVersion, FieldGoOS, FieldGoArch, FieldGOMAXPROCS),
	)
}
