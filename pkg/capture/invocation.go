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

// Invocation is the call context handed to capture units.
//
// FunctionName and Args are set before pre-call units run. Result, Err,
// Panicked and Panic are set before post-call units run.
type Invocation struct {
	FunctionName string
	Args         []any

	Result   any
	Err      error
	Panicked bool
	Panic    any

	scratch map[string]any
}

// NewInvocation creates the context for one call.
func NewInvocation(name string, args []any) *Invocation {
	return &Invocation{FunctionName: name, Args: args}
}

// Failed reports whether the call returned an error or panicked.
func (inv *Invocation) Failed() bool {
	return inv.Err != nil || inv.Panicked
}

// Stash stores unit-private state for later phases of the same call.
func (inv *Invocation) Stash(key string, v any) {
	if inv.scratch == nil {
		inv.scratch = make(map[string]any)
	}
	inv.scratch[key] = v
}

// Unstash removes and returns state stored with Stash.
func (inv *Invocation) Unstash(key string) (any, bool) {
	v, ok := inv.scratch[key]
	if ok {
		delete(inv.scratch, key)
	}
	return v, ok
}
