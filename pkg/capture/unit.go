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

	"github.com/NVIDIA/microbench/pkg/record"
)

// Phase is the point of an invocation at which a unit runs.
type Phase int

const (
	// PreCall units run before the wrapped function, ahead of start_time.
	PreCall Phase = iota
	// PostCall units run after the wrapped function, after finish_time.
	PostCall
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PreCall:
		return "pre"
	case PostCall:
		return "post"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Unit contributes fields to an invocation record.
type Unit interface {
	// Name identifies the unit; registering a second unit with the same
	// name replaces the first.
	Name() string
	// Phase reports when the unit runs.
	Phase() Phase
	// Capture writes the unit's fields. It must not retain rec or inv.
	Capture(ctx context.Context, rec *record.Record, inv *Invocation)
}

// FieldDeclarer is implemented by units that know the fields they write.
type FieldDeclarer interface {
	Fields() []string
}

// CaptureFunc is the signature of a capture function.
type CaptureFunc func(ctx context.Context, rec *record.Record, inv *Invocation)

type funcUnit struct {
	name   string
	phase  Phase
	fields []string
	fn     CaptureFunc
}

// Func adapts a function into a Unit. Optional field names are reported
// through FieldDeclarer.
func Func(name string, phase Phase, fn CaptureFunc, fields ...string) Unit {
	return &funcUnit{name: name, phase: phase, fn: fn, fields: fields}
}

func (u *funcUnit) Name() string { return u.name }

func (u *funcUnit) Phase() Phase { return u.phase }

func (u *funcUnit) Fields() []string { return u.fields }

func (u *funcUnit) Capture(ctx context.Context, rec *record.Record, inv *Invocation) {
	u.fn(ctx, rec, inv)
}
