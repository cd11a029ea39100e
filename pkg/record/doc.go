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

// Package record defines the per-invocation metadata record.
//
// A Record is an ordered mapping from field name to value, created for one
// call of a wrapped function, populated by capture units and telemetry, and
// serialized once when the call completes. Records are not safe for
// concurrent use: each one is owned by exactly one invocation.
//
// # Writers and Collisions
//
// Every write is attributed to the writer set with SetWriter (the capture
// unit currently running). When a field is written by a writer other than
// the one that wrote it before, the later value wins and a Collision is
// reported, once per field per record:
//
//	rec := record.New(record.WithCollisionHandler(func(c record.Collision) {
//	    slog.Warn("capture field collision", "field", c.Field)
//	}))
//	rec.SetWriter("host-info")
//	rec.Set("hostname", "a")
//	rec.SetWriter("custom")
//	rec.Set("hostname", "b") // collision reported, value is "b"
//
// # Telemetry
//
// Telemetry samples are stored as a []Sample under FieldTelemetry after the
// sampler has stopped.
//
// # Comparing Records
//
// Compare reports field-level differences between two decoded records, and
// FilterOut/FilterIn select fields with wildcard patterns:
//
//	diffs := record.Compare(
//	    record.FilterOut(a, []string{"*_time"}),
//	    record.FilterOut(b, []string{"*_time"}),
//	)
package record
