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

package record

import (
	"reflect"
	"sort"
)

// ChangeKind classifies a field-level difference.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Difference is one field that differs between two records.
type Difference struct {
	Field string     `json:"field" yaml:"field"`
	Kind  ChangeKind `json:"kind" yaml:"kind"`
	A     any        `json:"a,omitempty" yaml:"a,omitempty"`
	B     any        `json:"b,omitempty" yaml:"b,omitempty"`
}

// Compare returns the field-level differences from a to b, sorted by field name.
// Values are compared structurally, so both records should come from the
// same decoder (see ReadLines).
func Compare(a, b map[string]any) []Difference {
	var diffs []Difference

	for field, bv := range b {
		av, ok := a[field]
		switch {
		case !ok:
			diffs = append(diffs, Difference{Field: field, Kind: Added, B: bv})
		case !reflect.DeepEqual(av, bv):
			diffs = append(diffs, Difference{Field: field, Kind: Changed, A: av, B: bv})
		}
	}

	for field, av := range a {
		if _, ok := b[field]; !ok {
			diffs = append(diffs, Difference{Field: field, Kind: Removed, A: av})
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Field < diffs[j].Field
	})

	return diffs
}
