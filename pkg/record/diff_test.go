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
	"strings"
	"testing"

	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	a := map[string]any{
		"function_name": "f",
		"hostname":      "a",
		"removed":       true,
		"nested":        map[string]any{"x": 1.0},
	}
	b := map[string]any{
		"function_name": "f",
		"hostname":      "b",
		"added":         "new",
		"nested":        map[string]any{"x": 1.0},
	}

	diffs := Compare(a, b)
	require.Len(t, diffs, 3)
	assert.Equal(t, Difference{Field: "added", Kind: Added, B: "new"}, diffs[0])
	assert.Equal(t, Difference{Field: "hostname", Kind: Changed, A: "a", B: "b"}, diffs[1])
	assert.Equal(t, Difference{Field: "removed", Kind: Removed, A: true}, diffs[2])
}

func TestCompare_Identical(t *testing.T) {
	a := map[string]any{"x": []any{1.0, "two"}}
	assert.Empty(t, Compare(a, a))
	assert.Empty(t, Compare(nil, nil))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		key     string
		pattern string
		want    bool
	}{
		{"root", "root", true},
		{"root_user", "root", false},
		{"root_user", "root*", true},
		{"user_root", "*root", true},
		{"some_root_value", "*root*", true},
		{"anything", "*", true},
		{"", "*", true},
		{"a", "a*a", false},
		{"aa", "a*a", true},
		{"env_HOME", "env_*", true},
		{"start_time", "*_time", true},
		{"start_time_x", "*_time", false},
		{"abcde", "a*c*e", true},
		{"abcde", "a*d*c", false},
		{"a_b", "*_*", true},
		{"ab", "*_*", false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.key, tt.pattern))
		})
	}
}

func TestFilterOut(t *testing.T) {
	fields := map[string]any{
		"start_time":    "t0",
		"finish_time":   "t1",
		"function_name": "f",
		"env_HOME":      "/root",
	}

	got := FilterOut(fields, []string{"*_time", "env_*"})
	assert.Equal(t, map[string]any{"function_name": "f"}, got)

	assert.Equal(t, fields, FilterOut(fields, nil))
}

func TestFilterIn(t *testing.T) {
	fields := map[string]any{
		"start_time":    "t0",
		"finish_time":   "t1",
		"function_name": "f",
	}

	got := FilterIn(fields, []string{"*_time"})
	assert.Equal(t, map[string]any{"start_time": "t0", "finish_time": "t1"}, got)
	assert.Empty(t, FilterIn(fields, nil))
}

func TestReadLines(t *testing.T) {
	input := `{"function_name":"a","n":1}

{"function_name":"b","n":2}
`
	recs, err := ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0]["function_name"])
	assert.Equal(t, 2.0, recs[1]["n"])
}

func TestReadLines_Invalid(t *testing.T) {
	_, err := ReadLines(strings.NewReader("{\"ok\":true}\nnot-json\n"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "failed to decode record")
}
