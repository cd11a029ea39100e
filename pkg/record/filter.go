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

import "strings"

// FilterOut returns a copy of fields without the keys matching any pattern.
// Patterns support '*' wildcards anywhere, e.g. "*_time" or "env_*".
func FilterOut(fields map[string]any, patterns []string) map[string]any {
	result := make(map[string]any, len(fields))
	for key, value := range fields {
		if !MatchAny(key, patterns) {
			result[key] = value
		}
	}
	return result
}

// FilterIn returns a copy of fields holding only the keys matching a pattern.
func FilterIn(fields map[string]any, patterns []string) map[string]any {
	result := make(map[string]any)
	for key, value := range fields {
		if MatchAny(key, patterns) {
			result[key] = value
		}
	}
	return result
}

// MatchAny reports whether key matches at least one of the patterns.
func MatchAny(key string, patterns []string) bool {
	for _, p := range patterns {
		if Match(key, p) {
			return true
		}
	}
	return false
}

// Match reports whether key matches pattern, where '*' matches any run of
// characters (including none) and everything else matches literally.
func Match(key, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	segments := strings.Split(pattern, "*")
	first, last := segments[0], segments[len(segments)-1]

	if !strings.HasPrefix(key, first) {
		return false
	}
	rest := key[len(first):]

	// Anchor the final segment before scanning the middle so that the
	// middle segments cannot consume it.
	if len(rest) < len(last) || !strings.HasSuffix(rest, last) {
		return false
	}
	rest = rest[:len(rest)-len(last)]

	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := strings.Index(rest, seg)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(seg):]
	}

	return true
}
