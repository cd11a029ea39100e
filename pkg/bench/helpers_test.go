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

package bench

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/stretchr/testify/require"
)

// captureHandler records log entries for assertions.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func newCaptureLogger() (*slog.Logger, *captureHandler) {
	h := &captureHandler{}
	return slog.New(h), h
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

// count returns the number of entries logged at level with the given code.
func (h *captureHandler) count(level slog.Level, code errors.ErrorCode) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, r := range h.records {
		if r.Level != level {
			continue
		}
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "code" && a.Value.String() == string(code) {
				n++
				return false
			}
			return true
		})
	}
	return n
}

// attr returns the first value of key logged with code.
func (h *captureHandler) attr(code errors.ErrorCode, key string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range h.records {
		var matched bool
		var value string
		r.Attrs(func(a slog.Attr) bool {
			switch a.Key {
			case "code":
				matched = a.Value.String() == string(code)
			case key:
				value = a.Value.String()
			}
			return true
		})
		if matched {
			return value
		}
	}
	return ""
}

func decodeLines(t *testing.T, lines []string) []map[string]any {
	t.Helper()
	out := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		out = append(out, m)
	}
	return out
}

type failingSink struct {
	err error
}

func (s *failingSink) Append(context.Context, []byte) error { return s.err }
