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

package sink

import (
	"context"
	"strings"
	"sync"
)

// BufferSink keeps appended lines in memory.
type BufferSink struct {
	mu    sync.Mutex
	lines []string
}

// NewBufferSink creates an empty buffer.
func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

// Append stores a copy of line.
func (s *BufferSink) Append(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, string(bare(line)))
	return nil
}

// Lines returns the stored lines without newlines.
func (s *BufferSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// String returns the buffer contents as newline-delimited text.
func (s *BufferSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}

// Reset discards all lines.
func (s *BufferSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}
