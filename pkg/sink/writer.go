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
	"io"
	"os"
	"sync"

	"github.com/NVIDIA/microbench/pkg/errors"
)

// WriterSink writes lines to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w. If w is nil, os.Stdout is used.
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		w = os.Stdout
	}
	return &WriterSink{w: w}
}

// NewStdoutSink writes to standard output.
func NewStdoutSink() *WriterSink {
	return NewWriterSink(os.Stdout)
}

// Append writes line and a newline in one write call.
func (s *WriterSink) Append(ctx context.Context, line []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeSinkWrite, "append canceled", err)
	}

	data := terminate(line)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeSinkWrite, "failed to write record", err)
	}
	return nil
}
