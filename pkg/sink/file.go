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
	"os"
	"path/filepath"
	"sync"

	"github.com/NVIDIA/microbench/pkg/errors"
)

const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// FileOption configures a FileSink.
type FileOption func(*FileSink)

// WithSync controls whether every append is followed by fsync. Default true.
func WithSync(sync bool) FileOption {
	return func(s *FileSink) {
		s.sync = sync
	}
}

// WithFileMode sets the permissions used when the file is created.
func WithFileMode(mode os.FileMode) FileOption {
	return func(s *FileSink) {
		s.mode = mode
	}
}

// FileSink appends lines to a local file. Each line is written with a single
// write call on a file opened with O_APPEND, so lines from concurrent
// processes sharing the file are not interleaved on local filesystems.
type FileSink struct {
	path string
	sync bool
	mode os.FileMode

	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (or creates) the file at path for appending.
func NewFileSink(path string, opts ...FileOption) (*FileSink, error) {
	s := &FileSink{
		path: path,
		sync: true,
		mode: defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeSinkWrite,
				"failed to create sink directory", err, map[string]any{"path": dir})
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.mode)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeSinkWrite,
			"failed to open sink file", err, map[string]any{"path": path})
	}
	s.file = f

	return s, nil
}

// Path returns the file path.
func (s *FileSink) Path() string {
	return s.path
}

// Append writes line and a newline in one write call.
func (s *FileSink) Append(ctx context.Context, line []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeSinkWrite, "append canceled", err)
	}

	data := terminate(line)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.NewWithContext(errors.ErrCodeSinkWrite,
			"sink file is closed", map[string]any{"path": s.path})
	}

	if _, err := s.file.Write(data); err != nil {
		return errors.WrapWithContext(errors.ErrCodeSinkWrite,
			"failed to write record", err, map[string]any{"path": s.path})
	}

	if s.sync {
		if err := s.file.Sync(); err != nil {
			return errors.WrapWithContext(errors.ErrCodeSinkWrite,
				"failed to sync record", err, map[string]any{"path": s.path})
		}
	}

	return nil
}

// Close closes the file. It is safe to call more than once.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
