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
	stderrors "errors"

	"golang.org/x/sync/errgroup"
)

// MultiSink appends every line to all of its sinks concurrently.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink fans out to sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: append([]Sink(nil), sinks...)}
}

// Append writes to every sink and joins their errors. A failing sink does
// not prevent the others from receiving the line.
func (m *MultiSink) Append(ctx context.Context, line []byte) error {
	errs := make([]error, len(m.sinks))

	var g errgroup.Group
	for i, s := range m.sinks {
		g.Go(func() error {
			errs[i] = s.Append(ctx, line)
			return nil
		})
	}
	_ = g.Wait()

	return stderrors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	errs := make([]error, 0, len(m.sinks))
	for _, s := range m.sinks {
		errs = append(errs, Close(s))
	}
	return stderrors.Join(errs...)
}
