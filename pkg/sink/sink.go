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
	"bytes"
	"context"
	"io"
)

// Sink appends one serialized record per call.
type Sink interface {
	// Append stores line followed by a newline. line must not contain a
	// newline except optionally at the end.
	Append(ctx context.Context, line []byte) error
}

// Close closes s if it holds resources.
func Close(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// terminate returns line with exactly one trailing newline.
func terminate(line []byte) []byte {
	trimmed := bytes.TrimRight(line, "\r\n")
	out := make([]byte, len(trimmed)+1)
	copy(out, trimmed)
	out[len(trimmed)] = '\n'
	return out
}

// bare returns line without trailing newlines.
func bare(line []byte) []byte {
	return bytes.TrimRight(line, "\r\n")
}
