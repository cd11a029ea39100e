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
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/NVIDIA/microbench/pkg/errors"
)

// maxLineSize bounds a single serialized record; CPU profiles can be large.
const maxLineSize = 64 << 20

// ReadLines decodes a JSON-lines stream of records. Blank lines are skipped.
func ReadLines(r io.Reader) ([]map[string]any, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []map[string]any
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
				"failed to decode record", err, map[string]any{"line": lineNo})
		}
		out = append(out, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read records", err)
	}

	return out, nil
}
