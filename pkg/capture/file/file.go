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

package file

import (
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/microbench/pkg/errors"
)

const defaultMaxSize = 1 << 20

// Option configures a Parser.
type Option func(*Parser)

// WithDelimiter sets the line separator. Default "\n".
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		if delim != "" {
			p.delimiter = delim
		}
	}
}

// WithMaxSize sets the largest accepted input in bytes. Default 1 MiB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments controls whether lines starting with '#' are dropped.
// Default true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the separator between key and value. Default "=".
func WithKVDelimiter(delim string) Option {
	return func(p *Parser) {
		if delim != "" {
			p.kvDelimiter = delim
		}
	}
}

// WithTrimChars sets characters trimmed from both ends of values, such as
// quotes. Default none.
func WithTrimChars(chars string) Option {
	return func(p *Parser) {
		p.trimChars = chars
	}
}

// WithSkipEmptyValues drops keys whose value is empty, including lines
// without a key/value separator. Default false.
func WithSkipEmptyValues(skip bool) Option {
	return func(p *Parser) {
		p.skipEmptyValues = skip
	}
}

// Parser reads line-oriented files.
type Parser struct {
	delimiter       string
	maxSize         int
	skipComments    bool
	kvDelimiter     string
	trimChars       string
	skipEmptyValues bool
}

// NewParser creates a parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:    "\n",
		maxSize:      defaultMaxSize,
		skipComments: true,
		kvDelimiter:  "=",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReadLines reads path and returns its non-empty lines.
func (p *Parser) ReadLines(path string) ([]string, error) {
	b, err := p.read(path)
	if err != nil {
		return nil, err
	}
	return p.Lines(b)
}

// ReadMap reads path and returns its key/value pairs.
func (p *Parser) ReadMap(path string) (map[string]string, error) {
	b, err := p.read(path)
	if err != nil {
		return nil, err
	}
	return p.Map(b)
}

// Lines splits b into trimmed, non-empty lines.
func (p *Parser) Lines(b []byte) ([]string, error) {
	if len(b) > p.maxSize {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"content exceeds maximum size", map[string]any{"size": len(b), "max": p.maxSize})
	}
	if !utf8.Valid(b) {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "content is not valid UTF-8")
	}

	parts := strings.Split(string(b), p.delimiter)
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		line := strings.TrimSpace(part)
		if line == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Map parses b into key/value pairs. Later duplicates replace earlier ones.
func (p *Parser) Map(b []byte) (map[string]string, error) {
	lines, err := p.Lines(b)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, p.kvDelimiter)
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if p.trimChars != "" {
			value = strings.Trim(value, p.trimChars)
		}

		if value == "" && p.skipEmptyValues {
			slog.Debug("skipping entry without value", "key", key, "separator_found", found)
			continue
		}
		out[key] = value
	}
	return out, nil
}

func (p *Parser) read(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "file path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to stat file", err,
			map[string]any{"path": path})
	}
	if info.Size() > int64(p.maxSize) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig, "file exceeds maximum size",
			map[string]any{"path": path, "size": info.Size(), "max": p.maxSize})
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read file", err,
			map[string]any{"path": path})
	}
	return b, nil
}
