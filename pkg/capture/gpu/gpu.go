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

package gpu

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
)

const (
	// MixinName is the catalog name of the GPU mixin.
	MixinName = "nvidia-smi"
	// FieldPrefix prefixes every attribute field.
	FieldPrefix = "nvidia_"

	smiBinary = "nvidia-smi"
)

// DefaultAttributes are queried when none are configured.
var DefaultAttributes = []string{"gpu_name", "memory.total"}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Option configures the GPU mixin.
type Option func(*config)

type config struct {
	attributes []string
	runner     Runner
}

// WithAttributes sets the nvidia-smi query attributes. uuid is always
// queried and used as the map key.
func WithAttributes(attrs ...string) Option {
	return func(c *config) {
		var clean []string
		for _, a := range attrs {
			a = strings.TrimSpace(a)
			if a != "" && a != "uuid" {
				clean = append(clean, a)
			}
		}
		if len(clean) > 0 {
			c.attributes = clean
		}
	}
}

// WithRunner replaces command execution, mainly for tests.
func WithRunner(r Runner) Option {
	return func(c *config) {
		if r != nil {
			c.runner = r
		}
	}
}

// Mixin returns the nvidia-smi capture mixin.
func Mixin(opts ...Option) capture.Mixin {
	c := &config{
		attributes: DefaultAttributes,
		runner:     execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}

	fields := make([]string, len(c.attributes))
	for i, a := range c.attributes {
		fields[i] = FieldPrefix + a
	}

	return capture.NewMixin(MixinName,
		capture.Func(MixinName, capture.PreCall, func(ctx context.Context, rec *record.Record, _ *capture.Invocation) {
			values, err := c.query(ctx)
			if err != nil {
				slog.Debug("gpu attributes unavailable", "error", err)
				for _, f := range fields {
					rec.Set(f, nil)
				}
				return
			}
			for i, a := range c.attributes {
				rec.Set(fields[i], values[a])
			}
		}, fields...),
	)
}

// query returns attribute -> uuid -> value.
func (c *config) query(ctx context.Context) (map[string]map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CaptureTimeout)
	defer cancel()

	query := append([]string{"uuid"}, c.attributes...)
	out, err := c.runner(ctx, smiBinary,
		"--query-gpu="+strings.Join(query, ","),
		"--format=csv,noheader,nounits")
	if err != nil {
		return nil, err
	}

	return parseCSV(out, c.attributes)
}

func parseCSV(out []byte, attributes []string) (map[string]map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = len(attributes) + 1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to parse nvidia-smi output", err)
	}

	values := make(map[string]map[string]string, len(attributes))
	for _, a := range attributes {
		values[a] = make(map[string]string, len(rows))
	}
	for _, row := range rows {
		uuid := strings.TrimSpace(row[0])
		for i, a := range attributes {
			values[a][uuid] = strings.TrimSpace(row[i+1])
		}
	}
	return values, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("%s not found in PATH", name), err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to execute %s", name), err)
	}
	return out, nil
}

// Entries returns catalog entries for this package's mixins.
func Entries() []capture.Entry {
	return []capture.Entry{
		{
			Name:        MixinName,
			Description: "NVIDIA GPU attributes keyed by GPU UUID",
			Fields:      []string{FieldPrefix + "<attribute>"},
			New: func(o capture.Options) capture.Mixin {
				return Mixin(WithAttributes(o.GPUAttributes...))
			},
		},
	}
}
