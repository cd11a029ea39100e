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

package image

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/distribution/reference"
)

const (
	// MixinName is the catalog name of the image mixin.
	MixinName = "container-image"
	// FieldImage holds the parsed image reference.
	FieldImage = "container_image"
	// EnvImage names the variable holding the image reference.
	EnvImage = "CONTAINER_IMAGE"
)

// Reference is a parsed container image reference.
type Reference struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
	Tag    string `json:"tag,omitempty"`
	Digest string `json:"digest,omitempty"`
}

// Parse normalizes and splits an image reference such as
// "nvcr.io/nvidia/pytorch:25.01-py3" or "ubuntu@sha256:...".
func Parse(s string) (*Reference, error) {
	named, err := reference.ParseNormalizedNamed(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid image reference", err)
	}

	ref := &Reference{
		Name:   named.Name(),
		Domain: reference.Domain(named),
		Path:   reference.Path(named),
	}
	if tagged, ok := named.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	}
	if digested, ok := named.(reference.Digested); ok {
		ref.Digest = digested.Digest().String()
	}
	if ref.Tag == "" && ref.Digest == "" {
		ref.Tag = "latest"
	}
	return ref, nil
}

// Mixin returns the container-image capture mixin.
func Mixin() capture.Mixin {
	return capture.NewMixin(MixinName,
		capture.Func(MixinName, capture.PreCall, func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			v := os.Getenv(EnvImage)
			if v == "" {
				rec.Set(FieldImage, nil)
				return
			}
			ref, err := Parse(v)
			if err != nil {
				slog.Debug("container image unavailable", "image", v, "error", err)
				rec.Set(FieldImage, nil)
				return
			}
			rec.Set(FieldImage, ref)
		}, FieldImage),
	)
}

// Entries returns catalog entries for this package's mixins.
func Entries() []capture.Entry {
	return []capture.Entry{
		{
			Name:        MixinName,
			Description: "container image reference from $" + EnvImage,
			Fields:      []string{FieldImage},
			New:         func(capture.Options) capture.Mixin { return Mixin() },
		},
	}
}
