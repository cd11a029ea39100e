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
	"fmt"
	"strings"

	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/k8s/client"
)

// URI schemes understood by Open.
const (
	SchemeMemory    = "mem://"
	SchemeFile      = "file://"
	SchemeRedis     = "redis://"
	SchemeRedisTLS  = "rediss://"
	SchemeConfigMap = "cm://"
)

// Open returns the sink addressed by uri. Close the result with Close.
func Open(uri string, opts ...FileOption) (Sink, error) {
	trimmed := strings.TrimSpace(uri)

	switch {
	case trimmed == "" || trimmed == "-":
		return NewStdoutSink(), nil
	case strings.HasPrefix(trimmed, SchemeMemory):
		return NewBufferSink(), nil
	case strings.HasPrefix(trimmed, SchemeRedis), strings.HasPrefix(trimmed, SchemeRedisTLS):
		s, err := NewRedisSinkFromURL(trimmed)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(trimmed, SchemeConfigMap):
		namespace, name, err := parseConfigMapURI(trimmed)
		if err != nil {
			return nil, err
		}
		c, _, err := client.GetKubeClient()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to get kubernetes client", err)
		}
		return NewConfigMapSink(c, namespace, name), nil
	case strings.HasPrefix(trimmed, SchemeFile):
		path := strings.TrimPrefix(trimmed, SchemeFile)
		if path == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file sink URI has no path")
		}
		return openFile(path, opts...)
	case strings.Contains(trimmed, "://"):
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unsupported sink URI scheme", map[string]any{"uri": trimmed})
	default:
		return openFile(trimmed, opts...)
	}
}

func openFile(path string, opts ...FileOption) (Sink, error) {
	s, err := NewFileSink(path, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	path := strings.TrimPrefix(uri, SchemeConfigMap)

	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		return "", "", errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid ConfigMap URI format: expected %snamespace/name, got %s", SchemeConfigMap, uri))
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if namespace == "" || name == "" {
		return "", "", errors.New(errors.ErrCodeInvalidConfig,
			"invalid ConfigMap URI: namespace and name are required")
	}

	return namespace, name, nil
}
