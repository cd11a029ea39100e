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
	"net/url"

	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list used when a Redis URI names no key.
const DefaultRedisKey = "microbench"

// RedisSink pushes lines onto a Redis list.
type RedisSink struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedisSink appends to the list key using client. The caller keeps
// ownership of client.
func NewRedisSink(client *redis.Client, key string) *RedisSink {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSink{client: client, key: key}
}

// NewRedisSinkFromURL connects using a redis:// or rediss:// URL. The "key"
// query parameter selects the list.
func NewRedisSinkFromURL(raw string) (*RedisSink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid redis sink URI", err)
	}

	q := u.Query()
	key := q.Get("key")
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid redis sink URI", err)
	}
	if opts.DialTimeout == 0 || opts.DialTimeout > defaults.SinkDialTimeout {
		opts.DialTimeout = defaults.SinkDialTimeout
	}
	opts.MaxRetries = -1

	s := NewRedisSink(redis.NewClient(opts), key)
	s.owned = true
	return s, nil
}

// Key returns the list name.
func (s *RedisSink) Key() string {
	return s.key
}

// Append runs RPUSH key line. Failures are returned, not retried.
func (s *RedisSink) Append(ctx context.Context, line []byte) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.SinkRemoteTimeout)
	defer cancel()

	if err := s.client.RPush(ctx, s.key, bare(line)).Err(); err != nil {
		return errors.WrapWithContext(errors.ErrCodeSinkWrite,
			"failed to push record", err, map[string]any{"key": s.key})
	}
	return nil
}

// Close closes the client when the sink created it.
func (s *RedisSink) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
