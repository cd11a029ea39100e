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

package bench

import "context"

// Wrap returns fn instrumented by b. Every call appends one record named
// name.
func Wrap[R any](b *Benchmark, name string, fn func(context.Context) (R, error)) func(context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		var res R
		_, err := b.Call(ctx, name, nil, func(ctx context.Context) (any, error) {
			var err error
			res, err = fn(ctx)
			return res, err
		})
		return res, err
	}
}

// Wrap1 is Wrap for a function of one argument, recorded as args[0].
func Wrap1[A, R any](b *Benchmark, name string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, a A) (R, error) {
		var res R
		_, err := b.Call(ctx, name, []any{a}, func(ctx context.Context) (any, error) {
			var err error
			res, err = fn(ctx, a)
			return res, err
		})
		return res, err
	}
}

// Wrap2 is Wrap for a function of two arguments.
func Wrap2[A, B, R any](b *Benchmark, name string, fn func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	return func(ctx context.Context, a A, bv B) (R, error) {
		var res R
		_, err := b.Call(ctx, name, []any{a, bv}, func(ctx context.Context) (any, error) {
			var err error
			res, err = fn(ctx, a, bv)
			return res, err
		})
		return res, err
	}
}
