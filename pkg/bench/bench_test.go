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

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/encoder"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/NVIDIA/microbench/pkg/sink"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func newBuffered(t *testing.T, opts ...Option) (*Benchmark, *sink.BufferSink) {
	t.Helper()
	buf := sink.NewBufferSink()
	b, err := New(append([]Option{WithSink(buf)}, opts...)...)
	require.NoError(t, err)
	return b, buf
}

func parseTime(t *testing.T, v any) time.Time {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "timestamp should be a string: %v", v)
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return ts
}

func TestNew_RequiresSink(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
}

func TestNew_RejectsEmptyStaticKey(t *testing.T) {
	_, err := New(WithSink(sink.NewBufferSink()), WithStatic("", 1))
	require.Error(t, err)
}

func TestNew_RejectsDuplicateStaticKey(t *testing.T) {
	_, err := New(WithSink(sink.NewBufferSink()), WithStatic("k", 1), WithStatic("k", 2))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))
}

func TestCall_FileSinkTwoCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "f.jsonl")
	fs, err := sink.NewFileSink(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	b, err := New(WithSink(fs))
	require.NoError(t, err)

	f := Wrap(b, "f", func(context.Context) (int, error) { return 42, nil })
	for range 2 {
		v, err := f(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 2)

	for _, rec := range decodeLines(t, lines) {
		assert.Equal(t, "f", rec[record.FieldFunctionName])
		start := parseTime(t, rec[record.FieldStartTime])
		finish := parseTime(t, rec[record.FieldFinishTime])
		assert.False(t, finish.Before(start))
		assert.NotContains(t, rec, capture.FieldReturnValue)
	}
}

func TestCall_FieldOrder(t *testing.T) {
	b, buf := newBuffered(t,
		WithStatic("experiment", "sweep-1"),
		WithMixins(capture.ReturnValue()),
	)

	_, err := Wrap(b, "f", func(context.Context) (string, error) { return "ok", nil })(t.Context())
	require.NoError(t, err)

	line := buf.Lines()[0]
	assert.True(t, strings.HasPrefix(line, `{"experiment":"sweep-1","function_name":"f","start_time":`), line)
	assert.True(t, strings.HasSuffix(line, `"return_value":"ok"}`), line)
}

func TestCall_ReturnValueAndArgs(t *testing.T) {
	b, buf := newBuffered(t, WithMixins(capture.FunctionCall(), capture.ReturnValue()))

	add := Wrap2(b, "add", func(_ context.Context, x, y int) (int, error) { return x + y, nil })
	v, err := add(t.Context(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	rec := decodeLines(t, buf.Lines())[0]
	assert.Equal(t, []any{float64(2), float64(3)}, rec[capture.FieldArgs])
	assert.Equal(t, float64(5), rec[capture.FieldReturnValue])
}

func TestCall_ErrorPropagates(t *testing.T) {
	b, buf := newBuffered(t, WithMixins(capture.ReturnValue(), capture.Outcome()))
	want := stderrors.New("device lost")

	square := Wrap1(b, "square", func(_ context.Context, x int) (int, error) { return 0, want })
	_, err := square(t.Context(), 4)
	assert.Same(t, want, err)

	recs := decodeLines(t, buf.Lines())
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0][capture.FieldReturnValue])
	assert.Contains(t, recs[0], capture.FieldReturnValue)
	assert.Equal(t, map[string]any{"type": "*errors.errorString", "message": "device lost"}, recs[0][capture.FieldError])
	assert.Contains(t, recs[0], record.FieldFinishTime)
}

func TestCall_PanicPropagates(t *testing.T) {
	b, buf := newBuffered(t, WithMixins(capture.ReturnValue(), capture.Outcome()))

	boom := Wrap(b, "boom", func(context.Context) (int, error) { panic("kernel fault") })
	assert.PanicsWithValue(t, "kernel fault", func() { _, _ = boom(t.Context()) })

	recs := decodeLines(t, buf.Lines())
	require.Len(t, recs, 1)
	assert.Equal(t, true, recs[0][capture.FieldPanicked])
	assert.Nil(t, recs[0][capture.FieldReturnValue])
	assert.Contains(t, recs[0], record.FieldFinishTime)
}

func TestCall_Collision(t *testing.T) {
	logger, logs := newCaptureLogger()

	first := capture.NewMixin("first", capture.Func("a", capture.PreCall,
		func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			rec.Set("device", "cpu")
			rec.Set("device", "cpu:0")
		}, "device"))
	second := capture.NewMixin("second", capture.Func("b", capture.PreCall,
		func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			rec.Set("device", "gpu")
			rec.Set("device", "gpu:0")
		}, "device"))

	b, buf := newBuffered(t, WithLogger(logger), WithMixins(first, second))
	assert.Equal(t, map[string][]string{"device": {"a", "b"}}, b.Plan().Collisions())

	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, logs.count(slog.LevelWarn, errors.ErrCodeCollision))
	assert.Equal(t, "device", logs.attr(errors.ErrCodeCollision, "field"))
	assert.Equal(t, "gpu:0", decodeLines(t, buf.Lines())[0]["device"])
}

func TestCall_CollisionWithReservedField(t *testing.T) {
	logger, logs := newCaptureLogger()
	b, buf := newBuffered(t, WithLogger(logger), WithStatic(record.FieldFunctionName, "static-name"))

	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, logs.count(slog.LevelWarn, errors.ErrCodeCollision))
	assert.Equal(t, "f", decodeLines(t, buf.Lines())[0][record.FieldFunctionName])
}

func TestCall_EncoderFallback(t *testing.T) {
	logger, logs := newCaptureLogger()
	b, buf := newBuffered(t,
		WithLogger(logger),
		WithStatic("callback", func() {}),
		WithStatic("batch", 64),
	)

	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, logs.count(slog.LevelWarn, errors.ErrCodeSerializationFallback))
	rec := decodeLines(t, buf.Lines())[0]
	assert.Equal(t, encoder.Placeholder, rec["callback"])
	assert.Equal(t, float64(64), rec["batch"])
}

type precision struct{ bits int }

func TestCall_CustomEncoder(t *testing.T) {
	logger, logs := newCaptureLogger()
	b, buf := newBuffered(t,
		WithLogger(logger),
		WithStatic("dtype", precision{bits: 8}),
		WithCustomEncoder(func(v any) (any, bool) {
			if p, ok := v.(precision); ok {
				return fmt.Sprintf("fp%d", p.bits), true
			}
			return nil, false
		}),
	)

	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)

	assert.Zero(t, logs.count(slog.LevelWarn, errors.ErrCodeSerializationFallback))
	assert.Equal(t, "fp8", decodeLines(t, buf.Lines())[0]["dtype"])
}

func TestCall_SinkFailure(t *testing.T) {
	logger, logs := newCaptureLogger()
	sinkErr := errors.New(errors.ErrCodeSinkWrite, "connection refused")

	var handled []error
	b, err := New(
		WithSink(&failingSink{err: sinkErr}),
		WithLogger(logger),
		WithErrorHandler(func(err error) { handled = append(handled, err) }),
	)
	require.NoError(t, err)

	v, err := Wrap(b, "f", func(context.Context) (int, error) { return 42, nil })(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	require.Len(t, handled, 1)
	assert.ErrorIs(t, handled[0], sinkErr)
	assert.Equal(t, 1, logs.count(slog.LevelError, errors.ErrCodeSinkWrite))
}

func TestCall_UnitPanicIsContained(t *testing.T) {
	logger, logs := newCaptureLogger()
	bad := capture.NewMixin("bad", capture.Func("bad", capture.PreCall,
		func(context.Context, *record.Record, *capture.Invocation) { panic("nil map") }))

	b, buf := newBuffered(t, WithLogger(logger), WithMixins(bad, capture.ReturnValue()))

	v, err := Wrap(b, "f", func(context.Context) (int, error) { return 7, nil })(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	assert.Equal(t, 1, logs.count(slog.LevelWarn, errors.ErrCodeInternal))
	assert.Equal(t, float64(7), decodeLines(t, buf.Lines())[0][capture.FieldReturnValue])
}

func TestCall_AlwaysFailingSampler(t *testing.T) {
	logger, logs := newCaptureLogger()
	fc := testingclock.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	called := make(chan struct{}, 16)

	failing := func(context.Context, *process.Process) (map[string]any, error) {
		called <- struct{}{}
		return nil, stderrors.New("nvml not initialized")
	}

	b, buf := newBuffered(t,
		WithLogger(logger),
		WithClock(fc),
		WithTelemetry(failing, time.Second),
		WithMixins(capture.ReturnValue()),
	)

	v, err := Wrap(b, "f", func(context.Context) (int, error) {
		require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
		for range 3 {
			fc.Step(time.Second)
			select {
			case <-called:
			case <-time.After(5 * time.Second):
				t.Fatal("sample function not called")
			}
		}
		return 42, nil
	})(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	recs := decodeLines(t, buf.Lines())
	require.Len(t, recs, 1)
	assert.Equal(t, []any{}, recs[0][record.FieldTelemetry])
	assert.Equal(t, float64(42), recs[0][capture.FieldReturnValue])
	assert.Equal(t, 3, logs.count(slog.LevelWarn, errors.ErrCodeTelemetrySample))
}

func TestCall_TelemetrySamples(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	called := make(chan struct{}, 16)

	var n int
	sampler := func(context.Context, *process.Process) (map[string]any, error) {
		defer func() { called <- struct{}{} }()
		n++
		return map[string]any{"gpu_util": n * 10}, nil
	}

	b, buf := newBuffered(t, WithClock(fc), WithTelemetry(sampler, 30*time.Second))

	_, err := b.Call(t.Context(), "train", nil, func(context.Context) (any, error) {
		require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
		for range 2 {
			fc.Step(30 * time.Second)
			<-called
		}
		return nil, nil
	})
	require.NoError(t, err)

	rec := decodeLines(t, buf.Lines())[0]
	samples, ok := rec[record.FieldTelemetry].([]any)
	require.True(t, ok)
	require.Len(t, samples, 2)

	for i, s := range samples {
		m := s.(map[string]any)
		assert.Equal(t, float64(i), m[record.SampleKeySeq])
		assert.Equal(t, float64((i+1)*30), m[record.SampleKeyElapsed])
		assert.Equal(t, float64((i+1)*10), m["gpu_util"])
	}

	start := parseTime(t, rec[record.FieldStartTime])
	finish := parseTime(t, rec[record.FieldFinishTime])
	assert.Equal(t, time.Minute, finish.Sub(start))
}

func TestCall_NoTelemetryField(t *testing.T) {
	b, buf := newBuffered(t)
	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.NotContains(t, decodeLines(t, buf.Lines())[0], record.FieldTelemetry)
}

func TestCall_Concurrent(t *testing.T) {
	b, buf := newBuffered(t, WithMixins(capture.RunID(), capture.FunctionCall()))
	work := Wrap1(b, "work", func(_ context.Context, i int) (int, error) { return i * i, nil })

	const calls = 32
	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := work(context.Background(), i)
			assert.NoError(t, err)
			assert.Equal(t, i*i, v)
		}()
	}
	wg.Wait()

	recs := decodeLines(t, buf.Lines())
	require.Len(t, recs, calls)

	runIDs := map[any]bool{}
	callIDs := map[any]bool{}
	for _, r := range recs {
		runIDs[r[capture.FieldRunID]] = true
		callIDs[r[capture.FieldCallID]] = true
	}
	assert.Len(t, runIDs, 1)
	assert.Len(t, callIDs, calls)
}

func TestCall_DuplicateMixinRunsOnce(t *testing.T) {
	var runs int
	counting := capture.NewMixin("counting", capture.Func("counting", capture.PreCall,
		func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			runs++
			rec.Set("runs", runs)
		}))

	b, _ := newBuffered(t, WithMixins(counting, counting))
	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

type hostErr struct{ host string }

func (e *hostErr) Error() string { return "host " + e.host + " down" }

func TestCall_NilErrorPointerInRecord(t *testing.T) {
	logger, logs := newCaptureLogger()
	bad := capture.NewMixin("bad", capture.Func("bad", capture.PreCall,
		func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			rec.Set("last_error", error((*hostErr)(nil)))
		}, "last_error"))

	b, buf := newBuffered(t, WithLogger(logger), WithMixins(bad, capture.ReturnValue()))

	v, err := Wrap(b, "f", func(context.Context) (int, error) { return 42, nil })(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	recs := decodeLines(t, buf.Lines())
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0]["last_error"])
	assert.Equal(t, float64(42), recs[0][capture.FieldReturnValue])
	assert.Zero(t, logs.count(slog.LevelError, errors.ErrCodeInternal))
}

func TestCall_StuckSamplerDoesNotBlock(t *testing.T) {
	stuck := func(ctx context.Context, _ *process.Process) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b, buf := newBuffered(t, WithTelemetry(stuck, 10*time.Millisecond))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = b.Call(t.Context(), "f", nil, func(context.Context) (any, error) {
			time.Sleep(50 * time.Millisecond)
			return nil, nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Call did not return while a sample was in flight")
	}
	recs := decodeLines(t, buf.Lines())
	require.Len(t, recs, 1)
	assert.Equal(t, []any{}, recs[0][record.FieldTelemetry])
}

func TestCall_SampleTimestampsWithinCall(t *testing.T) {
	called := make(chan struct{}, 16)
	sampler := func(context.Context, *process.Process) (map[string]any, error) {
		defer func() { called <- struct{}{} }()
		return map[string]any{}, nil
	}
	b, buf := newBuffered(t, WithTelemetry(sampler, 5*time.Millisecond))

	_, err := b.Call(t.Context(), "f", nil, func(context.Context) (any, error) {
		<-called
		<-called
		return nil, nil
	})
	require.NoError(t, err)

	rec := decodeLines(t, buf.Lines())[0]
	start := parseTime(t, rec[record.FieldStartTime])
	finish := parseTime(t, rec[record.FieldFinishTime])
	samples := rec[record.FieldTelemetry].([]any)
	require.GreaterOrEqual(t, len(samples), 2)

	prev := start
	for _, smp := range samples {
		ts := parseTime(t, smp.(map[string]any)[record.SampleKeyTimestamp])
		assert.False(t, ts.Before(prev), "sample timestamp %s before %s", ts, prev)
		prev = ts
	}
	assert.False(t, finish.Before(prev))
}
