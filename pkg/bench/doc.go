// Package bench wraps function calls to record one structured JSON document
// per invocation.
//
// A Benchmark composes capture mixins into a frozen plan, runs the pre-call
// units, optionally samples telemetry on a background goroutine while the
// wrapped function runs, runs the post-call units, encodes the record and
// appends it to a sink.
//
// Usage:
//
//	b, err := bench.New(
//	    bench.WithSink(s),
//	    bench.WithMixins(capture.RunID(), capture.FunctionCall(), capture.ReturnValue()),
//	    bench.WithTelemetry(telemetry.ProcessSampler(), 5*time.Second),
//	    bench.WithStatic("experiment", "fp8-sweep"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	train := bench.Wrap1(b, "train", func(ctx context.Context, epochs int) (float64, error) {
//	    return runTraining(ctx, epochs)
//	})
//	loss, err := train(ctx, 3)
//
// The wrapped function's result, error and panic are always propagated
// unchanged. Failures of the pipeline itself (colliding fields, values that
// cannot be encoded, sink errors, telemetry errors) are logged as warnings
// with a structured error code and never alter the call's outcome.
package bench
