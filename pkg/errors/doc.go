// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Conditions raised by the capture pipeline are classified by ErrorCode.
// Collisions and serialization fallbacks are warnings and never surface as
// returned errors; sink failures are returned by sinks and reported by the
// invocation wrapper without changing the wrapped function's outcome.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeSinkWrite,
//	    "failed to push record",
//	    cause,
//	    map[string]any{
//	        "sink": "redis",
//	        "key":  "results",
//	    },
//	)
package errors
