// Package logging provides structured logging utilities for microbench components.
//
// # Overview
//
// This package wraps the standard library slog package with microbench defaults
// and conventions for consistent logging across all components. It supports
// environment-based log level configuration, module/version context injection,
// and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - Integration with standard library log package
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("microbench", "v1.0.0")
//	    defer slog.Info("application started")
//
//	    // Use slog as normal
//	    slog.Info("processing request", "id", "req-123")
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("operation failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("bench", "v2.0.0", "debug")
//	logger.Info("benchmark configured", "sink", "file")
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("microbench", "v1.0.0", "warn")
//
// Converting standard library logger:
//
//	stdLogger := logging.NewLogLogger(slog.LevelInfo, false)
//	stdLogger.Println("legacy log message")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug microbench run -- ./mybinary
//	LOG_LEVEL=error microbench diff a.jsonl b.jsonl
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "record appended",
//	    "module": "microbench",
//	    "version": "v1.0.0",
//	    "function": "train"
//	}
//
// Debug logs include source location:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "DEBUG",
//	    "source": {
//	        "function": "bench.(*Benchmark).Call",
//	        "file": "benchmark.go",
//	        "line": 45
//	    },
//	    "msg": "capture unit finished",
//	    "module": "microbench",
//	    "version": "v1.0.0"
//	}
//
// # Best Practices
//
// 1. Set default logger early in main():
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("myapp", version)
//	    defer slog.Info("application started")
//	    // ...
//	}
//
// 2. Include context in log messages:
//
//	slog.Info("record appended",
//	    "function", "train",
//	    "sink", "redis",
//	    "bytes", 412,
//	)
//
// 3. Use appropriate log levels:
//
//	slog.Debug("unit resolved", "unit", name) // Development/troubleshooting
//	slog.Info("benchmark started")            // Normal operations
//	slog.Warn("capture field collision")      // Potential issues
//	slog.Error("sink append failed")          // Errors requiring action
//
// 4. Log errors with context:
//
//	slog.Error("failed to append record",
//	    "error", err,
//	    "function", name,
//	    "sink", sinkName,
//	)
//
// # Integration
//
// This package is used by:
//   - pkg/cli - CLI command logging
//   - pkg/bench - invocation and sink failure logging
//   - pkg/capture - capture unit logging
//   - pkg/telemetry - sampler failure logging
//
// All components share consistent logging format and configuration.
package logging
