// Package cli implements the microbench command-line tool.
//
// # Overview
//
// microbench records one JSON document per benchmarked call. The CLI wraps
// an arbitrary command as the benchmarked function, compares recorded
// environments, and lists the available capture mixins.
//
// # Commands
//
// run - Run a command and record it:
//
//	microbench run [--output URI] [--mixin NAME]... [--field KEY=VALUE]... -- COMMAND [ARGS...]
//
// The command's argv is recorded as args and its exit code as return_value.
// With --telemetry the process tree is sampled every --telemetry-interval.
// microbench exits with the command's exit code.
//
// diff - Compare two records:
//
//	microbench diff results-a.jsonl results-b.jsonl [--line-a N] [--line-b N] [--ignore PATTERN]...
//
// Lines are 0-based; negative values count from the end (default -1, the
// last record). Patterns accept * wildcards.
//
// units - List capture mixins:
//
//	microbench units [--format table|json|yaml]
//
// # Output URIs
//
//	-, empty               stdout
//	mem://                 in-memory (discarded; for dry runs)
//	file:///path, /path    append to a local file
//	redis://host:6379/0?key=NAME   RPUSH to a Redis list
//	cm://namespace/name    append to a Kubernetes ConfigMap
//
// # Configuration
//
// Settings are read from --config, or ~/.microbench.yaml or ./.microbench.yaml,
// and MICROBENCH_* environment variables; flags take precedence.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, sink failure)
//	N  Exit code of the command run by "run"
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/microbench/pkg/cli.version=1.0.0'"
package cli
