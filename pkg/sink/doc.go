// Package sink provides append-only destinations for serialized records.
//
// A Sink receives one encoded record per Append call and stores it as one
// line. Sinks give at-least-once semantics: Append returns only after the
// line was handed to the destination, and a failed Append is reported to the
// caller rather than retried.
//
// Available sinks:
//
//   - FileSink appends to a local file (O_APPEND), creating parent
//     directories as needed and syncing after each line by default.
//   - BufferSink keeps lines in memory, mainly for tests.
//   - WriterSink writes to any io.Writer such as os.Stdout.
//   - RedisSink pushes lines onto a Redis list with RPUSH.
//   - ConfigMapSink appends lines to a key of a Kubernetes ConfigMap.
//   - MultiSink fans a line out to several sinks concurrently.
//
// Open builds a sink from a URI:
//
//	""  or "-"                          standard output
//	mem://                              in-memory buffer
//	file:///var/log/bench.jsonl         file (a bare path works too)
//	redis://host:6379/0?key=bench       Redis list "bench"
//	cm://namespace/name                 ConfigMap data key "records.jsonl"
//
// Every sink returned by this package is safe for concurrent use.
package sink
