// Package encoder serializes invocation records to single-line JSON without
// ever failing on an individual value.
//
// Each value is encoded by the base encoder first. Values the base encoder
// rejects are offered to the custom functions registered with WithCustom, in
// order; the first replacement is encoded in place of the original. A value
// that nothing can encode is written as Placeholder and reported as a
// Fallback, leaving sibling fields untouched:
//
//	enc := encoder.New(encoder.WithCustom(func(v any) (any, bool) {
//	    if c, ok := v.(complex128); ok {
//	        return []float64{real(c), imag(c)}, true
//	    }
//	    return nil, false
//	}))
//
//	line, fallbacks, err := enc.Encode(rec)
//
// The base encoder supports nil, booleans, integers, finite floats, strings,
// time.Time (RFC 3339 with nanoseconds, UTC), time.Duration (seconds as a
// float), error values (their message), json.Marshaler and
// encoding.TextMarshaler implementations, maps with string keys, slices,
// arrays, pointers, record.Sample, nested records, and structs accepted by
// encoding/json. Map keys are written in sorted order; record fields keep
// their insertion order.
package encoder
