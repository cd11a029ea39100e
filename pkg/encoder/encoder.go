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

package encoder

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
)

// Placeholder replaces values that cannot be encoded.
const Placeholder = "__unencodable_as_json__"

// CustomFunc converts a value the base encoder rejects into one it accepts.
// It returns false to decline.
type CustomFunc func(v any) (any, bool)

// Fallback identifies a value replaced by Placeholder.
type Fallback struct {
	// Path locates the value, e.g. "args[1]" or "nvidia_power.draw".
	Path string
	// Type is the Go type of the value.
	Type string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithCustom appends custom functions to the chain.
func WithCustom(fns ...CustomFunc) Option {
	return func(e *Encoder) {
		for _, fn := range fns {
			if fn != nil {
				e.custom = append(e.custom, fn)
			}
		}
	}
}

// WithMaxDepth bounds nesting, including custom-function replacements.
// Deeper values fall back to Placeholder.
func WithMaxDepth(depth int) Option {
	return func(e *Encoder) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// Encoder encodes records. It is immutable and safe for concurrent use.
type Encoder struct {
	custom   []CustomFunc
	maxDepth int
}

// New creates an encoder.
func New(opts ...Option) *Encoder {
	e := &Encoder{maxDepth: defaults.EncoderMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode returns the record as one compact JSON object, without a trailing
// newline, together with every value that fell back to Placeholder.
func (e *Encoder) Encode(rec *record.Record) (line []byte, fallbacks []Fallback, err error) {
	if rec == nil {
		return nil, nil, errors.New(errors.ErrCodeInternal, "cannot encode nil record")
	}

	defer func() {
		if r := recover(); r != nil {
			line, fallbacks = nil, nil
			err = errors.NewWithContext(errors.ErrCodeInternal, "record encoding panicked",
				map[string]any{"panic": fmt.Sprint(r)})
		}
	}()

	s := &state{enc: e}
	s.record("", rec, 0)
	return s.buf.Bytes(), s.fallbacks, nil
}

// Value encodes a single value with the same rules as record fields.
func (e *Encoder) Value(v any) ([]byte, []Fallback) {
	s := &state{enc: e}
	s.value("", v, 0)
	return s.buf.Bytes(), s.fallbacks
}

type state struct {
	enc       *Encoder
	buf       bytes.Buffer
	fallbacks []Fallback
}

func (s *state) fallback(path string, v any) {
	s.writeString(Placeholder)
	s.fallbacks = append(s.fallbacks, Fallback{Path: path, Type: fmt.Sprintf("%T", v)})
}

func (s *state) value(path string, v any, depth int) {
	if depth > s.enc.maxDepth {
		s.fallback(path, v)
		return
	}
	if s.base(path, v, depth) {
		return
	}
	for _, fn := range s.enc.custom {
		if replacement, ok := tryCustom(fn, v); ok {
			s.value(path, replacement, depth+1)
			return
		}
	}
	s.fallback(path, v)
}

func tryCustom(fn CustomFunc, v any) (out any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()
	return fn(v)
}

// base writes v and returns true, or writes nothing and returns false.
func (s *state) base(path string, v any, depth int) bool {
	if isNilPointer(v) {
		s.buf.WriteString("null")
		return true
	}

	switch t := v.(type) {
	case nil:
		s.buf.WriteString("null")
		return true
	case bool:
		s.buf.WriteString(strconv.FormatBool(t))
		return true
	case string:
		s.writeString(t)
		return true
	case int:
		s.buf.WriteString(strconv.FormatInt(int64(t), 10))
		return true
	case int8:
		s.buf.WriteString(strconv.FormatInt(int64(t), 10))
		return true
	case int16:
		s.buf.WriteString(strconv.FormatInt(int64(t), 10))
		return true
	case int32:
		s.buf.WriteString(strconv.FormatInt(int64(t), 10))
		return true
	case int64:
		s.buf.WriteString(strconv.FormatInt(t, 10))
		return true
	case uint:
		s.buf.WriteString(strconv.FormatUint(uint64(t), 10))
		return true
	case uint8:
		s.buf.WriteString(strconv.FormatUint(uint64(t), 10))
		return true
	case uint16:
		s.buf.WriteString(strconv.FormatUint(uint64(t), 10))
		return true
	case uint32:
		s.buf.WriteString(strconv.FormatUint(uint64(t), 10))
		return true
	case uint64:
		s.buf.WriteString(strconv.FormatUint(t, 10))
		return true
	case float32:
		return s.float(float64(t), 32)
	case float64:
		return s.float(t, 64)
	case time.Time:
		s.writeString(t.UTC().Format(time.RFC3339Nano))
		return true
	case time.Duration:
		return s.float(t.Seconds(), 64)
	case []byte:
		s.writeString(base64.StdEncoding.EncodeToString(t))
		return true
	case record.Sample:
		s.sample(path, t, depth)
		return true
	case *record.Sample:
		if t == nil {
			s.buf.WriteString("null")
			return true
		}
		s.sample(path, *t, depth)
		return true
	case []record.Sample:
		s.buf.WriteByte('[')
		for i := range t {
			if i > 0 {
				s.buf.WriteByte(',')
			}
			s.sample(indexPath(path, i), t[i], depth+1)
		}
		s.buf.WriteByte(']')
		return true
	case *record.Record:
		if t == nil {
			s.buf.WriteString("null")
			return true
		}
		s.record(path, t, depth+1)
		return true
	case map[string]any:
		s.stringMap(path, t, depth)
		return true
	case []any:
		s.buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				s.buf.WriteByte(',')
			}
			s.value(indexPath(path, i), item, depth+1)
		}
		s.buf.WriteByte(']')
		return true
	case json.Marshaler:
		return s.marshaler(t)
	case encoding.TextMarshaler:
		text, err := safeMarshalText(t)
		if err != nil {
			return false
		}
		s.writeString(string(text))
		return true
	case error:
		msg, ok := safeError(t)
		if !ok {
			return false
		}
		s.writeString(msg)
		return true
	}

	return s.reflectValue(path, reflect.ValueOf(v), depth)
}

func (s *state) float(f float64, bits int) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	var b []byte
	var err error
	if bits == 32 {
		b, err = json.Marshal(float32(f))
	} else {
		b, err = json.Marshal(f)
	}
	if err != nil {
		return false
	}
	s.buf.Write(b)
	return true
}

func (s *state) reflectValue(path string, rv reflect.Value, depth int) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			s.buf.WriteString("null")
			return true
		}
		s.value(path, rv.Elem().Interface(), depth+1)
		return true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		if rv.IsNil() {
			s.buf.WriteString("null")
			return true
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		s.stringMap(path, m, depth)
		return true
	case reflect.Slice:
		if rv.IsNil() {
			s.buf.WriteString("null")
			return true
		}
		fallthrough
	case reflect.Array:
		s.buf.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				s.buf.WriteByte(',')
			}
			s.value(indexPath(path, i), rv.Index(i).Interface(), depth+1)
		}
		s.buf.WriteByte(']')
		return true
	case reflect.Struct:
		if s.marshalStd(rv.Interface()) {
			return true
		}
		s.structFields(path, rv, depth)
		return true
	case reflect.Bool:
		return s.base(path, rv.Bool(), depth)
	case reflect.String:
		return s.base(path, rv.String(), depth)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.base(path, rv.Int(), depth)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return s.base(path, rv.Uint(), depth)
	case reflect.Float32, reflect.Float64:
		return s.float(rv.Float(), 64)
	default:
		return false
	}
}

func (s *state) record(path string, rec *record.Record, depth int) {
	s.buf.WriteByte('{')
	first := true
	rec.Range(func(key string, v any) bool {
		if !first {
			s.buf.WriteByte(',')
		}
		first = false
		s.writeString(key)
		s.buf.WriteByte(':')
		s.value(joinPath(path, key), v, depth+1)
		return true
	})
	s.buf.WriteByte('}')
}

func (s *state) stringMap(path string, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			s.buf.WriteByte(',')
		}
		s.writeString(k)
		s.buf.WriteByte(':')
		s.value(joinPath(path, k), m[k], depth+1)
	}
	s.buf.WriteByte('}')
}

func (s *state) sample(path string, smp record.Sample, depth int) {
	s.buf.WriteByte('{')
	s.writeString(record.SampleKeyTimestamp)
	s.buf.WriteByte(':')
	s.writeString(smp.Timestamp.UTC().Format(time.RFC3339Nano))
	s.buf.WriteByte(',')
	s.writeString(record.SampleKeySeq)
	s.buf.WriteByte(':')
	s.buf.WriteString(strconv.Itoa(smp.Seq))
	s.buf.WriteByte(',')
	s.writeString(record.SampleKeyElapsed)
	s.buf.WriteByte(':')
	if !s.float(smp.Elapsed.Seconds(), 64) {
		s.buf.WriteString("0")
	}

	keys := make([]string, 0, len(smp.Values))
	for k := range smp.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := k
		if record.IsReservedSampleKey(k) {
			name = "value_" + k
		}
		s.buf.WriteByte(',')
		s.writeString(name)
		s.buf.WriteByte(':')
		s.value(joinPath(path, name), smp.Values[k], depth+1)
	}
	s.buf.WriteByte('}')
}

// structFields writes the exported fields of rv one by one, following the
// json tag names, so that only the failing leaves fall back.
func (s *state) structFields(path string, rv reflect.Value, depth int) {
	var fields []structField
	collectFields(rv, map[string]bool{}, &fields)

	s.buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			s.buf.WriteByte(',')
		}
		s.writeString(f.name)
		s.buf.WriteByte(':')
		s.value(joinPath(path, f.name), f.value, depth+1)
	}
	s.buf.WriteByte('}')
}

type structField struct {
	name  string
	value any
}

func collectFields(rv reflect.Value, seen map[string]bool, out *[]structField) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		// fields promoted through an unexported embedded struct are not
		// reachable with Interface and are left out
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if sf.Anonymous && name == "" {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				collectFields(inner, seen, out)
				continue
			}
		}

		if name == "" {
			name = sf.Name
		}
		if seen[name] {
			continue
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		seen[name] = true
		*out = append(*out, structField{name: name, value: fv.Interface()})
	}
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Interface, reflect.Pointer:
		return v.IsZero()
	default:
		return false
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func safeError(err error) (msg string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			msg, ok = "", false
		}
	}()
	return err.Error(), true
}

func (s *state) marshaler(m json.Marshaler) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	b, err := m.MarshalJSON()
	if err != nil {
		return false
	}
	return s.compact(b)
}

func (s *state) marshalStd(v any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return false
	}
	return s.compact(bytes.TrimRight(out.Bytes(), "\n"))
}

func (s *state) compact(b []byte) bool {
	var out bytes.Buffer
	if err := json.Compact(&out, b); err != nil {
		return false
	}
	s.buf.Write(out.Bytes())
	return true
}

func safeMarshalText(m encoding.TextMarshaler) (text []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("marshal text panicked: %v", r)
		}
	}()
	return m.MarshalText()
}

func (s *state) writeString(str string) {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(str)
	s.buf.Write(bytes.TrimRight(out.Bytes(), "\n"))
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
