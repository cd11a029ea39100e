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

package record

// Well-known field names written by the invocation pipeline itself.
const (
	FieldFunctionName = "function_name"
	FieldStartTime    = "start_time"
	FieldFinishTime   = "finish_time"
	FieldTelemetry    = "telemetry"
)

// Collision describes a field written by two different writers within one record.
type Collision struct {
	Field    string
	Previous string
	Current  string
}

// Option configures a Record.
type Option func(*Record)

// WithCollisionHandler sets the function called the first time each field collides.
func WithCollisionHandler(fn func(Collision)) Option {
	return func(r *Record) {
		r.onCollision = fn
	}
}

// Record is an ordered, writer-attributed set of fields.
type Record struct {
	keys        []string
	values      map[string]any
	owners      map[string]string
	writer      string
	collided    map[string]struct{}
	collisions  []Collision
	onCollision func(Collision)
}

// New creates an empty record.
func New(opts ...Option) *Record {
	r := &Record{
		values: make(map[string]any),
		owners: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetWriter sets the writer attributed to subsequent Set calls and returns
// the previous writer.
func (r *Record) SetWriter(name string) string {
	prev := r.writer
	r.writer = name
	return prev
}

// Writer returns the current writer.
func (r *Record) Writer() string {
	return r.writer
}

// Set writes a field. Rewriting a field owned by another writer is a
// collision: the new value wins and the collision is reported once per field.
func (r *Record) Set(key string, value any) {
	owner, exists := r.owners[key]
	if !exists {
		r.keys = append(r.keys, key)
	} else if owner != r.writer {
		r.collide(Collision{Field: key, Previous: owner, Current: r.writer})
	}
	r.values[key] = value
	r.owners[key] = r.writer
}

func (r *Record) collide(c Collision) {
	if r.collided == nil {
		r.collided = make(map[string]struct{})
	}
	if _, seen := r.collided[c.Field]; seen {
		return
	}
	r.collided[c.Field] = struct{}{}
	r.collisions = append(r.collisions, c)
	if r.onCollision != nil {
		r.onCollision(c)
	}
}

// Get returns the value of a field and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether a field is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Owner returns the writer that last wrote the field.
func (r *Record) Owner(key string) string {
	return r.owners[key]
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns field names in first-write order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range calls fn for each field in first-write order until fn returns false.
func (r *Record) Range(fn func(key string, value any) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Collisions returns the collisions reported so far, in order of detection.
func (r *Record) Collisions() []Collision {
	out := make([]Collision, len(r.collisions))
	copy(out, r.collisions)
	return out
}

// Map returns a copy of the fields as a plain map.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
