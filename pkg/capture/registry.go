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

package capture

import (
	"log/slog"
	"sort"
	"sync"
)

// Mixin is a named, reusable bundle of units.
type Mixin struct {
	Name  string
	Units []Unit
}

// NewMixin creates a mixin from units in declaration order.
func NewMixin(name string, units ...Unit) Mixin {
	return Mixin{Name: name, Units: units}
}

// Plan is the resolved, ordered set of units. It is read-only and safe to
// share between concurrent invocations.
type Plan struct {
	// Pre holds pre-call units in execution order.
	Pre []Unit
	// Post holds post-call units in execution order.
	Post []Unit

	collisions map[string][]string
}

// Collisions returns fields declared by more than one unit, mapped to the
// declaring unit names in plan order. Only units implementing FieldDeclarer
// take part.
func (p *Plan) Collisions() map[string][]string {
	out := make(map[string][]string, len(p.collisions))
	for f, units := range p.collisions {
		out[f] = append([]string(nil), units...)
	}
	return out
}

// Units returns all units, pre-call first.
func (p *Plan) Units() []Unit {
	out := make([]Unit, 0, len(p.Pre)+len(p.Post))
	out = append(out, p.Pre...)
	return append(out, p.Post...)
}

// Registry composes mixins and resolves them into a Plan.
type Registry struct {
	mixins []Mixin

	once sync.Once
	plan *Plan
}

// NewRegistry creates a registry. Defaults() is always resolved first.
func NewRegistry(mixins ...Mixin) *Registry {
	return &Registry{mixins: append([]Mixin(nil), mixins...)}
}

// Mixins returns the composed mixins, excluding the defaults.
func (r *Registry) Mixins() []Mixin {
	return append([]Mixin(nil), r.mixins...)
}

// Resolve computes the plan on first use and returns the cached plan afterwards.
func (r *Registry) Resolve() *Plan {
	r.once.Do(func() {
		r.plan = resolve(append([]Mixin{Defaults()}, r.mixins...))
	})
	return r.plan
}

func resolve(mixins []Mixin) *Plan {
	var ordered []Unit
	index := make(map[string]int)

	for _, m := range mixins {
		for _, u := range m.Units {
			if u == nil {
				continue
			}
			if i, ok := index[u.Name()]; ok {
				slog.Debug("capture unit overridden",
					"unit", u.Name(),
					"mixin", m.Name)
				ordered[i] = u
				continue
			}
			index[u.Name()] = len(ordered)
			ordered = append(ordered, u)
		}
	}

	plan := &Plan{}
	declared := make(map[string][]string)
	for _, u := range ordered {
		switch u.Phase() {
		case PostCall:
			plan.Post = append(plan.Post, u)
		default:
			plan.Pre = append(plan.Pre, u)
		}
	}

	for _, u := range plan.Units() {
		fd, ok := u.(FieldDeclarer)
		if !ok {
			continue
		}
		for _, f := range fd.Fields() {
			declared[f] = append(declared[f], u.Name())
		}
	}

	plan.collisions = make(map[string][]string)
	fields := make([]string, 0, len(declared))
	for f := range declared {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if len(declared[f]) > 1 {
			plan.collisions[f] = declared[f]
			slog.Debug("capture fields declared by multiple units",
				"field", f,
				"units", declared[f])
		}
	}

	return plan
}
