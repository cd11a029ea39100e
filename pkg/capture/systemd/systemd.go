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

package systemd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/coreos/go-systemd/v22/dbus"
)

const (
	// MixinName is the catalog name of the systemd mixin.
	MixinName = "systemd"
	// FieldUnits holds unit name -> UnitState.
	FieldUnits = "systemd_units"
)

// DefaultUnits are reported when none are configured.
var DefaultUnits = []string{"containerd.service", "docker.service", "kubelet.service"}

// UnitState is the recorded state of one systemd unit.
type UnitState struct {
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	LoadState   string `json:"load_state"`
}

// lister is the subset of *dbus.Conn used by the unit.
type lister interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	Close()
}

var connect = func(ctx context.Context) (lister, error) {
	return dbus.NewSystemdConnectionContext(ctx)
}

// Mixin returns the systemd capture mixin for the given units. Names without
// a type suffix are treated as services.
func Mixin(units ...string) capture.Mixin {
	names := normalize(units)
	if len(names) == 0 {
		names = DefaultUnits
	}

	return capture.NewMixin(MixinName,
		capture.Func(MixinName, capture.PreCall, func(ctx context.Context, rec *record.Record, _ *capture.Invocation) {
			states, err := Query(ctx, names)
			if err != nil {
				slog.Debug("systemd state unavailable", "error", err)
				rec.Set(FieldUnits, nil)
				return
			}
			rec.Set(FieldUnits, states)
		}, FieldUnits),
	)
}

// Query returns the state of each named unit. Units systemd does not know
// are reported with load state "not-found".
func Query(ctx context.Context, names []string) (map[string]UnitState, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CaptureTimeout)
	defer cancel()

	conn, err := connect(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to connect to systemd", err)
	}
	defer conn.Close()

	statuses, err := conn.ListUnitsByNamesContext(ctx, names)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list systemd units", err)
	}

	states := make(map[string]UnitState, len(names))
	for _, n := range names {
		states[n] = UnitState{LoadState: "not-found", ActiveState: "inactive", SubState: "dead"}
	}
	for _, s := range statuses {
		states[s.Name] = UnitState{
			ActiveState: s.ActiveState,
			SubState:    s.SubState,
			LoadState:   s.LoadState,
		}
	}
	return states, nil
}

func normalize(units []string) []string {
	var out []string
	for _, u := range units {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !strings.Contains(u, ".") {
			u += ".service"
		}
		out = append(out, u)
	}
	return out
}

// Entries returns catalog entries for this package's mixins.
func Entries() []capture.Entry {
	return []capture.Entry{
		{
			Name:        MixinName,
			Description: "active, sub and load state of systemd units",
			Fields:      []string{FieldUnits},
			New:         func(o capture.Options) capture.Mixin { return Mixin(o.SystemdUnits...) },
		},
	}
}
