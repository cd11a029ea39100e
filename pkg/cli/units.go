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

package cli

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/microbench/pkg/capture/catalog"
	"github.com/NVIDIA/microbench/pkg/serializer"
)

// unitInfo describes one catalog entry.
type unitInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Fields      []string `json:"fields" yaml:"fields"`
	Default     bool     `json:"default" yaml:"default"`
}

type unitList []unitInfo

func (u unitList) Header() []string {
	return []string{"NAME", "DEFAULT", "FIELDS", "DESCRIPTION"}
}

func (u unitList) Rows() [][]string {
	rows := make([][]string, len(u))
	for i, info := range u {
		def := ""
		if info.Default {
			def = "yes"
		}
		rows[i] = []string{info.Name, def, strings.Join(info.Fields, ","), info.Description}
	}
	return rows
}

func unitsCmd() *cli.Command {
	return &cli.Command{
		Name:  "units",
		Usage: "List capture mixins available to 'run --mixin'",
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			defaults := make(map[string]bool, len(catalog.DefaultMixins))
			for _, n := range catalog.DefaultMixins {
				defaults[n] = true
			}

			var list unitList
			for _, e := range catalog.Default().Entries() {
				list = append(list, unitInfo{
					Name:        e.Name,
					Description: e.Description,
					Fields:      e.Fields,
					Default:     defaults[e.Name],
				})
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				_ = w.Close()
			}()
			return w.Serialize(ctx, list)
		},
	}
}
