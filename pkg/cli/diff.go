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
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/NVIDIA/microbench/pkg/serializer"
)

// defaultIgnored are fields that differ on every call.
var defaultIgnored = []string{
	record.FieldStartTime,
	record.FieldFinishTime,
	record.FieldTelemetry,
	"run_id",
	"call_id",
	"child_*",
	"process_*",
}

// diffReport is the output of the diff command.
type diffReport []record.Difference

func (d diffReport) Header() []string {
	return []string{"FIELD", "CHANGE", "A", "B"}
}

func (d diffReport) Rows() [][]string {
	rows := make([][]string, len(d))
	for i, diff := range d {
		rows[i] = []string{diff.Field, string(diff.Kind), cell(diff.A), cell(diff.B)}
	}
	return rows
}

func cell(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%v", v)
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare the fields of two benchmark records",
		ArgsUsage: "FILE_A FILE_B",
		Description: `Compare one record from FILE_A with one record from FILE_B field by field.
Both files hold newline-delimited JSON records. Timing, identifier and
telemetry fields are ignored unless --all is set.

# Examples

Compare the last records of two runs:
  microbench diff baseline.jsonl candidate.jsonl

Compare only environment variables and package versions:
  microbench diff a.jsonl b.jsonl --only 'env_*' --only package_versions`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "line-a",
				Usage: "record index in FILE_A (negative counts from the end)",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "line-b",
				Usage: "record index in FILE_B (negative counts from the end)",
				Value: -1,
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "field pattern to ignore, * matches any run of characters (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "only",
				Usage: "field pattern to compare exclusively (can be repeated)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "do not ignore timing, identifier and telemetry fields",
			},
			&cli.BoolFlag{
				Name:  "fail-on-diff",
				Usage: "exit with status 1 when the records differ",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected exactly two files, got %d", cmd.Args().Len())
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			a, err := loadRecord(cmd.Args().Get(0), cmd.Int("line-a"))
			if err != nil {
				return err
			}
			b, err := loadRecord(cmd.Args().Get(1), cmd.Int("line-b"))
			if err != nil {
				return err
			}

			ignored := cmd.StringSlice("ignore")
			if !cmd.Bool("all") {
				ignored = append(ignored, defaultIgnored...)
			}
			a, b = record.FilterOut(a, ignored), record.FilterOut(b, ignored)
			if only := cmd.StringSlice("only"); len(only) > 0 {
				a, b = record.FilterIn(a, only), record.FilterIn(b, only)
			}

			report := diffReport(record.Compare(a, b))

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				_ = w.Close()
			}()
			if err := w.Serialize(ctx, report); err != nil {
				return err
			}

			if cmd.Bool("fail-on-diff") && len(report) > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// loadRecord reads the record at index from a JSON lines file.
func loadRecord(path string, index int) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := record.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	i := index
	if i < 0 {
		i += len(recs)
	}
	if i < 0 || i >= len(recs) {
		return nil, fmt.Errorf("%s has %d records, no record at index %d", path, len(recs), index)
	}
	return recs[i], nil
}
