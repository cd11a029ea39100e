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
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/microbench/pkg/bench"
	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/capture/catalog"
	"github.com/NVIDIA/microbench/pkg/config"
	"github.com/NVIDIA/microbench/pkg/record"
	"github.com/NVIDIA/microbench/pkg/sink"
	"github.com/NVIDIA/microbench/pkg/telemetry"
)

// Fields written by the child-process unit.
const (
	fieldChildCPUUser   = "child_cpu_user"
	fieldChildCPUSystem = "child_cpu_system"
	fieldChildPID       = "child_pid"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a command and record one benchmark record for it",
		ArgsUsage: "-- COMMAND [ARGS...]",
		Description: `Run COMMAND as the benchmarked function. Its argv is recorded as args,
its exit code as return_value, and the selected capture mixins add
environment and resource fields. microbench exits with COMMAND's exit code.

# Examples

Record a training step to a local file with GPU attributes:
  microbench run -o results.jsonl --mixin run-id --mixin nvidia-smi -- python train.py

Push to Redis with process tree telemetry every 5 seconds:
  microbench run -o 'redis://redis:6379/0?key=sweep' --telemetry --telemetry-interval 5s -- ./bench

Attach static fields:
  microbench run --field experiment=fp8 --field batch=64 -- ./bench`,
		Flags: []cli.Flag{
			outputFlag,
			&cli.StringFlag{
				Name:  "name",
				Usage: "function_name of the record (default: base name of COMMAND)",
			},
			&cli.StringSliceFlag{
				Name:    "mixin",
				Aliases: []string{"m"},
				Usage:   "capture mixin to apply, in order (see 'microbench units'; can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "field",
				Usage: "static field (format: key=value, can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "env",
				Usage: "environment variable recorded by the env mixin (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "module",
				Usage: "module path pattern recorded by the build-info mixin (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "systemd-unit",
				Usage: "systemd unit queried by the systemd mixin (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "gpu-attribute",
				Usage: "nvidia-smi attribute queried by the nvidia-smi mixin (can be repeated)",
			},
			&cli.BoolFlag{
				Name:  "telemetry",
				Usage: "sample resource usage of the process tree while COMMAND runs",
			},
			&cli.DurationFlag{
				Name:  "telemetry-interval",
				Usage: "time between telemetry samples",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write Prometheus metrics in text format to this file on exit",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			argv := cmd.Args().Slice()
			if len(argv) == 0 {
				return fmt.Errorf("command is required: microbench run [flags] -- COMMAND [ARGS...]")
			}

			cfg := configFrom(ctx)
			if err := applyRunFlags(cfg, cmd); err != nil {
				return err
			}

			fnName := cmd.String("name")
			if fnName == "" {
				fnName = filepath.Base(argv[0])
			}

			code, err := runCommand(ctx, cfg, fnName, argv)
			if cfg.MetricsFile != "" {
				if werr := prometheus.WriteToTextfile(cfg.MetricsFile, prometheus.DefaultGatherer); werr != nil {
					slog.Error("failed to write metrics file", "path", cfg.MetricsFile, "error", werr)
				}
			}
			if err != nil {
				return err
			}
			if code < 0 {
				code = 1
			}
			if code != 0 {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

// applyRunFlags overrides loaded settings with explicitly set flags.
func applyRunFlags(cfg *config.Config, cmd *cli.Command) error {
	if cmd.IsSet("output") {
		cfg.Output = cmd.String("output")
	}
	if cmd.IsSet("mixin") {
		cfg.Mixins = cmd.StringSlice("mixin")
	}
	cfg.Env = append(cfg.Env, cmd.StringSlice("env")...)
	cfg.Modules = append(cfg.Modules, cmd.StringSlice("module")...)
	cfg.SystemdUnits = append(cfg.SystemdUnits, cmd.StringSlice("systemd-unit")...)
	cfg.GPUAttributes = append(cfg.GPUAttributes, cmd.StringSlice("gpu-attribute")...)
	if cmd.IsSet("kubeconfig") {
		cfg.Kubeconfig = cmd.String("kubeconfig")
	}
	if cmd.IsSet("telemetry") {
		cfg.Telemetry = cmd.Bool("telemetry")
	}
	if cmd.IsSet("telemetry-interval") {
		cfg.TelemetryInterval = cmd.Duration("telemetry-interval")
	}
	if cmd.IsSet("metrics-file") {
		cfg.MetricsFile = cmd.String("metrics-file")
	}

	fields, err := parseFields(cmd.StringSlice("field"))
	if err != nil {
		return err
	}
	if len(fields) > 0 && cfg.Static == nil {
		cfg.Static = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		cfg.Static[k] = v
	}

	return cfg.Validate(catalog.Default())
}

// runCommand records one execution of argv and returns its exit code.
func runCommand(ctx context.Context, cfg *config.Config, fnName string, argv []string) (int, error) {
	mixins, err := catalog.Default().Build(cfg.Mixins, cfg.CaptureOptions())
	if err != nil {
		return 0, err
	}

	child := &childProcess{}
	mixins = append(mixins, capture.FunctionCall(), capture.ReturnValue(), child.mixin())

	out, err := sink.Open(cfg.Output)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := sink.Close(out); cerr != nil {
			slog.Warn("failed to close sink", "error", cerr)
		}
	}()

	var sinkErr error
	opts := []bench.Option{
		bench.WithSink(out),
		bench.WithMixins(mixins...),
		bench.WithLogger(slog.Default()),
		bench.WithErrorHandler(func(err error) { sinkErr = err }),
	}
	keys := make([]string, 0, len(cfg.Static))
	for k := range cfg.Static {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, bench.WithStatic(k, cfg.Static[k]))
	}
	if cfg.Telemetry {
		opts = append(opts, bench.WithTelemetry(telemetry.ProcessTreeSampler(), cfg.TelemetryInterval))
	}

	b, err := bench.New(opts...)
	if err != nil {
		return 0, err
	}

	args := make([]any, len(argv))
	for i, a := range argv {
		args[i] = a
	}

	res, err := b.Call(ctx, fnName, args, child.run(argv))
	if err != nil {
		return 0, err
	}
	code, _ := res.(int)
	if code == 0 && sinkErr != nil {
		return 0, sinkErr
	}
	return code, nil
}

// childProcess runs the benchmarked command and reports its resource usage.
type childProcess struct {
	state *os.ProcessState
}

func (c *childProcess) run(argv []string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		err := cmd.Run()
		c.state = cmd.ProcessState

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			return 0, nil
		case stderrors.As(err, &exitErr):
			return exitErr.ExitCode(), nil
		default:
			return nil, fmt.Errorf("failed to run %s: %w", argv[0], err)
		}
	}
}

func (c *childProcess) mixin() capture.Mixin {
	return capture.NewMixin("child-process",
		capture.Func("child-process", capture.PostCall, func(_ context.Context, rec *record.Record, _ *capture.Invocation) {
			if c.state == nil {
				rec.Set(fieldChildPID, nil)
				rec.Set(fieldChildCPUUser, nil)
				rec.Set(fieldChildCPUSystem, nil)
				return
			}
			rec.Set(fieldChildPID, c.state.Pid())
			rec.Set(fieldChildCPUUser, c.state.UserTime())
			rec.Set(fieldChildCPUSystem, c.state.SystemTime())
		}, fieldChildPID, fieldChildCPUUser, fieldChildCPUSystem),
	)
}
