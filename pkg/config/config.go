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

package config

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/NVIDIA/microbench/pkg/capture"
	"github.com/NVIDIA/microbench/pkg/capture/catalog"
	"github.com/NVIDIA/microbench/pkg/defaults"
	"github.com/NVIDIA/microbench/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "MICROBENCH"
	// FileName is the base name of the auto-discovered config file.
	FileName = ".microbench"
)

// Config holds the settings of the run command.
type Config struct {
	Output            string            `mapstructure:"output" yaml:"output"`
	Mixins            []string          `mapstructure:"mixins" yaml:"mixins"`
	Env               []string          `mapstructure:"env" yaml:"env"`
	Modules           []string          `mapstructure:"modules" yaml:"modules"`
	SystemdUnits      []string          `mapstructure:"systemd-units" yaml:"systemd-units"`
	GPUAttributes     []string          `mapstructure:"gpu-attributes" yaml:"gpu-attributes"`
	Kubeconfig        string            `mapstructure:"kubeconfig" yaml:"kubeconfig"`
	Static            map[string]string `mapstructure:"static" yaml:"static"`
	Telemetry         bool              `mapstructure:"telemetry" yaml:"telemetry"`
	TelemetryInterval time.Duration     `mapstructure:"telemetry-interval" yaml:"telemetry-interval"`
	LogLevel          string            `mapstructure:"log-level" yaml:"log-level"`
	MetricsFile       string            `mapstructure:"metrics-file" yaml:"metrics-file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Output:            "-",
		Mixins:            append([]string(nil), catalog.DefaultMixins...),
		TelemetryInterval: defaults.TelemetryInterval,
		LogLevel:          "info",
	}
}

// Load reads path, or the first .microbench.yaml found in the home and
// current directories when path is empty, then applies MICROBENCH_*
// environment overrides. A missing auto-discovered file is not an error.
func Load(path string) (*Config, error) {
	d := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output", d.Output)
	v.SetDefault("mixins", d.Mixins)
	v.SetDefault("env", []string{})
	v.SetDefault("modules", []string{})
	v.SetDefault("systemd-units", []string{})
	v.SetDefault("gpu-attributes", []string{})
	v.SetDefault("kubeconfig", "")
	v.SetDefault("telemetry", false)
	v.SetDefault("telemetry-interval", d.TelemetryInterval)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("metrics-file", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig,
				"failed to read config file", err, map[string]any{"path": path})
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to decode config", err)
	}
	cfg.Mixins = splitAll(cfg.Mixins)
	cfg.Env = splitAll(cfg.Env)
	cfg.Modules = splitAll(cfg.Modules)
	cfg.SystemdUnits = splitAll(cfg.SystemdUnits)
	cfg.GPUAttributes = splitAll(cfg.GPUAttributes)

	return cfg, nil
}

// splitAll flattens comma separated items and drops blanks.
func splitAll(items []string) []string {
	var out []string
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Validate checks the settings against the catalog of known mixins.
func (c *Config) Validate(cat *capture.Catalog) error {
	if c.TelemetryInterval < 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"telemetry interval must not be negative",
			map[string]any{"interval": c.TelemetryInterval.String()})
	}
	for _, name := range c.Mixins {
		if _, ok := cat.Lookup(name); !ok {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unknown capture mixin", map[string]any{"mixin": name})
		}
	}
	for k := range c.Static {
		if strings.TrimSpace(k) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "static field key is required")
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unknown log level", map[string]any{"level": c.LogLevel})
	}
	return nil
}

// CaptureOptions returns the mixin construction options.
func (c *Config) CaptureOptions() capture.Options {
	return capture.Options{
		Env:           c.Env,
		Modules:       c.Modules,
		SystemdUnits:  c.SystemdUnits,
		GPUAttributes: c.GPUAttributes,
		Kubeconfig:    c.Kubeconfig,
	}
}
