/*
 * MIT License
 *
 * Copyright (c) 2026 The vagent Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config reads the agent's Configuration once at startup, via
// spf13/viper, and exposes it as an immutable value - grounded on the
// teacher's config/components/log/config.go viper+cobra-flag-binding idiom,
// generalized from a sub-component of a larger app config to the agent's own
// top-level configuration document.
package config

import (
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Configuration holds every option recognized by the agent (spec.md §3).
// It is read once at startup and never mutated afterward; every component
// that needs it is handed this same immutable value (or a narrower view of
// it) by the Supervisor.
type Configuration struct {
	TelemetryInterval time.Duration `mapstructure:"telemetry_interval" validate:"gt=0"`
	MaxExecTimeout    time.Duration `mapstructure:"max_exec_timeout" validate:"gt=0"`
	MaxChunkSize      uint64        `mapstructure:"max_chunk_size" validate:"gt=0"`
	MaxFrameBytes     uint32        `mapstructure:"max_frame_bytes" validate:"gt=0"`
	LogLevel          string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	DevicePath        string        `mapstructure:"device_path"`

	ReconnectBackoffInitial time.Duration `mapstructure:"reconnect_backoff_initial" validate:"gt=0"`
	ReconnectBackoffMax     time.Duration `mapstructure:"reconnect_backoff_max" validate:"gtefield=ReconnectBackoffInitial"`

	// Ambient fields (SPEC_FULL.md §3 "Additional Configuration fields").
	MemoryCeiling      uint64        `mapstructure:"memory_ceiling" validate:"gt=0"`
	StartupOpenRetries int           `mapstructure:"startup_open_retries" validate:"gte=0"`
	ShutdownGrace      time.Duration `mapstructure:"shutdown_grace" validate:"gt=0"`

	// ExecOutputCap bounds captured stdout/stderr per execute request
	// (spec.md §4.F, default 1 MiB).
	ExecOutputCap uint64 `mapstructure:"exec_output_cap" validate:"gt=0"`

	// OutboundQueueCapacity bounds the Session's outbound frame queue
	// (spec.md §5, default 1024 frames).
	OutboundQueueCapacity int `mapstructure:"outbound_queue_capacity" validate:"gt=0"`

	// Per-operation concurrency caps (spec.md §4.E defaults).
	ExecuteConcurrency   int `mapstructure:"execute_concurrency" validate:"gt=0"`
	FileReadConcurrency  int `mapstructure:"file_read_concurrency" validate:"gt=0"`
	FileWriteConcurrency int `mapstructure:"file_write_concurrency" validate:"gt=0"`

	// NetworkApplyToolPath is the external tool network_apply hands its
	// opaque document to (netplan, nmcli wrapper, a platform script, ...).
	// Empty disables the operation's side effect while still acknowledging
	// the request, useful for guests where network reconfiguration is
	// deliberately unwired.
	NetworkApplyToolPath string `mapstructure:"network_apply_tool_path"`
}

// Defaults returns the Configuration populated with every spec.md §3 default.
func Defaults() Configuration {
	return Configuration{
		TelemetryInterval:       5 * time.Second,
		MaxExecTimeout:          300 * time.Second,
		MaxChunkSize:            64 * 1024,
		MaxFrameBytes:           1024 * 1024,
		LogLevel:                "info",
		DevicePath:              "",
		ReconnectBackoffInitial: 500 * time.Millisecond,
		ReconnectBackoffMax:     30 * time.Second,
		MemoryCeiling:           256 * 1024 * 1024,
		StartupOpenRetries:      5,
		ShutdownGrace:           10 * time.Second,
		ExecOutputCap:           1024 * 1024,
		OutboundQueueCapacity:   1024,
		ExecuteConcurrency:      16,
		FileReadConcurrency:     8,
		FileWriteConcurrency:    8,
	}
}

func bindDefaults(v *viper.Viper, d Configuration) {
	v.SetDefault("telemetry_interval", d.TelemetryInterval)
	v.SetDefault("max_exec_timeout", d.MaxExecTimeout)
	v.SetDefault("max_chunk_size", d.MaxChunkSize)
	v.SetDefault("max_frame_bytes", d.MaxFrameBytes)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("device_path", d.DevicePath)
	v.SetDefault("reconnect_backoff_initial", d.ReconnectBackoffInitial)
	v.SetDefault("reconnect_backoff_max", d.ReconnectBackoffMax)
	v.SetDefault("memory_ceiling", d.MemoryCeiling)
	v.SetDefault("startup_open_retries", d.StartupOpenRetries)
	v.SetDefault("shutdown_grace", d.ShutdownGrace)
	v.SetDefault("exec_output_cap", d.ExecOutputCap)
	v.SetDefault("outbound_queue_capacity", d.OutboundQueueCapacity)
	v.SetDefault("execute_concurrency", d.ExecuteConcurrency)
	v.SetDefault("file_read_concurrency", d.FileReadConcurrency)
	v.SetDefault("file_write_concurrency", d.FileWriteConcurrency)
	v.SetDefault("network_apply_tool_path", d.NetworkApplyToolPath)
}

// Overrides carries the CLI-flag overrides cmd/agent accepts (§6).
type Overrides struct {
	LogLevel string
	Device   string
}

// Load reads the configuration file at path (if non-empty; config_path may be
// unset, in which case only defaults and overrides apply) and merges in CLI
// overrides. Unknown keys are logged at warn, never fatal (spec.md §6).
func Load(path string, ov Overrides, warn func(key string)) (Configuration, error) {
	v := viper.New()
	d := Defaults()
	bindDefaults(v, d)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("decoding configuration: %w", err)
	}

	if ov.LogLevel != "" {
		cfg.LogLevel = ov.LogLevel
	}
	if ov.Device != "" {
		cfg.DevicePath = ov.Device
	}

	if cfg.MaxChunkSize > uint64(cfg.MaxFrameBytes) {
		return Configuration{}, fmt.Errorf("max_chunk_size (%d) must not exceed max_frame_bytes (%d)", cfg.MaxChunkSize, cfg.MaxFrameBytes)
	}

	if warn != nil {
		reportUnknownKeys(v, warn)
	}

	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}

func reportUnknownKeys(v *viper.Viper, warn func(key string)) {
	known := map[string]struct{}{
		"telemetry_interval": {}, "max_exec_timeout": {}, "max_chunk_size": {},
		"max_frame_bytes": {}, "log_level": {}, "device_path": {},
		"reconnect_backoff_initial": {}, "reconnect_backoff_max": {},
		"memory_ceiling": {}, "startup_open_retries": {}, "shutdown_grace": {},
		"exec_output_cap": {}, "outbound_queue_capacity": {},
		"execute_concurrency": {}, "file_read_concurrency": {}, "file_write_concurrency": {},
		"network_apply_tool_path": {},
	}
	for _, k := range v.AllKeys() {
		root := strings.SplitN(k, ".", 2)[0]
		if _, ok := known[root]; !ok {
			warn(k)
		}
	}
}

var validate = validator.New()

// Validate checks structural constraints (positivity, enum membership,
// backoff ordering) beyond what viper decoding guarantees. Grounded on the
// teacher's logger/config.Options.Validate idiom of running go-playground's
// validator over a tagged struct.
func (c Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// MemoryBound computes the worst-case buffered-memory bound the spec
// requires implementations to pre-size and enforce at startup (spec.md §5).
func (c Configuration) MemoryBound() uint64 {
	outbound := uint64(c.MaxFrameBytes) * uint64(c.OutboundQueueCapacity)
	inbound := c.ExecOutputCap * 2 * uint64(c.ExecuteConcurrency)
	return outbound + inbound
}
