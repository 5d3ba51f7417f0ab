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

// Command agent is the guest-side binary: a single long-running process,
// no subcommands, exactly the flags spec.md §6 names. Grounded on the
// teacher's cobra/configure.go flag-binding idiom, generalized from a
// multi-command CLI wrapper down to this process's single root command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/agentversion"
	"github.com/nabbar/vagent/internal/config"
	"github.com/nabbar/vagent/internal/console"
	"github.com/nabbar/vagent/internal/device"
	"github.com/nabbar/vagent/internal/supervisor"
)

// Exit codes (spec.md §6 "Process boundary").
const (
	exitOK                 = 0
	exitInitFailure        = 1
	exitDevicePermanentErr = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		configPath  string
		logLevel    string
		devicePath  string
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:           "agent",
		Short:         "Guest agent transport and dispatch core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log_level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&devicePath, "device", "", "override device_path auto-detection")
	cmd.PersistentFlags().BoolVar(&showVersion, "version", false, "print the version and exit")
	cmd.SetArgs(args)

	exitCode := exitOK
	cmd.RunE = func(*cobra.Command, []string) error {
		if showVersion {
			fmt.Println(agentversion.Current().String())
			return nil
		}
		exitCode = runAgent(configPath, logLevel, devicePath)
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInitFailure
	}
	return exitCode
}

// runAgent performs the work of the one root command: load and validate
// configuration, probe the device a bounded number of times to distinguish
// a transient failure from a permanent permission error, then hand off to
// the Supervisor for the life of the process.
func runAgent(configPath, logLevelOverride, deviceOverride string) int {
	bootLog := agentlog.NewStderr(agentlog.InfoLevel)

	cfg, err := config.Load(configPath, config.Overrides{LogLevel: logLevelOverride, Device: deviceOverride}, func(key string) {
		bootLog.WithField("key", key).Warn("unknown configuration key")
	})
	if err != nil {
		bootLog.WithError(err).Error("configuration invalid")
		return exitInitFailure
	}

	if cfg.MemoryBound() > cfg.MemoryCeiling {
		bootLog.WithField("bound", cfg.MemoryBound()).WithField("ceiling", cfg.MemoryCeiling).
			Error("configured buffers exceed memory ceiling")
		return exitInitFailure
	}

	level, err := agentlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		bootLog.WithError(err).Error("invalid log level")
		return exitInitFailure
	}
	log := agentlog.NewStderr(level)

	console.Banner(os.Stdout, agentversion.Current(), cfg.DevicePath, cfg.LogLevel)

	if permanent := probeDevice(cfg, log); permanent {
		return exitDevicePermanentErr
	}

	sup := supervisor.New(cfg, log, prometheus.DefaultRegisterer)
	if err := sup.Run(context.Background()); err != nil {
		log.WithError(err).Warn("agent exited after forced shutdown")
	}
	return exitOK
}

// probeDevice attempts to open the device up to StartupOpenRetries times
// before handing control to the Session's forever-reconnect loop. It
// reports true only when every attempt failed with a permission error,
// which spec.md §6 calls out as the one startup condition that will never
// resolve itself ("device exists but cannot be opened and never will be").
func probeDevice(cfg config.Configuration, log agentlog.Logger) (permanent bool) {
	var lastErr error
	attempts := cfg.StartupOpenRetries
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		ep, err := device.Open(cfg.DevicePath)
		if err == nil {
			_ = ep.Close()
			return false
		}
		lastErr = err
		log.WithError(err).WithField("attempt", i+1).Warn("device open probe failed")
	}

	if os.IsPermission(lastErr) {
		log.WithError(lastErr).Error("device cannot be opened due to permissions, giving up")
		return true
	}
	return false
}
