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

// Package supervisor wires Device Endpoint -> Session -> Dispatcher ->
// Telemetry Producer together and owns process-lifetime signal handling
// (spec.md §4.H), generalizing the teacher's runner/startStop start/stop
// contract (test-only in the pack) and httpserver/run's signal.Notify
// wait-loop idiom from a single HTTP server to the whole agent process.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/agentversion"
	"github.com/nabbar/vagent/internal/config"
	"github.com/nabbar/vagent/internal/device"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/handlers"
	"github.com/nabbar/vagent/internal/message"
	"github.com/nabbar/vagent/internal/session"
	"github.com/nabbar/vagent/internal/telemetry"
)

// Supervisor owns the top-level component graph and the process's exit
// sequence. It is constructed once per run of cmd/agent.
type Supervisor struct {
	cfg config.Configuration
	log agentlog.Logger

	sess  *session.Session
	disp  *dispatch.Dispatcher
	telem *telemetry.Producer

	wg sync.WaitGroup
}

// New builds every component but starts nothing. Construction never fails:
// misconfiguration is caught by Configuration.Validate before this is
// called (cmd/agent's responsibility, spec.md §6 exit code 1).
func New(cfg config.Configuration, log agentlog.Logger, reg prometheus.Registerer) *Supervisor {
	s := &Supervisor{cfg: cfg, log: log}

	s.disp = dispatch.New(log, nil, cfg.MaxExecTimeout, handlers.Registrations(cfg, log))

	hello := func() message.HelloEvent {
		return message.HelloEvent{
			WireVersion:  message.Version,
			AgentVersion: agentversion.Current().String(),
			Capabilities: operationNames(),
			OSIdentity:   osIdentity(),
		}
	}

	s.sess = session.New(cfg, log, device.Open, s.disp, hello)
	s.disp.SetSender(s.sess)

	s.telem = telemetry.NewProducer(log, telemetry.NewGopsutilSampler(), s.sess, cfg.TelemetryInterval, reg)

	return s
}

// Run starts the Session and Telemetry Producer, then blocks until ctx is
// cancelled or a termination signal arrives, then drains for at most
// shutdown_grace before forcing an exit (spec.md §4.H).
func (s *Supervisor) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		defer s.recoverLoop("session")
		s.sess.Start(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		defer s.recoverLoop("telemetry")
		s.telem.Run(runCtx)
	}()

	select {
	case <-runCtx.Done():
	case sig := <-quit:
		if s.log != nil {
			s.log.WithField("signal", sig.String()).Info("shutdown signal received")
		}
	}

	cancel()
	s.sess.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-graceTimer(s.cfg.ShutdownGrace):
		if s.log != nil {
			s.log.Warn("shutdown grace exceeded, forcing exit")
		}
		return fmt.Errorf("supervisor: shutdown grace exceeded")
	case sig := <-quit:
		if s.log != nil {
			s.log.WithField("signal", sig.String()).Warn("second signal received, forcing exit")
		}
		return fmt.Errorf("supervisor: forced exit on repeated signal %s", sig)
	}
}

// recoverLoop converts a panic in any top-level component goroutine into a
// log line instead of a process crash (spec.md §4.H "never terminates the
// process").
func (s *Supervisor) recoverLoop(component string) {
	if r := recover(); r != nil {
		if s.log != nil {
			s.log.WithFields(agentlog.Fields{
				"component": component,
				"panic":     fmt.Sprintf("%v", r),
				"stack":     string(debug.Stack()),
			}).Error("component panicked")
		}
	}
}

func graceTimer(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func osIdentity() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s/%s %s", runtime.GOOS, runtime.GOARCH, host)
}

func operationNames() []string {
	return []string{
		string(message.OpExecute), string(message.OpFileRead), string(message.OpFileWrite),
		string(message.OpShutdown), string(message.OpReboot), string(message.OpPasswordReset),
		string(message.OpNetworkApply), string(message.OpFSFreeze), string(message.OpFSThaw),
		string(message.OpClipboardGet), string(message.OpClipboardSet), string(message.OpDisplayResize),
	}
}
