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

// Package handlers implements the privileged operations the Dispatcher
// routes Requests to (spec.md §4.F): execute, file_read/file_write,
// shutdown/reboot, password_reset, network_apply, fs_freeze/fs_thaw,
// clipboard_get/clipboard_set, display_resize. Each is grounded on the
// teacher's `shell/command` (process execution) and `file` (path-bounded
// I/O) packages, generalized from the teacher's own CLI-tool use case to
// this protocol's Request/Response/Event shapes.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"time"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// execGrace is the wait between the soft termination signal and the hard
// kill of the whole process group (spec.md §4.F execute state machine).
const execGrace = 5 * time.Second

const heartbeatInterval = time.Second

// Execute returns the execute operation's RunFunc. outputCap bounds captured
// stdout/stderr per spec.md §4.F ("O(max_chunk_size + max_exec_output_cap)").
func Execute(log agentlog.Logger, outputCap uint64) dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.ExecuteRequest)

		cmd := exec.Command(req.Command, req.Argv...)
		cmd.Dir = req.Cwd
		if len(req.Env) > 0 {
			cmd.Env = mergedEnv(req.Env)
		}
		if len(req.Stdin) > 0 {
			cmd.Stdin = io.NopCloser(bytes.NewReader(req.Stdin))
		}

		if err := applyRunAsUser(cmd, req.RunAsUser); err != nil {
			if log != nil {
				log.WithError(err).Warn("execute: run_as_user lookup failed")
			}
			return nil, agenterr.PermissionDenied
		}
		setProcessGroup(cmd)

		exceeded := make(chan struct{}, 1)
		signalExceeded := func() {
			select {
			case exceeded <- struct{}{}:
			default:
			}
		}
		stdout := newCapBuffer(outputCap, signalExceeded)
		stderr := newCapBuffer(outputCap, signalExceeded)
		cmd.Stdout = stdout
		cmd.Stderr = stderr

		start := time.Now()
		if err := cmd.Start(); err != nil {
			return nil, classifyStartError(err)
		}

		waitDone := make(chan error, 1)
		go func() { waitDone <- cmd.Wait() }()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case err := <-waitDone:
				if stdout.Exceeded() || stderr.Exceeded() {
					return nil, agenterr.ResourceExhausted
				}
				resp := message.ExecuteResponse{
					ExitCode: exitCodeOf(err),
					Stdout:   stdout.Bytes(),
					Stderr:   stderr.Bytes(),
					WallTime: time.Since(start),
				}
				return resp.Marshal(), agenterr.Ok

			case <-exceeded:
				killProcessGroupHard(cmd)
				<-waitDone
				return nil, agenterr.ResourceExhausted

			case <-heartbeat.C:
				ev := message.ExecuteProgress{BytesSoFar: uint64(stdout.Len() + stderr.Len())}
				_ = rc.Emit(message.OpProgress, ev.Marshal())

			case <-rc.Context().Done():
				graceKill(cmd, waitDone)
				if errors.Is(rc.Context().Err(), context.DeadlineExceeded) {
					return nil, agenterr.Timeout
				}
				return nil, agenterr.Cancelled
			}
		}
	}
}

// graceKill implements the execute state machine's Running -> TimedOut
// transition: close stdin, send a soft termination signal to the whole
// process group, wait execGrace, then a hard kill (spec.md §4.F).
func graceKill(cmd *exec.Cmd, waitDone <-chan error) {
	if closer, ok := cmd.Stdin.(io.Closer); ok && closer != nil {
		_ = closer.Close()
	}
	killProcessGroupSoft(cmd)

	select {
	case <-waitDone:
		return
	case <-time.After(execGrace):
	}

	killProcessGroupHard(cmd)
	<-waitDone
}

func classifyStartError(err error) agenterr.Kind {
	if errors.Is(err, exec.ErrNotFound) || os.IsNotExist(err) {
		return agenterr.NotFound
	}
	if os.IsPermission(err) {
		return agenterr.PermissionDenied
	}
	return agenterr.Internal
}

func exitCodeOf(err error) int32 {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return int32(exitErr.ExitCode())
	}
	return -1
}

func mergedEnv(additive map[string]string) []string {
	env := os.Environ()
	for k, v := range additive {
		env = append(env, k+"="+v)
	}
	return env
}

// applyRunAsUser resolves a Unix username into process credentials. An empty
// username is a no-op and always succeeds; on Windows a non-empty username
// always fails, because setCredential is not implemented there
// (spec.md §4.F "run-as-user (Unix-only)").
func applyRunAsUser(cmd *exec.Cmd, username string) error {
	if username == "" {
		return nil
	}
	u, err := user.Lookup(username)
	if err != nil {
		return err
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return err
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return err
	}
	return setCredential(cmd, uint32(uid), uint32(gid))
}
