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

package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

func newRC(ctx context.Context, op message.Operation, outputCap uint64) *dispatch.RequestContext {
	return dispatch.NewRequestContext(ctx, 1, op, time.Now().Add(time.Minute), outputCap, nil)
}

func TestExecuteRunsAndCapturesOutput(t *testing.T) {
	run := Execute(nil, 1024)
	rc := newRC(context.Background(), message.OpExecute, 1024)

	req := message.ExecuteRequest{Command: "echo", Argv: []string{"hello"}}
	payload, kind := run(rc, req)
	require.Equal(t, agenterr.Ok, kind)

	resp, err := message.UnmarshalExecuteResponse(payload)
	require.NoError(t, err)
	require.Equal(t, int32(0), resp.ExitCode)
	require.Contains(t, string(resp.Stdout), "hello")
}

func TestExecuteUnknownCommandIsNotFound(t *testing.T) {
	run := Execute(nil, 1024)
	rc := newRC(context.Background(), message.OpExecute, 1024)

	req := message.ExecuteRequest{Command: "vagent-definitely-not-a-real-binary"}
	_, kind := run(rc, req)
	require.Equal(t, agenterr.NotFound, kind)
}

func TestExecuteNonZeroExitIsReportedNotAnError(t *testing.T) {
	run := Execute(nil, 1024)
	rc := newRC(context.Background(), message.OpExecute, 1024)

	req := message.ExecuteRequest{Command: "sh", Argv: []string{"-c", "exit 7"}}
	payload, kind := run(rc, req)
	require.Equal(t, agenterr.Ok, kind)

	resp, err := message.UnmarshalExecuteResponse(payload)
	require.NoError(t, err)
	require.Equal(t, int32(7), resp.ExitCode)
}

func TestExecuteCancellationReportsCancelled(t *testing.T) {
	run := Execute(nil, 1024)
	ctx, cancel := context.WithCancel(context.Background())
	rc := dispatch.NewRequestContext(ctx, 1, message.OpExecute, time.Now().Add(time.Minute), 1024, nil)

	done := make(chan agenterr.Kind, 1)
	go func() {
		req := message.ExecuteRequest{Command: "sleep", Argv: []string{"5"}}
		_, kind := run(rc, req)
		done <- kind
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case kind := <-done:
		require.Equal(t, agenterr.Cancelled, kind)
	case <-time.After(10 * time.Second):
		t.Fatal("execute did not observe cancellation in time")
	}
}

func TestExecuteDeadlineExceededReportsTimeout(t *testing.T) {
	run := Execute(nil, 1024)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	rc := dispatch.NewRequestContext(ctx, 1, message.OpExecute, time.Now().Add(50*time.Millisecond), 1024, nil)

	req := message.ExecuteRequest{Command: "sleep", Argv: []string{"5"}}
	_, kind := run(rc, req)
	require.Equal(t, agenterr.Timeout, kind)
}

func TestExecuteResourceExhaustedWhenOutputExceedsCap(t *testing.T) {
	run := Execute(nil, 8)
	rc := newRC(context.Background(), message.OpExecute, 8)

	req := message.ExecuteRequest{Command: "sh", Argv: []string{"-c", "head -c 4096 /dev/zero | tr '\\0' 'a'"}}
	_, kind := run(rc, req)
	require.Equal(t, agenterr.ResourceExhausted, kind)
}
