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

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/config"
)

func testConfig() config.Configuration {
	cfg := config.Defaults()
	cfg.DevicePath = "/nonexistent/vagent-test-device"
	cfg.ReconnectBackoffInitial = 5 * time.Millisecond
	cfg.ReconnectBackoffMax = 20 * time.Millisecond
	cfg.TelemetryInterval = 10 * time.Millisecond
	cfg.ShutdownGrace = 200 * time.Millisecond
	return cfg
}

func TestSupervisorRunReturnsOnContextCancel(t *testing.T) {
	s := New(testConfig(), agentlog.NewStderr(agentlog.ErrorLevel), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.NoError(t, err)
}

func TestSupervisorSurvivesRepeatedDeviceOpenFailureWithoutPanicking(t *testing.T) {
	s := New(testConfig(), agentlog.NewStderr(agentlog.ErrorLevel), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
}
