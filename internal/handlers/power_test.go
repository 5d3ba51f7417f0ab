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

//go:build !windows

package handlers

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/message"
)

// Shutdown/Reboot issue a real platform power action once hasPowerPrivilege
// is true; this test only exercises the safe, deterministic branch (an
// unprivileged caller) and never lets a real power action fire.
func TestShutdownDeniesWithoutPrivilege(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root: skipping to avoid triggering a real shutdown")
	}

	run := Shutdown(nil)
	rc := newRC(context.Background(), message.OpShutdown, 0)

	_, kind := run(rc, message.PowerRequest{DelaySeconds: 60})
	require.Equal(t, agenterr.PermissionDenied, kind)
}

func TestRebootDeniesWithoutPrivilege(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root: skipping to avoid triggering a real reboot")
	}

	run := Reboot(nil)
	rc := newRC(context.Background(), message.OpReboot, 0)

	_, kind := run(rc, message.PowerRequest{DelaySeconds: 60})
	require.Equal(t, agenterr.PermissionDenied, kind)
}
