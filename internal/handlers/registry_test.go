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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/config"
	"github.com/nabbar/vagent/internal/message"
)

func TestRegistrationsCoversEveryOperation(t *testing.T) {
	regs := Registrations(config.Defaults(), nil)

	want := []message.Operation{
		message.OpExecute, message.OpFileRead, message.OpFileWrite,
		message.OpShutdown, message.OpReboot, message.OpPasswordReset,
		message.OpNetworkApply, message.OpFSFreeze, message.OpFSThaw,
		message.OpClipboardGet, message.OpClipboardSet, message.OpDisplayResize,
	}

	seen := make(map[message.Operation]bool, len(regs))
	for _, r := range regs {
		require.NotNil(t, r.Decode, "operation %s missing Decode", r.Operation)
		require.NotNil(t, r.Run, "operation %s missing Run", r.Operation)
		seen[r.Operation] = true
	}

	for _, op := range want {
		require.True(t, seen[op], "missing registration for %s", op)
	}
}
