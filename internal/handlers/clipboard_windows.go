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

//go:build windows

package handlers

import (
	"bytes"
	"os/exec"

	"github.com/nabbar/vagent/internal/dispatch"
)

// readClipboard/writeClipboard shell out to the Get-Clipboard/Set-Clipboard
// PowerShell cmdlets; a failing command is reported by the caller as
// Unavailable, while empty output from Get-Clipboard is returned as empty
// clipboard data.
func readClipboard(rc *dispatch.RequestContext) ([]byte, string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(rc.Context(), "powershell", "-NoProfile", "-Command", "Get-Clipboard -Raw")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, "", err
	}
	return out.Bytes(), "text/plain", nil
}

func writeClipboard(rc *dispatch.RequestContext, data []byte, mime string) error {
	cmd := exec.CommandContext(rc.Context(), "powershell", "-NoProfile", "-Command", "Set-Clipboard -Value $input")
	cmd.Stdin = bytes.NewReader(data)
	return cmd.Run()
}
