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
	"bytes"
	"os"
	"os/exec"

	"github.com/nabbar/vagent/internal/dispatch"
)

// readClipboard/writeClipboard shell out to xclip, the common X11 clipboard
// tool; a guest with no X session (the common headless case) has no
// DISPLAY set, so both return errNoDesktopSession without running xclip,
// which the caller reports as Unavailable.
func readClipboard(rc *dispatch.RequestContext) ([]byte, string, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, "", errNoDesktopSession
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(rc.Context(), "xclip", "-selection", "clipboard", "-o")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, "", err
	}
	return out.Bytes(), "text/plain", nil
}

func writeClipboard(rc *dispatch.RequestContext, data []byte, mime string) error {
	if os.Getenv("DISPLAY") == "" {
		return errNoDesktopSession
	}
	cmd := exec.CommandContext(rc.Context(), "xclip", "-selection", "clipboard")
	cmd.Stdin = bytes.NewReader(data)
	return cmd.Run()
}
