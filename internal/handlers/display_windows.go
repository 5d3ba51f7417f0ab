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
	"fmt"
	"os/exec"

	"github.com/nabbar/vagent/internal/dispatch"
)

// resizeDisplay drives the Windows Display Settings via the
// Set-DisplayResolution cmdlet from the DisplaySettings PowerShell module;
// scale is not applied. Any failure of the cmdlet, including no attached
// display session, is reported as Unsupported.
func resizeDisplay(rc *dispatch.RequestContext, width, height, scale uint32) error {
	script := fmt.Sprintf("Set-DisplayResolution -Width %d -Height %d", width, height)
	cmd := exec.CommandContext(rc.Context(), "powershell", "-NoProfile", "-Command", script)
	if err := cmd.Run(); err != nil {
		return errDisplayUnsupported
	}
	return nil
}
