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
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nabbar/vagent/internal/dispatch"
)

// resizeDisplay shells out to xrandr against the first connected output it
// finds; a headless guest has no DISPLAY and the call reports Unsupported
// before ever touching xrandr.
func resizeDisplay(rc *dispatch.RequestContext, width, height, scale uint32) error {
	if os.Getenv("DISPLAY") == "" {
		return errDisplayUnsupported
	}

	output, err := firstConnectedOutput(rc)
	if err != nil {
		return err
	}

	mode := fmt.Sprintf("%dx%d", width, height)
	cmd := exec.CommandContext(rc.Context(), "xrandr", "--output", output, "--mode", mode)
	return cmd.Run()
}

func firstConnectedOutput(rc *dispatch.RequestContext) (string, error) {
	out, err := exec.CommandContext(rc.Context(), "xrandr", "--query").Output()
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if idx := strings.Index(line, " connected"); idx >= 0 {
			return line[:idx], nil
		}
	}
	return "", errDisplayUnsupported
}
