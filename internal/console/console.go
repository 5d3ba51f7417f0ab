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

// Package console prints the agent's startup banner, generalizing the
// teacher's console/color.go colorType.Println idiom from a package-level
// color registry down to the one banner this binary ever prints.
package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/nabbar/vagent/internal/agentversion"
)

var banner = color.New(color.FgCyan, color.Bold)

// Banner writes the startup identity line to w: release, device path in
// use, and the configured log level, matching the teacher's habit of a
// single colored identity line on process start.
func Banner(w io.Writer, info agentversion.Info, devicePath, logLevel string) {
	if devicePath == "" {
		devicePath = "(auto-detect)"
	}
	_, _ = banner.Fprintf(w, "%s\n", info.String())
	_, _ = fmt.Fprintf(w, "  device=%s log_level=%s\n", devicePath, logLevel)
}
