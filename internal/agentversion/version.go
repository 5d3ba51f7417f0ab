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

// Package agentversion carries the build-time identity of the agent binary,
// generalizing the teacher's version package (a fuller package/description/
// license/author record) down to the handful of fields this agent's hello
// handshake and --version flag actually need.
package agentversion

import "fmt"

// These are overridden at build time via -ldflags
// "-X github.com/nabbar/vagent/internal/agentversion.Release=... -X .../Commit=... -X .../BuildDate=...".
var (
	Release   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info is the immutable build identity handed to the hello handshake
// (spec.md §4.D "agent_version") and printed by --version.
type Info struct {
	Release   string
	Commit    string
	BuildDate string
}

// Current returns the Info populated from the package-level build-time
// variables.
func Current() Info {
	return Info{Release: Release, Commit: Commit, BuildDate: BuildDate}
}

// String renders a single-line identity string suitable for both the hello
// Event's agent_version field and --version output.
func (i Info) String() string {
	return fmt.Sprintf("vagent %s (commit %s, built %s)", i.Release, i.Commit, i.BuildDate)
}
