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

package device

import (
	"fmt"
	"os"
	"path/filepath"
)

// unixEndpoint opens a virtio-serial character device such as
// /dev/virtio-ports/org.qemu.guest_agent.0.
type unixEndpoint struct {
	base
	f *os.File
}

// Open opens the device at path, or - when path is empty - the first
// candidate directory in DefaultUnixCandidates containing a file named
// WellKnownPortName.
func Open(path string) (Endpoint, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(resolved, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, resolved, err)
	}

	return &unixEndpoint{base: newBase(), f: f}, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, dir := range DefaultUnixCandidates {
		candidate := filepath.Join(dir, WellKnownPortName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no virtio-serial port named %q found under %v", ErrUnavailable, WellKnownPortName, DefaultUnixCandidates)
}

func (e *unixEndpoint) Read(p []byte) (int, error) {
	n, err := e.f.Read(p)
	if err != nil {
		e.MarkDisconnected()
	}
	return n, err
}

func (e *unixEndpoint) Write(p []byte) (int, error) {
	n, err := e.f.Write(p)
	if err != nil {
		e.MarkDisconnected()
	}
	return n, err
}

func (e *unixEndpoint) Close() error {
	e.MarkDisconnected()
	return e.f.Close()
}
