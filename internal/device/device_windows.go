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

package device

import (
	"fmt"
	"os"
)

// DefaultWindowsDevicePath is the named device the QEMU Windows guest driver
// exposes for the virtio-serial port bound to WellKnownPortName.
const DefaultWindowsDevicePath = `\\.\Global\` + WellKnownPortName

// windowsEndpoint opens the named virtio-serial device handle presented to
// Windows-like guests (spec.md §4.A "on Windows-like guests, a named device
// handle").
type windowsEndpoint struct {
	base
	f *os.File
}

// Open opens the named device handle at path, or the well-known default
// path when path is empty.
func Open(path string) (Endpoint, error) {
	if path == "" {
		path = DefaultWindowsDevicePath
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	return &windowsEndpoint{base: newBase(), f: f}, nil
}

func (e *windowsEndpoint) Read(p []byte) (int, error) {
	n, err := e.f.Read(p)
	if err != nil {
		e.MarkDisconnected()
	}
	return n, err
}

func (e *windowsEndpoint) Write(p []byte) (int, error) {
	n, err := e.f.Write(p)
	if err != nil {
		e.MarkDisconnected()
	}
	return n, err
}

func (e *windowsEndpoint) Close() error {
	e.MarkDisconnected()
	return e.f.Close()
}
