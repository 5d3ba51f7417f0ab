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

// Package device opens, reads from, and writes to the paravirtualized
// serial channel presented to the guest OS (spec.md §4.A). It generalizes
// the teacher's socket package (a network transport abstraction, present
// in the pack as tests only - socket/server/tcp, socket/server/udp) from a
// network socket down to a single local character device / named pipe, and
// borrows the Unix/Windows build-tag split already used by the teacher's
// logger/hooksyslog (sys_syslog.go vs sys_winlog.go).
package device

import (
	"errors"
	"io"
	"sync"
)

// ErrUnavailable is returned by Open when the device cannot be opened at
// all (spec.md §4.A "Fails with Unavailable when the device cannot be
// opened").
var ErrUnavailable = errors.New("device: endpoint unavailable")

// Endpoint is the byte-stream abstraction the Frame Codec reads from and
// writes to. The endpoint itself never buffers beyond what the OS requires;
// all buffering is the Frame Codec's job (spec.md §4.A).
type Endpoint interface {
	io.Reader
	io.Writer

	// Disconnected is closed exactly once, the first time the Session
	// observes that the peer or device vanished mid-stream.
	Disconnected() <-chan struct{}

	// MarkDisconnected closes the Disconnected channel if it has not
	// already been closed. Safe to call multiple times and concurrently.
	MarkDisconnected()

	Close() error
}

// base is embedded by the platform-specific endpoints to share the
// disconnect-signal bookkeeping.
type base struct {
	once sync.Once
	done chan struct{}
}

func newBase() base {
	return base{done: make(chan struct{})}
}

func (b *base) Disconnected() <-chan struct{} { return b.done }

func (b *base) MarkDisconnected() {
	b.once.Do(func() { close(b.done) })
}
