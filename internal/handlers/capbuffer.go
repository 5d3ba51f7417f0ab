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
	"bytes"
	"sync"
)

// capBuffer is an io.Writer that stops growing past its cap and reports the
// overflow once instead of erroring on every subsequent write - execute
// captures stdout/stderr through one of these each so the handler's own
// memory stays O(max_exec_output_cap) regardless of how chatty the child is
// (spec.md §4.F handler invariants).
type capBuffer struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	cap      uint64
	exceeded bool
	onExceed func()
}

func newCapBuffer(cap uint64, onExceed func()) *capBuffer {
	return &capBuffer{cap: cap, onExceed: onExceed}
}

func (c *capBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exceeded {
		return len(p), nil
	}

	remaining := int64(c.cap) - int64(c.buf.Len())
	if remaining <= 0 {
		c.markExceededLocked()
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		c.buf.Write(p[:remaining])
		c.markExceededLocked()
		return len(p), nil
	}

	c.buf.Write(p)
	return len(p), nil
}

func (c *capBuffer) markExceededLocked() {
	c.exceeded = true
	if c.onExceed != nil {
		go c.onExceed()
	}
}

func (c *capBuffer) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out
}

func (c *capBuffer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

func (c *capBuffer) Exceeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exceeded
}
