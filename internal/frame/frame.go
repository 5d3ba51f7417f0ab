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

// Package frame implements the length-prefixed framing layer of spec.md
// §4.B: a 4-byte big-endian length header followed by exactly that many
// payload bytes. It generalizes the teacher's ioutils/delim byte-delimited
// reader (ioutils/delim/io.go) from a single delimiter byte to a 4-byte
// length header, the framing primitive this wire actually uses.
package frame

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

const headerLen = 4

// ErrDisconnected is returned by Read/Write when the underlying stream ended
// or errored mid-frame - the Session Layer is the only consumer that
// interprets this signal (spec.md §7 "Device errors are never surfaced to
// handlers ... they are observed only by the Session Layer").
var ErrDisconnected = errors.New("frame: device disconnected")

// ErrTooLarge is returned when a peer-declared length exceeds max_frame_bytes.
// This is a protocol violation: the current Session must be torn down, but
// the process keeps running (spec.md §7, testable property 3).
var ErrTooLarge = errors.New("frame: declared length exceeds max_frame_bytes")

// Reader reads one frame at a time off a byte stream.
type Reader struct {
	r       io.Reader
	maxSize uint32
}

func NewReader(r io.Reader, maxFrameBytes uint32) *Reader {
	return &Reader{r: r, maxSize: maxFrameBytes}
}

// ReadFrame reads exactly one frame: a 4-byte length header (retried across
// short reads) followed by that many payload bytes. A length exceeding
// maxFrameBytes returns ErrTooLarge without ever allocating or reading the
// (unbounded, attacker/peer-controlled) payload size - this is what keeps a
// corrupt or hostile length header from causing unbounded memory use.
func (r *Reader) ReadFrame() ([]byte, error) {
	var hdr [headerLen]byte
	if err := readFull(r.r, hdr[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(hdr[:])
	if n > r.maxSize {
		return nil, ErrTooLarge
	}

	buf := make([]byte, n)
	if err := readFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFull retries short reads until buf is full, io.EOF is hit, or another
// error occurs; any of the latter two collapse to ErrDisconnected since a
// partial frame must never escape the Frame Codec (spec.md §4.B).
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return ErrDisconnected
	}
	return nil
}

// Writer writes whole frames, serialized under a single mutex so that two
// concurrent WriteFrame calls never interleave their bytes on the wire
// (spec.md §3 invariant 3, §4.B "a short write is retried ... write lock
// serializes entire frames").
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	maxSize uint32
}

func NewWriter(w io.Writer, maxFrameBytes uint32) *Writer {
	return &Writer{w: w, maxSize: maxFrameBytes}
}

// WriteFrame writes the 4-byte length header then payload as one atomic
// operation relative to other WriteFrame calls on the same Writer.
func (w *Writer) WriteFrame(payload []byte) error {
	if uint32(len(payload)) > w.maxSize {
		return ErrTooLarge
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var hdr [headerLen]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))

	if err := writeFull(w.w, hdr[:]); err != nil {
		return err
	}
	return writeFull(w.w, payload)
}

func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return ErrDisconnected
		}
		buf = buf[n:]
	}
	return nil
}
