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

package message

import (
	"fmt"

	"github.com/nabbar/vagent/internal/agenterr"
)

// Encode serializes a Message into a frame payload. Encoding never fails for
// a valid typed Message (spec.md §4.C); the returned error is always nil,
// and Kind and Status are written as given without being checked.
func Encode(m Message) ([]byte, error) {
	w := newWriter()
	w.u8(Version)
	w.u8(uint8(m.Kind))
	w.u64(m.CorrelationID)
	w.str(string(m.Operation))

	if m.Kind == KindResponse {
		w.u8(uint8(m.Status))
	}

	w.bytes(m.Payload)

	return w.Bytes(), nil
}

// Decode parses a frame payload produced by Encode (or by a peer following
// the same schema) into a Message. Any malformed input - including an
// unsupported wire version - yields agenterr.Malformed rather than a panic
// or a silently wrong Message, per spec.md §4.C / testable property 2.
func Decode(raw []byte) (Message, error) {
	r := newReader(raw)

	ver, err := r.u8()
	if err != nil {
		return Message{}, agenterr.Wrap(agenterr.Malformed, fmt.Errorf("reading version: %w", err))
	}
	if ver != Version {
		return Message{}, agenterr.New(agenterr.Malformed, "unsupported wire version %d", ver)
	}

	kindByte, err := r.u8()
	if err != nil {
		return Message{}, agenterr.Wrap(agenterr.Malformed, fmt.Errorf("reading kind: %w", err))
	}
	kind := Kind(kindByte)
	if kind != KindRequest && kind != KindResponse && kind != KindEvent {
		return Message{}, agenterr.New(agenterr.Malformed, "unknown message kind %d", kindByte)
	}

	cid, err := r.u64()
	if err != nil {
		return Message{}, agenterr.Wrap(agenterr.Malformed, fmt.Errorf("reading correlation id: %w", err))
	}

	op, err := r.str()
	if err != nil {
		return Message{}, agenterr.Wrap(agenterr.Malformed, fmt.Errorf("reading operation: %w", err))
	}

	m := Message{CorrelationID: cid, Kind: kind, Operation: Operation(op)}

	if kind == KindResponse {
		st, err := r.u8()
		if err != nil {
			return Message{}, agenterr.Wrap(agenterr.Malformed, fmt.Errorf("reading status: %w", err))
		}
		m.Status = agenterr.Kind(st)
	}

	payload, err := r.bytes()
	if err != nil {
		return Message{}, agenterr.Wrap(agenterr.Malformed, fmt.Errorf("reading payload: %w", err))
	}
	m.Payload = payload

	// Trailing bytes (a future field unknown to this build) are ignored by
	// design - see wire.go's reader.done doc comment.
	return m, nil
}
