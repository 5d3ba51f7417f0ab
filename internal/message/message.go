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

// Package message defines the versioned binary schema exchanged over one
// Frame (spec.md §4.C), generalizing the teacher's network/protocol tagged-
// value idiom (tests only, see DESIGN.md) into a concrete, round-trippable
// encoding.
package message

import "github.com/nabbar/vagent/internal/agenterr"

// Version is the wire schema version carried as the first byte of every
// frame payload. Bumping it is the Open Question resolution spec.md §9
// flags ("implementations should pick a single canonical binary encoding
// and declare a version byte in hello").
const Version uint8 = 1

// Kind discriminates the three message shapes the protocol exchanges.
type Kind uint8

const (
	KindRequest Kind = iota
	KindResponse
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindResponse:
		return "Response"
	case KindEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// Operation tags name a handler family. Kept as strings (not a closed wire
// enum) so an unrecognized tag from a newer host decodes cleanly into
// UnsupportedOperation instead of tearing down the Session (spec.md §4.C).
type Operation string

const (
	OpExecute         Operation = "execute"
	OpFileRead        Operation = "file_read"
	OpFileWrite       Operation = "file_write"
	OpShutdown        Operation = "shutdown"
	OpReboot          Operation = "reboot"
	OpPasswordReset   Operation = "password_reset"
	OpNetworkApply    Operation = "network_apply"
	OpFSFreeze        Operation = "fs_freeze"
	OpFSThaw          Operation = "fs_thaw"
	OpClipboardGet    Operation = "clipboard_get"
	OpClipboardSet    Operation = "clipboard_set"
	OpDisplayResize   Operation = "display_resize"
	OpHello           Operation = "hello"
	OpPing            Operation = "ping"
	OpTelemetryReport Operation = "telemetry_report"
	OpProgress        Operation = "progress"
)

// Message is the decoded unit exchanged with the host (spec.md §3).
type Message struct {
	CorrelationID uint64
	Kind          Kind
	Operation     Operation
	Payload       []byte

	// Status is only meaningful when Kind == KindResponse.
	Status agenterr.Kind
}

// IsRequest, IsResponse, IsEvent are small readability helpers used across
// the Session/Dispatcher boundary.
func (m Message) IsRequest() bool  { return m.Kind == KindRequest }
func (m Message) IsResponse() bool { return m.Kind == KindResponse }
func (m Message) IsEvent() bool    { return m.Kind == KindEvent }
