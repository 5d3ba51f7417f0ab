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

// Package agenterr defines the closed ErrorKind taxonomy carried on
// Response.Status and the coded Error type used throughout the agent to
// attach one of those kinds to a Go error without losing the original cause.
package agenterr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error kinds a Response can carry, per the wire
// contract. Unlike the teacher's errors.CodeError (an open uint16 space
// modeled on HTTP status codes), this is a small fixed enum: the protocol
// only ever needs to distinguish these cases, so a closed enum is the
// better-grounded choice for this wire (see SPEC_FULL.md §4.C).
type Kind uint8

const (
	Ok Kind = iota
	UnsupportedOperation
	Malformed
	ProtocolViolation
	Busy
	InvalidArgument
	NotFound
	PermissionDenied
	Timeout
	ResourceExhausted
	Unsupported
	Unavailable
	Cancelled
	Internal
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "Ok"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	case Malformed:
		return "Malformed"
	case ProtocolViolation:
		return "ProtocolViolation"
	case Busy:
		return "Busy"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case PermissionDenied:
		return "PermissionDenied"
	case Timeout:
		return "Timeout"
	case ResourceExhausted:
		return "ResourceExhausted"
	case Unsupported:
		return "Unsupported"
	case Unavailable:
		return "Unavailable"
	case Cancelled:
		return "Cancelled"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind and an optional cause. It satisfies the standard error
// interface as well as errors.Is/errors.As via Unwrap, generalizing the
// teacher's errors.Error parent-chain idiom (errors/interface.go) down to
// the single-cause case this protocol needs.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, cause error) *Error {
	if cause == nil {
		return &Error{kind: kind}
	}
	return &Error{kind: kind, msg: cause.Error(), cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.kind, e.cause.Error())
	}
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return e.kind.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is lets errors.Is(err, agenterr.New(SomeKind, "")) match by Kind alone.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return o.kind == e.kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to Internal for any error
// that was not raised through this package - every unexpected fault reaching
// the Dispatcher boundary is reported to the host as Internal (spec.md §7).
func KindOf(err error) Kind {
	if err == nil {
		return Ok
	}
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Internal
}
