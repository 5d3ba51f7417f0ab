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

package agentlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a structured-logging field set, re-exported so callers never
// import logrus directly - mirrors the teacher's logger/types.Fields idiom
// of keeping the third-party logging library an implementation detail.
type Fields = logrus.Fields

// Logger is the agent-wide logging capability. It is passed explicitly to
// every component that needs it (Session, Dispatcher, handlers, Telemetry
// Producer, Supervisor) rather than read from a package-level global -
// the only piece of ambient ... state this repo permits is the Configuration
// itself (spec.md §9 "Global mutable state").
type Logger interface {
	WithFields(f Fields) Logger
	WithField(key string, value any) Logger
	WithError(err error) Logger
	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

type logger struct {
	e *logrus.Entry
}

// New builds a Logger writing to w (os.Stderr in production) at the given
// level, in a compact text format suitable for a service-manager journal.
func New(w io.Writer, lvl Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.logrus())
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return &logger{e: logrus.NewEntry(l)}
}

// NewStderr is a convenience constructor used by cmd/agent before the
// configuration file has been parsed.
func NewStderr(lvl Level) Logger {
	return New(os.Stderr, lvl)
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{e: l.e.WithFields(f)}
}

func (l *logger) WithField(key string, value any) Logger {
	return &logger{e: l.e.WithField(key, value)}
}

func (l *logger) WithError(err error) Logger {
	return &logger{e: l.e.WithError(err)}
}

func (l *logger) Trace(args ...any) { l.e.Trace(args...) }
func (l *logger) Debug(args ...any) { l.e.Debug(args...) }
func (l *logger) Info(args ...any)  { l.e.Info(args...) }
func (l *logger) Warn(args ...any)  { l.e.Warn(args...) }
func (l *logger) Error(args ...any) { l.e.Error(args...) }
