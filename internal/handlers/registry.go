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

// Package handlers implements every operation's RunFunc (spec.md §4.F) plus
// the Registrations function that assembles them, from Configuration, into
// the list the Dispatcher is constructed with.
package handlers

import (
	"time"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/config"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// Registrations builds the full operation registry the Supervisor hands to
// dispatch.New. Every default timeout and the execute/file_read/file_write
// concurrency caps come from Configuration, so a deployment can retune them
// without a rebuild (spec.md §4.E); the other operations have a fixed cap of
// 1, except fs_freeze/fs_thaw, which have none.
func Registrations(cfg config.Configuration, log agentlog.Logger) []dispatch.Registration {
	return []dispatch.Registration{
		{
			Operation: message.OpExecute,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalExecuteRequest(b)
			},
			Timeout: func(payload any) (time.Duration, bool) {
				req := payload.(message.ExecuteRequest)
				return req.Timeout, req.Timeout > 0
			},
			Run:            Execute(log, cfg.ExecOutputCap),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    cfg.ExecuteConcurrency,
			OutputCap:      cfg.ExecOutputCap,
		},
		{
			Operation: message.OpFileRead,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalFileReadRequest(b)
			},
			Run:            FileRead(cfg.MaxChunkSize),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    cfg.FileReadConcurrency,
			OutputCap:      cfg.MaxChunkSize,
		},
		{
			Operation: message.OpFileWrite,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalFileWriteRequest(b)
			},
			Run:            FileWrite(cfg.MaxChunkSize),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    cfg.FileWriteConcurrency,
			OutputCap:      cfg.MaxChunkSize,
		},
		{
			Operation: message.OpShutdown,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalPowerRequest(b)
			},
			Run:            Shutdown(log),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
		{
			Operation: message.OpReboot,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalPowerRequest(b)
			},
			Run:            Reboot(log),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
		{
			Operation: message.OpPasswordReset,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalPasswordResetRequest(b)
			},
			Run:            PasswordReset(),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
		{
			Operation: message.OpNetworkApply,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalNetworkApplyRequest(b)
			},
			Run:            NetworkApply(log, cfg.NetworkApplyToolPath),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
		{
			Operation: message.OpFSFreeze,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalFSQuiesceRequest(b)
			},
			Run:            FSFreeze(log),
			DefaultTimeout: cfg.MaxExecTimeout,
			// Concurrency is left at 0 (unlimited); the Dispatcher's own
			// fs_freeze/fs_thaw mutex is what actually serializes these two
			// operations (spec.md §5), not a per-operation semaphore.
		},
		{
			Operation: message.OpFSThaw,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalFSQuiesceRequest(b)
			},
			Run:            FSThaw(log),
			DefaultTimeout: cfg.MaxExecTimeout,
		},
		{
			Operation: message.OpClipboardGet,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalClipboardData(b)
			},
			Run:            ClipboardGet(),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
		{
			Operation: message.OpClipboardSet,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalClipboardData(b)
			},
			Run:            ClipboardSet(),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
		{
			Operation: message.OpDisplayResize,
			Decode: func(b []byte) (any, error) {
				return message.UnmarshalDisplayResizeRequest(b)
			},
			Run:            DisplayResize(),
			DefaultTimeout: cfg.MaxExecTimeout,
			Concurrency:    1,
		},
	}
}
