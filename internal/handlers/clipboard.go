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
	"errors"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// errNoDesktopSession is returned by a platform's clipboard hook when no
// interactive desktop session is attached to the guest to own a clipboard.
var errNoDesktopSession = errors.New("handlers: no desktop session attached")

// ClipboardGet and ClipboardSet return their RunFuncs. Both fail Unavailable
// whenever no desktop session is attached to read or write a clipboard
// (spec.md §4.F "Unavailable (no desktop session)") - the common case for a
// headless guest.
func ClipboardGet() dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		data, mime, err := readClipboard(rc)
		if err != nil {
			return nil, agenterr.Unavailable
		}
		resp := message.ClipboardData{Data: data, Mime: mime}
		return resp.Marshal(), agenterr.Ok
	}
}

func ClipboardSet() dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.ClipboardData)
		if err := writeClipboard(rc, req.Data, req.Mime); err != nil {
			return nil, agenterr.Unavailable
		}
		return message.AckResponse{}.Marshal(), agenterr.Ok
	}
}
