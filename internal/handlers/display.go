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

// errDisplayUnsupported is returned by a platform's resize hook when the
// guest has no attached display session to resize.
var errDisplayUnsupported = errors.New("handlers: no display session attached")

// DisplayResize returns the display_resize RunFunc. Width/Height of zero
// is rejected InvalidArgument before ever reaching the platform hook.
func DisplayResize() dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.DisplayResizeRequest)
		if req.Width == 0 || req.Height == 0 {
			return nil, agenterr.InvalidArgument
		}

		if err := resizeDisplay(rc, req.Width, req.Height, req.Scale); err != nil {
			if errors.Is(err, errDisplayUnsupported) {
				return nil, agenterr.Unsupported
			}
			return nil, agenterr.Unavailable
		}
		return message.AckResponse{}.Marshal(), agenterr.Ok
	}
}
