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

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// errQuiesceUnsupported is returned by a platform's freeze/thaw hook when
// the underlying filesystem has no quiesce primitive (spec.md §4.F
// "Unsupported (filesystem does not support quiesce)").
var errQuiesceUnsupported = errors.New("handlers: filesystem does not support quiesce")

// FSFreeze and FSThaw return the fs_freeze/fs_thaw RunFuncs. The Dispatcher
// globally serializes these two operations regardless of their registered
// concurrency cap (spec.md §5), so the platform hook below never needs its
// own locking across mountpoints.
func FSFreeze(log agentlog.Logger) dispatch.RunFunc {
	return quiesce(log, platformFreeze)
}

func FSThaw(log agentlog.Logger) dispatch.RunFunc {
	return quiesce(log, platformThaw)
}

func quiesce(log agentlog.Logger, action func(mountpoints []string) ([]string, error)) dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.FSQuiesceRequest)

		affected, err := action(req.Mountpoints)
		if err != nil {
			if log != nil {
				log.WithError(err).Warn("filesystem quiesce failed")
			}
			return nil, classifyQuiesceError(err)
		}

		resp := message.FSQuiesceResponse{Affected: affected}
		return resp.Marshal(), agenterr.Ok
	}
}

func classifyQuiesceError(err error) agenterr.Kind {
	if errors.Is(err, errQuiesceUnsupported) {
		return agenterr.Unsupported
	}
	return agenterr.Internal
}
