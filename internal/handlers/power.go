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
	"time"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// Shutdown and Reboot acknowledge immediately and perform the actual power
// action on its own goroutine after the requested delay - the Response must
// reach the host before the guest disappears (spec.md §4.F "shutdown /
// reboot ... acknowledgment").
func Shutdown(log agentlog.Logger) dispatch.RunFunc {
	return power(log, platformShutdown)
}

func Reboot(log agentlog.Logger) dispatch.RunFunc {
	return power(log, platformReboot)
}

func power(log agentlog.Logger, action func() error) dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.PowerRequest)

		if !hasPowerPrivilege() {
			return nil, agenterr.PermissionDenied
		}

		delay := time.Duration(req.DelaySeconds) * time.Second
		go func() {
			time.Sleep(delay)
			if err := action(); err != nil && log != nil {
				log.WithError(err).Error("power action failed")
			}
		}()

		return message.AckResponse{}.Marshal(), agenterr.Ok
	}
}
