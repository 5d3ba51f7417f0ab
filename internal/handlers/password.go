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
	"os/exec"
	"os/user"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// PasswordReset returns the password_reset operation's RunFunc, shelling out
// to the platform's own password-change tool rather than touching
// /etc/shadow or the SAM directly - grounded on the teacher's shell/command
// idiom of invoking a trusted external binary instead of reimplementing
// privileged system logic in-process.
func PasswordReset() dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.PasswordResetRequest)

		if _, err := user.Lookup(req.Username); err != nil {
			return nil, agenterr.NotFound
		}

		if !hasPowerPrivilege() {
			return nil, agenterr.PermissionDenied
		}

		if err := setPassword(rc, req.Username, req.NewPassword); err != nil {
			return nil, agenterr.PermissionDenied
		}

		return message.AckResponse{}.Marshal(), agenterr.Ok
	}
}

func setPassword(rc *dispatch.RequestContext, username, password string) error {
	cmd := exec.CommandContext(rc.Context(), passwordTool, passwordToolArgs(username, password)...)
	cmd.Stdin = passwordStdin(username, password)
	return cmd.Run()
}
