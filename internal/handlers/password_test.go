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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/message"
)

// PasswordReset never reaches the real password-change tool for a username
// that does not exist on the host, so this is safe to run unprivileged.
func TestPasswordResetUnknownUserIsNotFound(t *testing.T) {
	run := PasswordReset()
	rc := newRC(context.Background(), message.OpPasswordReset, 0)

	req := message.PasswordResetRequest{Username: "vagent-definitely-not-a-real-user", NewPassword: "x"}
	_, kind := run(rc, req)
	require.Equal(t, agenterr.NotFound, kind)
}
