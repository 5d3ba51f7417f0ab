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

//go:build !windows

package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/message"
)

// A headless guest has no DISPLAY, the common case this agent targets; both
// clipboard operations must report Unavailable rather than hang trying to
// reach an X server that doesn't exist.
func TestClipboardGetWithoutDesktopSessionIsUnavailable(t *testing.T) {
	t.Setenv("DISPLAY", "")

	run := ClipboardGet()
	rc := newRC(context.Background(), message.OpClipboardGet, 0)

	_, kind := run(rc, message.ClipboardData{})
	require.Equal(t, agenterr.Unavailable, kind)
}

func TestClipboardSetWithoutDesktopSessionIsUnavailable(t *testing.T) {
	t.Setenv("DISPLAY", "")

	run := ClipboardSet()
	rc := newRC(context.Background(), message.OpClipboardSet, 0)

	_, kind := run(rc, message.ClipboardData{Data: []byte("x"), Mime: "text/plain"})
	require.Equal(t, agenterr.Unavailable, kind)
}
