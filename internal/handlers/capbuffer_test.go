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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCapBufferStopsGrowingAtCap(t *testing.T) {
	var exceeded int32
	buf := newCapBuffer(4, func() { atomic.StoreInt32(&exceeded, 1) })

	n, err := buf.Write([]byte("abcdefgh"))
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, []byte("abcd"), buf.Bytes())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&exceeded) == 1 }, time.Second, time.Millisecond)
	require.True(t, buf.Exceeded())
}

func TestCapBufferFiresOnExceedOnlyOnce(t *testing.T) {
	var fires int32
	buf := newCapBuffer(2, func() { atomic.AddInt32(&fires, 1) })

	_, _ = buf.Write([]byte("abc"))
	_, _ = buf.Write([]byte("def"))

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fires) >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestCapBufferUnderCapKeepsEverything(t *testing.T) {
	buf := newCapBuffer(1024, nil)
	_, err := buf.Write([]byte("small"))
	require.NoError(t, err)
	require.Equal(t, "small", string(buf.Bytes()))
	require.False(t, buf.Exceeded())
}
