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

package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseMarkDisconnectedIsIdempotent(t *testing.T) {
	b := newBase()

	select {
	case <-b.Disconnected():
		t.Fatal("must not be closed before MarkDisconnected")
	default:
	}

	b.MarkDisconnected()
	b.MarkDisconnected()
	b.MarkDisconnected()

	select {
	case <-b.Disconnected():
	default:
		t.Fatal("must be closed after MarkDisconnected")
	}
}

func TestBaseMarkDisconnectedConcurrentIsSafe(t *testing.T) {
	b := newBase()

	done := make(chan struct{})
	for i := 0; i < 16; i++ {
		go func() {
			b.MarkDisconnected()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 16; i++ {
		<-done
	}

	select {
	case <-b.Disconnected():
	default:
		t.Fatal("must be closed")
	}
}

func TestResolvePathPrefersExplicitPath(t *testing.T) {
	got, err := resolvePath("/explicit/path")
	require.NoError(t, err)
	require.Equal(t, "/explicit/path", got)
}

func TestResolvePathScansCandidatesInOrder(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	original := DefaultUnixCandidates
	DefaultUnixCandidates = []string{dir1 + "/", dir2 + "/"}
	defer func() { DefaultUnixCandidates = original }()

	require.NoError(t, os.WriteFile(filepath.Join(dir2, WellKnownPortName), nil, 0o600))

	got, err := resolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir2, WellKnownPortName), got)

	require.NoError(t, os.WriteFile(filepath.Join(dir1, WellKnownPortName), nil, 0o600))

	got, err = resolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir1, WellKnownPortName), got)
}

func TestResolvePathReturnsUnavailableWhenNoCandidateExists(t *testing.T) {
	dir := t.TempDir()

	original := DefaultUnixCandidates
	DefaultUnixCandidates = []string{dir + "/"}
	defer func() { DefaultUnixCandidates = original }()

	_, err := resolvePath("")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenSucceedsOnRegularFileStandIn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, WellKnownPortName)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ep, err := Open(path)
	require.NoError(t, err)
	defer ep.Close()

	_, err = ep.Write([]byte("x"))
	require.NoError(t, err)
}

func TestOpenFailsForMissingDevice(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"))
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestEndpointMarksDisconnectedOnCloseAndIOError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, WellKnownPortName)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ep, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, ep.Close())

	select {
	case <-ep.Disconnected():
	default:
		t.Fatal("Close must mark the endpoint disconnected")
	}

	_, err = ep.Write([]byte("x"))
	require.Error(t, err)
}
