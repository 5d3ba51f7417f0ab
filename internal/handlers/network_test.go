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

func TestNetworkApplyEmptyDocumentIsInvalidArgument(t *testing.T) {
	run := NetworkApply(nil, "")
	rc := newRC(context.Background(), message.OpNetworkApply, 0)

	_, kind := run(rc, message.NetworkApplyRequest{})
	require.Equal(t, agenterr.InvalidArgument, kind)
}

// An empty NetworkApplyToolPath disables the apply side effect while still
// acknowledging the request (spec.md §4.F), so a document with no configured
// tool still succeeds without ever shelling out.
func TestNetworkApplyWithNoToolConfiguredStillAcknowledges(t *testing.T) {
	run := NetworkApply(nil, "")
	rc := newRC(context.Background(), message.OpNetworkApply, 0)

	_, kind := run(rc, message.NetworkApplyRequest{Document: []byte("some: document\n")})
	require.Equal(t, agenterr.Ok, kind)
}
