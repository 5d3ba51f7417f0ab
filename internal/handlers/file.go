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
	"io"
	"os"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// FileRead returns the file_read operation's RunFunc. chunkCap is
// max_chunk_size (spec.md §4.F "length (<= max_chunk_size)").
func FileRead(chunkCap uint64) dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.FileReadRequest)

		if uint64(req.Length) > chunkCap {
			return nil, agenterr.InvalidArgument
		}

		f, err := os.Open(req.Path)
		if err != nil {
			return nil, classifyFileError(err)
		}
		defer f.Close()

		buf := make([]byte, req.Length)
		n, err := f.ReadAt(buf, int64(req.Offset))
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return nil, classifyFileError(err)
		}

		resp := message.FileReadResponse{Data: buf[:n], EOF: eof}
		return resp.Marshal(), agenterr.Ok
	}
}

// FileWrite returns the file_write operation's RunFunc.
func FileWrite(chunkCap uint64) dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.FileWriteRequest)

		if uint64(len(req.Bytes)) > chunkCap {
			return nil, agenterr.InvalidArgument
		}

		flags := os.O_WRONLY
		if req.Create {
			flags |= os.O_CREATE
		}
		mode := os.FileMode(req.Mode)
		if mode == 0 {
			mode = 0o644
		}

		f, err := os.OpenFile(req.Path, flags, mode)
		if err != nil {
			return nil, classifyFileError(err)
		}
		defer f.Close()

		n, err := f.WriteAt(req.Bytes, int64(req.Offset))
		if err != nil {
			return nil, classifyFileError(err)
		}

		resp := message.FileWriteResponse{BytesWritten: uint32(n)}
		return resp.Marshal(), agenterr.Ok
	}
}

func classifyFileError(err error) agenterr.Kind {
	switch {
	case os.IsNotExist(err):
		return agenterr.NotFound
	case os.IsPermission(err):
		return agenterr.PermissionDenied
	default:
		return agenterr.Internal
	}
}
