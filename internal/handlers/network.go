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
	"os"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/dispatch"
	"github.com/nabbar/vagent/internal/message"
)

// NetworkApply returns the network_apply operation's RunFunc. The document
// is treated as opaque bytes (spec.md §4.F): this agent's job is to hand it
// to the platform's network configuration tool verbatim, not to parse it.
func NetworkApply(log agentlog.Logger, applyPath string) dispatch.RunFunc {
	return func(rc *dispatch.RequestContext, payload any) ([]byte, agenterr.Kind) {
		req := payload.(message.NetworkApplyRequest)

		if len(req.Document) == 0 {
			return nil, agenterr.InvalidArgument
		}

		if err := applyNetworkDocument(rc, applyPath, req.Document); err != nil {
			if log != nil {
				log.WithError(err).Error("network_apply failed")
			}
			return nil, agenterr.Internal
		}

		return message.AckResponse{}.Marshal(), agenterr.Ok
	}
}

// applyNetworkDocument writes the document to a scratch file and hands it to
// the external apply tool; the tool path is configuration-driven since the
// concrete mechanism (netplan, nmcli, a Windows PowerShell script, ...) is
// deployment-specific and out of this agent's scope (spec.md §4.F marks the
// document itself as opaque).
func applyNetworkDocument(rc *dispatch.RequestContext, applyPath string, doc []byte) error {
	if applyPath == "" {
		return nil
	}
	f, err := os.CreateTemp("", "vagent-network-*.conf")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if _, err := f.Write(doc); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return runNetworkApplyTool(rc, applyPath, f.Name())
}
