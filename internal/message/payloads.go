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

package message

import (
	"fmt"
	"time"

	"github.com/nabbar/vagent/internal/agenterr"
)

// Every type below is the typed payload shape for one §4.F table row (or the
// hello/ping events of §4.D). Each carries its own Marshal/Unmarshal so the
// Dispatcher can decode a Request's opaque Payload into the shape its
// handler expects (spec.md §4.E step 3), and a handler can build its
// Response/Event payload without hand-rolling field order at each call site.

// ExecuteRequest is the execute operation's input.
type ExecuteRequest struct {
	Command   string
	Argv      []string
	Env       map[string]string
	Cwd       string
	Stdin     []byte
	Timeout   time.Duration
	RunAsUser string
}

func (p ExecuteRequest) Marshal() []byte {
	w := newWriter()
	w.str(p.Command)
	w.strSlice(p.Argv)
	w.strMap(p.Env)
	w.str(p.Cwd)
	w.bytes(p.Stdin)
	w.duration(p.Timeout)
	w.str(p.RunAsUser)
	return w.Bytes()
}

func UnmarshalExecuteRequest(b []byte) (ExecuteRequest, error) {
	r := newReader(b)
	var p ExecuteRequest
	var err error
	if p.Command, err = r.str(); err != nil {
		return p, malformed("execute.command", err)
	}
	if p.Argv, err = r.strSlice(); err != nil {
		return p, malformed("execute.argv", err)
	}
	if p.Env, err = r.strMap(); err != nil {
		return p, malformed("execute.env", err)
	}
	if p.Cwd, err = r.str(); err != nil {
		return p, malformed("execute.cwd", err)
	}
	if p.Stdin, err = r.bytes(); err != nil {
		return p, malformed("execute.stdin", err)
	}
	if p.Timeout, err = r.duration(); err != nil {
		return p, malformed("execute.timeout", err)
	}
	if p.RunAsUser, err = r.str(); err != nil {
		return p, malformed("execute.run_as_user", err)
	}
	return p, nil
}

// ExecuteResponse is the execute operation's success payload.
type ExecuteResponse struct {
	ExitCode int32
	Stdout   []byte
	Stderr   []byte
	WallTime time.Duration
}

func (p ExecuteResponse) Marshal() []byte {
	w := newWriter()
	w.i64(int64(p.ExitCode))
	w.bytes(p.Stdout)
	w.bytes(p.Stderr)
	w.duration(p.WallTime)
	return w.Bytes()
}

func UnmarshalExecuteResponse(b []byte) (ExecuteResponse, error) {
	r := newReader(b)
	var p ExecuteResponse
	v, err := r.i64()
	if err != nil {
		return p, malformed("execute_response.exit_code", err)
	}
	p.ExitCode = int32(v)
	if p.Stdout, err = r.bytes(); err != nil {
		return p, malformed("execute_response.stdout", err)
	}
	if p.Stderr, err = r.bytes(); err != nil {
		return p, malformed("execute_response.stderr", err)
	}
	if p.WallTime, err = r.duration(); err != nil {
		return p, malformed("execute_response.wall_time", err)
	}
	return p, nil
}

// ExecuteProgress is the optional heartbeat event emitted during long runs.
type ExecuteProgress struct {
	BytesSoFar uint64
}

func (p ExecuteProgress) Marshal() []byte {
	w := newWriter()
	w.u64(p.BytesSoFar)
	return w.Bytes()
}

func UnmarshalExecuteProgress(b []byte) (ExecuteProgress, error) {
	r := newReader(b)
	v, err := r.u64()
	if err != nil {
		return ExecuteProgress{}, malformed("execute_progress.bytes_so_far", err)
	}
	return ExecuteProgress{BytesSoFar: v}, nil
}

// FileReadRequest/Response.
type FileReadRequest struct {
	Path   string
	Offset uint64
	Length uint32
}

func (p FileReadRequest) Marshal() []byte {
	w := newWriter()
	w.str(p.Path)
	w.u64(p.Offset)
	w.u32(p.Length)
	return w.Bytes()
}

func UnmarshalFileReadRequest(b []byte) (FileReadRequest, error) {
	r := newReader(b)
	var p FileReadRequest
	var err error
	if p.Path, err = r.str(); err != nil {
		return p, malformed("file_read.path", err)
	}
	if p.Offset, err = r.u64(); err != nil {
		return p, malformed("file_read.offset", err)
	}
	if p.Length, err = r.u32(); err != nil {
		return p, malformed("file_read.length", err)
	}
	return p, nil
}

type FileReadResponse struct {
	Data []byte
	EOF  bool
}

func (p FileReadResponse) Marshal() []byte {
	w := newWriter()
	w.bytes(p.Data)
	w.bool(p.EOF)
	return w.Bytes()
}

func UnmarshalFileReadResponse(b []byte) (FileReadResponse, error) {
	r := newReader(b)
	var p FileReadResponse
	var err error
	if p.Data, err = r.bytes(); err != nil {
		return p, malformed("file_read_response.data", err)
	}
	if p.EOF, err = r.boolean(); err != nil {
		return p, malformed("file_read_response.eof", err)
	}
	return p, nil
}

// FileWriteRequest/Response.
type FileWriteRequest struct {
	Path   string
	Offset uint64
	Bytes  []byte
	Create bool
	Mode   uint32
}

func (p FileWriteRequest) Marshal() []byte {
	w := newWriter()
	w.str(p.Path)
	w.u64(p.Offset)
	w.bytes(p.Bytes)
	w.bool(p.Create)
	w.u32(p.Mode)
	return w.Bytes()
}

func UnmarshalFileWriteRequest(b []byte) (FileWriteRequest, error) {
	r := newReader(b)
	var p FileWriteRequest
	var err error
	if p.Path, err = r.str(); err != nil {
		return p, malformed("file_write.path", err)
	}
	if p.Offset, err = r.u64(); err != nil {
		return p, malformed("file_write.offset", err)
	}
	if p.Bytes, err = r.bytes(); err != nil {
		return p, malformed("file_write.bytes", err)
	}
	if p.Create, err = r.boolean(); err != nil {
		return p, malformed("file_write.create", err)
	}
	if p.Mode, err = r.u32(); err != nil {
		return p, malformed("file_write.mode", err)
	}
	return p, nil
}

type FileWriteResponse struct {
	BytesWritten uint32
}

func (p FileWriteResponse) Marshal() []byte {
	w := newWriter()
	w.u32(p.BytesWritten)
	return w.Bytes()
}

func UnmarshalFileWriteResponse(b []byte) (FileWriteResponse, error) {
	r := newReader(b)
	v, err := r.u32()
	if err != nil {
		return FileWriteResponse{}, malformed("file_write_response.bytes_written", err)
	}
	return FileWriteResponse{BytesWritten: v}, nil
}

// PowerRequest is shared by shutdown and reboot.
type PowerRequest struct {
	DelaySeconds uint32
}

func (p PowerRequest) Marshal() []byte {
	w := newWriter()
	w.u32(p.DelaySeconds)
	return w.Bytes()
}

func UnmarshalPowerRequest(b []byte) (PowerRequest, error) {
	r := newReader(b)
	v, err := r.u32()
	if err != nil {
		return PowerRequest{}, malformed("power.delay_seconds", err)
	}
	return PowerRequest{DelaySeconds: v}, nil
}

// PasswordResetRequest.
type PasswordResetRequest struct {
	Username    string
	NewPassword string
}

func (p PasswordResetRequest) Marshal() []byte {
	w := newWriter()
	w.str(p.Username)
	w.str(p.NewPassword)
	return w.Bytes()
}

func UnmarshalPasswordResetRequest(b []byte) (PasswordResetRequest, error) {
	r := newReader(b)
	var p PasswordResetRequest
	var err error
	if p.Username, err = r.str(); err != nil {
		return p, malformed("password_reset.username", err)
	}
	if p.NewPassword, err = r.str(); err != nil {
		return p, malformed("password_reset.new_password", err)
	}
	return p, nil
}

// NetworkApplyRequest carries an opaque platform-specific document
// (spec.md §4.F): this agent treats it as bytes and leaves interpretation to
// the platform-specific handler.
type NetworkApplyRequest struct {
	Document []byte
}

func (p NetworkApplyRequest) Marshal() []byte {
	w := newWriter()
	w.bytes(p.Document)
	return w.Bytes()
}

func UnmarshalNetworkApplyRequest(b []byte) (NetworkApplyRequest, error) {
	r := newReader(b)
	doc, err := r.bytes()
	if err != nil {
		return NetworkApplyRequest{}, malformed("network_apply.document", err)
	}
	return NetworkApplyRequest{Document: doc}, nil
}

// FSQuiesceRequest is shared by fs_freeze and fs_thaw.
type FSQuiesceRequest struct {
	Mountpoints []string
}

func (p FSQuiesceRequest) Marshal() []byte {
	w := newWriter()
	w.strSlice(p.Mountpoints)
	return w.Bytes()
}

func UnmarshalFSQuiesceRequest(b []byte) (FSQuiesceRequest, error) {
	r := newReader(b)
	m, err := r.strSlice()
	if err != nil {
		return FSQuiesceRequest{}, malformed("fs_quiesce.mountpoints", err)
	}
	return FSQuiesceRequest{Mountpoints: m}, nil
}

type FSQuiesceResponse struct {
	Affected []string
}

func (p FSQuiesceResponse) Marshal() []byte {
	w := newWriter()
	w.strSlice(p.Affected)
	return w.Bytes()
}

func UnmarshalFSQuiesceResponse(b []byte) (FSQuiesceResponse, error) {
	r := newReader(b)
	a, err := r.strSlice()
	if err != nil {
		return FSQuiesceResponse{}, malformed("fs_quiesce_response.affected", err)
	}
	return FSQuiesceResponse{Affected: a}, nil
}

// ClipboardSetRequest / ClipboardGetResponse share the same shape.
type ClipboardData struct {
	Data []byte
	Mime string
}

func (p ClipboardData) Marshal() []byte {
	w := newWriter()
	w.bytes(p.Data)
	w.str(p.Mime)
	return w.Bytes()
}

func UnmarshalClipboardData(b []byte) (ClipboardData, error) {
	r := newReader(b)
	var p ClipboardData
	var err error
	if p.Data, err = r.bytes(); err != nil {
		return p, malformed("clipboard.data", err)
	}
	if p.Mime, err = r.str(); err != nil {
		return p, malformed("clipboard.mime", err)
	}
	return p, nil
}

// DisplayResizeRequest.
type DisplayResizeRequest struct {
	Width  uint32
	Height uint32
	Scale  uint32
}

func (p DisplayResizeRequest) Marshal() []byte {
	w := newWriter()
	w.u32(p.Width)
	w.u32(p.Height)
	w.u32(p.Scale)
	return w.Bytes()
}

func UnmarshalDisplayResizeRequest(b []byte) (DisplayResizeRequest, error) {
	r := newReader(b)
	var p DisplayResizeRequest
	var err error
	if p.Width, err = r.u32(); err != nil {
		return p, malformed("display_resize.width", err)
	}
	if p.Height, err = r.u32(); err != nil {
		return p, malformed("display_resize.height", err)
	}
	if p.Scale, err = r.u32(); err != nil {
		return p, malformed("display_resize.scale", err)
	}
	return p, nil
}

// HelloEvent is the handshake event the agent sends on every fresh Session
// (spec.md §4.D).
type HelloEvent struct {
	WireVersion  uint8
	AgentVersion string
	Capabilities []string
	OSIdentity   string
}

func (p HelloEvent) Marshal() []byte {
	w := newWriter()
	w.u8(p.WireVersion)
	w.str(p.AgentVersion)
	w.strSlice(p.Capabilities)
	w.str(p.OSIdentity)
	return w.Bytes()
}

func UnmarshalHelloEvent(b []byte) (HelloEvent, error) {
	r := newReader(b)
	var p HelloEvent
	var err error
	if p.WireVersion, err = r.u8(); err != nil {
		return p, malformed("hello.wire_version", err)
	}
	if p.AgentVersion, err = r.str(); err != nil {
		return p, malformed("hello.agent_version", err)
	}
	if p.Capabilities, err = r.strSlice(); err != nil {
		return p, malformed("hello.capabilities", err)
	}
	if p.OSIdentity, err = r.str(); err != nil {
		return p, malformed("hello.os_identity", err)
	}
	return p, nil
}

// DiskUsage is one mounted filesystem's space accounting within a
// TelemetrySample (spec.md §3 "per-mount disk usage").
type DiskUsage struct {
	Mountpoint string
	Total      uint64
	Used       uint64
}

// NetInterface is one network interface's addresses and link state within a
// TelemetrySample (spec.md §3 "per-interface addresses and link state").
type NetInterface struct {
	Name      string
	Addresses []string
	Up        bool
}

// TelemetrySample is the telemetry_report Event payload (spec.md §3, §4.G).
type TelemetrySample struct {
	CPUPercent     float64
	MemTotal       uint64
	MemUsed        uint64
	MemAvailable   uint64
	SwapTotal      uint64
	SwapUsed       uint64
	Disks          []DiskUsage
	Interfaces     []NetInterface
	LoadAvg1       float64
	LoadAvg5       float64
	LoadAvg15      float64
	ProcessCount   uint32
	Uptime         time.Duration
	DroppedSamples uint64
}

func (p TelemetrySample) Marshal() []byte {
	w := newWriter()
	w.f64(p.CPUPercent)
	w.u64(p.MemTotal)
	w.u64(p.MemUsed)
	w.u64(p.MemAvailable)
	w.u64(p.SwapTotal)
	w.u64(p.SwapUsed)

	w.u32(uint32(len(p.Disks)))
	for _, d := range p.Disks {
		w.str(d.Mountpoint)
		w.u64(d.Total)
		w.u64(d.Used)
	}

	w.u32(uint32(len(p.Interfaces)))
	for _, n := range p.Interfaces {
		w.str(n.Name)
		w.strSlice(n.Addresses)
		w.bool(n.Up)
	}

	w.f64(p.LoadAvg1)
	w.f64(p.LoadAvg5)
	w.f64(p.LoadAvg15)
	w.u32(p.ProcessCount)
	w.duration(p.Uptime)
	w.u64(p.DroppedSamples)
	return w.Bytes()
}

func UnmarshalTelemetrySample(b []byte) (TelemetrySample, error) {
	r := newReader(b)
	var p TelemetrySample
	var err error

	if p.CPUPercent, err = r.f64(); err != nil {
		return p, malformed("telemetry.cpu_percent", err)
	}
	if p.MemTotal, err = r.u64(); err != nil {
		return p, malformed("telemetry.mem_total", err)
	}
	if p.MemUsed, err = r.u64(); err != nil {
		return p, malformed("telemetry.mem_used", err)
	}
	if p.MemAvailable, err = r.u64(); err != nil {
		return p, malformed("telemetry.mem_available", err)
	}
	if p.SwapTotal, err = r.u64(); err != nil {
		return p, malformed("telemetry.swap_total", err)
	}
	if p.SwapUsed, err = r.u64(); err != nil {
		return p, malformed("telemetry.swap_used", err)
	}

	diskCount, err := r.u32()
	if err != nil {
		return p, malformed("telemetry.disks.count", err)
	}
	p.Disks = make([]DiskUsage, 0, diskCount)
	for i := uint32(0); i < diskCount; i++ {
		var d DiskUsage
		if d.Mountpoint, err = r.str(); err != nil {
			return p, malformed("telemetry.disks.mountpoint", err)
		}
		if d.Total, err = r.u64(); err != nil {
			return p, malformed("telemetry.disks.total", err)
		}
		if d.Used, err = r.u64(); err != nil {
			return p, malformed("telemetry.disks.used", err)
		}
		p.Disks = append(p.Disks, d)
	}

	ifaceCount, err := r.u32()
	if err != nil {
		return p, malformed("telemetry.interfaces.count", err)
	}
	p.Interfaces = make([]NetInterface, 0, ifaceCount)
	for i := uint32(0); i < ifaceCount; i++ {
		var n NetInterface
		if n.Name, err = r.str(); err != nil {
			return p, malformed("telemetry.interfaces.name", err)
		}
		if n.Addresses, err = r.strSlice(); err != nil {
			return p, malformed("telemetry.interfaces.addresses", err)
		}
		if n.Up, err = r.boolean(); err != nil {
			return p, malformed("telemetry.interfaces.up", err)
		}
		p.Interfaces = append(p.Interfaces, n)
	}

	if p.LoadAvg1, err = r.f64(); err != nil {
		return p, malformed("telemetry.load_avg_1", err)
	}
	if p.LoadAvg5, err = r.f64(); err != nil {
		return p, malformed("telemetry.load_avg_5", err)
	}
	if p.LoadAvg15, err = r.f64(); err != nil {
		return p, malformed("telemetry.load_avg_15", err)
	}
	if p.ProcessCount, err = r.u32(); err != nil {
		return p, malformed("telemetry.process_count", err)
	}
	if p.Uptime, err = r.duration(); err != nil {
		return p, malformed("telemetry.uptime", err)
	}
	if p.DroppedSamples, err = r.u64(); err != nil {
		return p, malformed("telemetry.dropped_samples", err)
	}
	return p, nil
}

// AckResponse is the shared empty-acknowledgment payload for shutdown,
// reboot, password_reset, network_apply and clipboard_set.
type AckResponse struct{}

func (AckResponse) Marshal() []byte { return nil }

func UnmarshalAckResponse([]byte) (AckResponse, error) { return AckResponse{}, nil }

func malformed(field string, err error) error {
	return agenterr.Wrap(agenterr.Malformed, fmt.Errorf("%s: %w", field, err))
}
