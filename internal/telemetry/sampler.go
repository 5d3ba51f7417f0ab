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

package telemetry

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	gnet "github.com/shirou/gopsutil/net"
	"github.com/shirou/gopsutil/process"

	"github.com/nabbar/vagent/internal/message"
)

// GopsutilSampler collects a TelemetrySample from github.com/shirou/gopsutil,
// already a direct teacher dependency with no other home in this agent
// (SPEC_FULL.md §4.G). Every probe is best-effort: a failing probe leaves
// its corresponding fields zero rather than failing the whole sample, since
// a guest may legitimately lack load averages (Windows) or named disks.
type GopsutilSampler struct{}

func NewGopsutilSampler() *GopsutilSampler { return &GopsutilSampler{} }

func (s *GopsutilSampler) Sample(ctx context.Context) (message.TelemetrySample, error) {
	var out message.TelemetrySample

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		out.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.MemTotal = vm.Total
		out.MemUsed = vm.Used
		out.MemAvailable = vm.Available
	}

	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		out.SwapTotal = sw.Total
		out.SwapUsed = sw.Used
	}

	if parts, err := disk.PartitionsWithContext(ctx, false); err == nil {
		out.Disks = make([]message.DiskUsage, 0, len(parts))
		for _, part := range parts {
			usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
			if err != nil {
				continue
			}
			out.Disks = append(out.Disks, message.DiskUsage{
				Mountpoint: part.Mountpoint,
				Total:      usage.Total,
				Used:       usage.Used,
			})
		}
	}

	if ifaces, err := gnet.InterfacesWithContext(ctx); err == nil {
		out.Interfaces = make([]message.NetInterface, 0, len(ifaces))
		for _, iface := range ifaces {
			addrs := make([]string, 0, len(iface.Addrs))
			for _, a := range iface.Addrs {
				addrs = append(addrs, a.Addr)
			}
			out.Interfaces = append(out.Interfaces, message.NetInterface{
				Name:      iface.Name,
				Addresses: addrs,
				Up:        isUp(iface.Flags),
			})
		}
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		out.LoadAvg1 = avg.Load1
		out.LoadAvg5 = avg.Load5
		out.LoadAvg15 = avg.Load15
	}

	if pids, err := process.PidsWithContext(ctx); err == nil {
		out.ProcessCount = uint32(len(pids))
	}

	if uptime, err := host.UptimeWithContext(ctx); err == nil {
		out.Uptime = time.Duration(uptime) * time.Second
	}

	return out, nil
}

func isUp(flags []string) bool {
	for _, f := range flags {
		if f == "up" {
			return true
		}
	}
	return false
}
