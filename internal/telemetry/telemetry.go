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

// Package telemetry periodically samples host/guest resource usage and
// submits it through the Session's outbound queue as a telemetry_report
// Event (spec.md §4.G), generalizing the teacher's monitor/ periodic-probe
// idiom from a single monitored target's health state to a fixed set of
// OS-wide gopsutil samples.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/message"
)

// Sender is the narrow capability the Producer needs from the Session: a
// non-blocking enqueue and the shared outbound correlation-id source. Kept
// separate from dispatch.Sender (which additionally blocks on back-
// pressure) since the Producer must never block the Session's other
// senders (spec.md §4.G "non-blocking ... drops the sample").
type Sender interface {
	TrySend(m message.Message) bool
	NextCorrelationID() uint64
}

// Sampler collects one TelemetrySample. Implemented by GopsutilSampler in
// production and faked in tests.
type Sampler interface {
	Sample(ctx context.Context) (message.TelemetrySample, error)
}

// Producer runs the periodic sampling loop described in spec.md §4.G. It is
// started once by the Supervisor and keeps running across Session
// reconnects: while no connection is open TrySend refuses the sample, and
// that sample is counted as dropped just like one refused by a full queue.
type Producer struct {
	log      agentlog.Logger
	sampler  Sampler
	sender   Sender
	interval time.Duration

	dropped        uint64
	droppedGauge   prometheus.Gauge
	samplesEmitted prometheus.Counter
}

// NewProducer wires a Producer around a Sampler and a Sender. reg may be nil
// to skip Prometheus registration (e.g. in tests).
func NewProducer(log agentlog.Logger, sampler Sampler, sender Sender, interval time.Duration, reg prometheus.Registerer) *Producer {
	p := &Producer{
		log:      log,
		sampler:  sampler,
		sender:   sender,
		interval: interval,
		droppedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vagent_telemetry_dropped_samples_total",
			Help: "Telemetry samples dropped because the outbound queue was full.",
		}),
		samplesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vagent_telemetry_samples_emitted_total",
			Help: "Telemetry samples successfully enqueued.",
		}),
	}
	if reg != nil {
		reg.MustRegister(p.droppedGauge, p.samplesEmitted)
	}
	return p
}

// Run blocks, sampling every interval until ctx is cancelled. It never
// returns an error: a failed sample is logged and skipped, matching the
// "continues running across reconnects without restart" requirement.
func (p *Producer) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Producer) tick(ctx context.Context) {
	sample, err := p.sampler.Sample(ctx)
	if err != nil {
		if p.log != nil {
			p.log.WithError(err).Warn("telemetry sample failed")
		}
		return
	}
	sample.DroppedSamples = p.dropped

	m := message.Message{
		CorrelationID: p.sender.NextCorrelationID(),
		Kind:          message.KindEvent,
		Operation:     message.OpTelemetryReport,
		Payload:       sample.Marshal(),
	}

	if p.sender.TrySend(m) {
		p.samplesEmitted.Inc()
		return
	}

	p.dropped++
	p.droppedGauge.Set(float64(p.dropped))
	if p.log != nil {
		p.log.WithField("dropped_total", p.dropped).Warn("telemetry sample dropped, outbound queue full")
	}
}
