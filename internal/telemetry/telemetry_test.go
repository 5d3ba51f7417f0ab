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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/message"
)

type fakeSampler struct {
	sample message.TelemetrySample
	err    error
}

func (f *fakeSampler) Sample(ctx context.Context) (message.TelemetrySample, error) {
	return f.sample, f.err
}

type fakeSender struct {
	mu       sync.Mutex
	accept   bool
	received []message.Message
	corrSeq  atomic.Uint64
}

func (f *fakeSender) TrySend(m message.Message) bool {
	if !f.accept {
		return false
	}
	f.mu.Lock()
	f.received = append(f.received, m)
	f.mu.Unlock()
	return true
}

func (f *fakeSender) NextCorrelationID() uint64 { return f.corrSeq.Add(1) }

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestProducerEmitsSampleEachInterval(t *testing.T) {
	sampler := &fakeSampler{sample: message.TelemetrySample{MemTotal: 1024}}
	sender := &fakeSender{accept: true}
	p := NewProducer(nil, sampler, sender, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	require.GreaterOrEqual(t, sender.count(), 3)
}

func TestProducerDropsSampleWhenQueueFull(t *testing.T) {
	sampler := &fakeSampler{sample: message.TelemetrySample{}}
	sender := &fakeSender{accept: false}
	p := NewProducer(nil, sampler, sender, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	require.Equal(t, 0, sender.count())
	require.Greater(t, p.dropped, uint64(0))
}

func TestProducerSkipsFailedSampleWithoutPanicking(t *testing.T) {
	sampler := &fakeSampler{err: context.DeadlineExceeded}
	sender := &fakeSender{accept: true}
	p := NewProducer(nil, sampler, sender, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	require.Equal(t, 0, sender.count())
}

func TestProducerStopsPromptlyOnContextCancel(t *testing.T) {
	sampler := &fakeSampler{sample: message.TelemetrySample{}}
	sender := &fakeSender{accept: true}
	p := NewProducer(nil, sampler, sender, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return promptly after cancellation")
	}
}
