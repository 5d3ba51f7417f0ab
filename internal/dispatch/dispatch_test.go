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

package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/message"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []message.Message
	seq  uint64
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, m message.Message) error {
	if f.fail {
		return context.Canceled
	}
	f.mu.Lock()
	f.sent = append(f.sent, m)
	f.mu.Unlock()
	return nil
}

func (f *fakeSender) NextCorrelationID() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq
}

func (f *fakeSender) responses() []message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []message.Message
	for _, m := range f.sent {
		if m.IsResponse() {
			out = append(out, m)
		}
	}
	return out
}

func echoRegistration(op message.Operation, concurrency int) Registration {
	return Registration{
		Operation:      op,
		Decode:         func(b []byte) (any, error) { return b, nil },
		DefaultTimeout: time.Second,
		Concurrency:    concurrency,
		Run: func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
			return payload.([]byte), agenterr.Ok
		},
	}
}

func TestDispatchUnsupportedOperationRespondsWithoutPanic(t *testing.T) {
	sender := &fakeSender{}
	d := New(nil, sender, time.Second, nil)

	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: "does_not_exist"})

	require.Eventually(t, func() bool { return len(sender.responses()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, agenterr.UnsupportedOperation, sender.responses()[0].Status)
}

func TestDispatchMalformedPayloadRespondsMalformed(t *testing.T) {
	sender := &fakeSender{}
	reg := Registration{
		Operation:      message.OpExecute,
		Decode:         func(b []byte) (any, error) { return nil, agenterr.New(agenterr.Malformed, "bad") },
		DefaultTimeout: time.Second,
		Run:            func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) { return nil, agenterr.Ok },
	}
	d := New(nil, sender, time.Second, []Registration{reg})

	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: message.OpExecute})

	require.Eventually(t, func() bool { return len(sender.responses()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, agenterr.Malformed, sender.responses()[0].Status)
}

func TestDispatchDuplicateCorrelationIDRejectedWhileInFlight(t *testing.T) {
	sender := &fakeSender{}
	release := make(chan struct{})
	reg := Registration{
		Operation:      message.OpExecute,
		Decode:         func(b []byte) (any, error) { return b, nil },
		DefaultTimeout: 5 * time.Second,
		Run: func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
			<-release
			return nil, agenterr.Ok
		},
	}
	d := New(nil, sender, 5*time.Second, []Registration{reg})

	d.Dispatch(context.Background(), message.Message{CorrelationID: 7, Kind: message.KindRequest, Operation: message.OpExecute})
	require.Eventually(t, func() bool { return d.InFlightCount() == 1 }, time.Second, time.Millisecond)

	d.Dispatch(context.Background(), message.Message{CorrelationID: 7, Kind: message.KindRequest, Operation: message.OpExecute})

	require.Eventually(t, func() bool { return len(sender.responses()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, agenterr.ProtocolViolation, sender.responses()[0].Status)

	close(release)
	require.Eventually(t, func() bool { return d.InFlightCount() == 0 }, time.Second, time.Millisecond)
}

func TestDispatchConcurrencyCapRespondsBusy(t *testing.T) {
	sender := &fakeSender{}
	release := make(chan struct{})
	reg := echoRegistration(message.OpExecute, 1)
	reg.Run = func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
		<-release
		return nil, agenterr.Ok
	}
	d := New(nil, sender, 5*time.Second, []Registration{reg})

	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: message.OpExecute})
	require.Eventually(t, func() bool { return d.InFlightCount() == 1 }, time.Second, time.Millisecond)

	d.Dispatch(context.Background(), message.Message{CorrelationID: 2, Kind: message.KindRequest, Operation: message.OpExecute})

	require.Eventually(t, func() bool { return len(sender.responses()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, agenterr.Busy, sender.responses()[0].Status)

	close(release)
}

func TestDispatchHandlerPanicBecomesInternal(t *testing.T) {
	sender := &fakeSender{}
	reg := Registration{
		Operation:      message.OpExecute,
		Decode:         func(b []byte) (any, error) { return b, nil },
		DefaultTimeout: time.Second,
		Run: func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
			panic("boom")
		},
	}
	d := New(nil, sender, time.Second, []Registration{reg})

	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: message.OpExecute})

	require.Eventually(t, func() bool { return len(sender.responses()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, agenterr.Internal, sender.responses()[0].Status)
}

func TestDispatchTimeoutClampedToMaxExecTimeout(t *testing.T) {
	sender := &fakeSender{}
	var observedDeadline time.Time
	reg := Registration{
		Operation:      message.OpExecute,
		Decode:         func(b []byte) (any, error) { return b, nil },
		DefaultTimeout: time.Second,
		Timeout: func(payload any) (time.Duration, bool) {
			return time.Hour, true
		},
		Run: func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
			observedDeadline = rc.Deadline
			return nil, agenterr.Ok
		},
	}
	d := New(nil, sender, 50*time.Millisecond, []Registration{reg})

	start := time.Now()
	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: message.OpExecute})

	require.Eventually(t, func() bool { return len(sender.responses()) == 1 }, time.Second, time.Millisecond)
	require.True(t, observedDeadline.Sub(start) <= 200*time.Millisecond)
}

func TestDispatchFSFreezeAndThawAreGloballySerialized(t *testing.T) {
	sender := &fakeSender{}
	var mu sync.Mutex
	var active int
	var maxActive int

	run := func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil, agenterr.Ok
	}

	freeze := Registration{Operation: message.OpFSFreeze, Decode: func(b []byte) (any, error) { return b, nil }, DefaultTimeout: time.Second, Run: run}
	thaw := Registration{Operation: message.OpFSThaw, Decode: func(b []byte) (any, error) { return b, nil }, DefaultTimeout: time.Second, Run: run}
	d := New(nil, sender, time.Second, []Registration{freeze, thaw})

	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: message.OpFSFreeze})
	d.Dispatch(context.Background(), message.Message{CorrelationID: 2, Kind: message.KindRequest, Operation: message.OpFSThaw})

	require.Eventually(t, func() bool { return len(sender.responses()) == 2 }, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, maxActive)
}

func TestDispatchCancelAllCancelsRunningHandlers(t *testing.T) {
	sender := &fakeSender{}
	cancelled := make(chan struct{})
	reg := Registration{
		Operation:      message.OpExecute,
		Decode:         func(b []byte) (any, error) { return b, nil },
		DefaultTimeout: 10 * time.Second,
		Run: func(rc *RequestContext, payload any) ([]byte, agenterr.Kind) {
			<-rc.Context().Done()
			close(cancelled)
			return nil, agenterr.Cancelled
		},
	}
	d := New(nil, sender, 10*time.Second, []Registration{reg})

	d.Dispatch(context.Background(), message.Message{CorrelationID: 1, Kind: message.KindRequest, Operation: message.OpExecute})
	require.Eventually(t, func() bool { return d.InFlightCount() == 1 }, time.Second, time.Millisecond)

	d.CancelAll()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("handler was not cancelled")
	}
}
