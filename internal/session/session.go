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

// Package session owns one connection's worth of protocol state: opening the
// Device Endpoint, the Disconnected -> Opening -> Handshaking -> Ready ->
// Draining -> Closed state machine, and the read/write/keepalive loops
// (spec.md §3, §4.D). It generalizes the teacher's runner/startStop
// Start/Stop lifecycle idiom (tests only, see DESIGN.md) into a
// reconnect-forever supervised loop built on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/config"
	"github.com/nabbar/vagent/internal/device"
	"github.com/nabbar/vagent/internal/frame"
	"github.com/nabbar/vagent/internal/message"
)

// State is the Session's connection-lifecycle state (spec.md §3).
type State uint8

const (
	Disconnected State = iota
	Opening
	Handshaking
	Ready
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Opening:
		return "Opening"
	case Handshaking:
		return "Handshaking"
	case Ready:
		return "Ready"
	case Draining:
		return "Draining"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Dispatcher is the narrow capability the Session needs from the Dispatcher:
// hand it an inbound Request, and cancel everything in flight when draining.
// Defined here (not imported from package dispatch) so dispatch's
// RequestContext/Registration types never need to know about Session -
// package dispatch implements this interface's shape through its own
// *Dispatcher without either package importing the other's concrete type in
// the reverse direction.
type Dispatcher interface {
	Dispatch(ctx context.Context, m message.Message)
	CancelAll()
}

// OpenFunc opens the Device Endpoint. Injected so tests can substitute an
// in-memory pipe for the real virtio-serial device (spec.md §4.A's Endpoint
// is already an interface for exactly this reason).
type OpenFunc func(path string) (device.Endpoint, error)

// HelloFactory builds this build's handshake payload; supplied by cmd/agent
// so session never needs to import internal/agentversion directly.
type HelloFactory func() message.HelloEvent

// Session owns one virtio-serial connection's lifecycle and reconnects
// forever until Stop is called (spec.md §3 invariant 6, §4.D).
type Session struct {
	cfg        config.Configuration
	log        agentlog.Logger
	open       OpenFunc
	devicePath string
	dispatcher Dispatcher
	hello      HelloFactory

	state atomic.Int32

	mu  sync.RWMutex
	out chan message.Message

	corrSeq atomic.Uint64

	lastRead  atomic.Int64
	lastWrite atomic.Int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds a Session. Start must be called to begin the reconnect loop.
func New(cfg config.Configuration, log agentlog.Logger, open OpenFunc, dispatcher Dispatcher, hello HelloFactory) *Session {
	s := &Session{
		cfg:        cfg,
		log:        log,
		open:       open,
		devicePath: cfg.DevicePath,
		dispatcher: dispatcher,
		hello:      hello,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	s.state.Store(int32(Disconnected))
	return s
}

// State returns the Session's current connection state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Start runs the reconnect-forever loop until Stop is called. It returns once
// the loop has fully wound down, mirroring the teacher's runner start/stop
// contract of a blocking Start paired with an idempotent Stop.
func (s *Session) Start(ctx context.Context) {
	defer close(s.doneCh)

	backoff := s.cfg.ReconnectBackoffInitial
	for {
		select {
		case <-s.stopCh:
			s.setState(Closed)
			return
		case <-ctx.Done():
			s.setState(Closed)
			return
		default:
		}

		connected := s.runOnce(ctx)
		if connected {
			backoff = s.cfg.ReconnectBackoffInitial
		} else {
			backoff *= 2
			if backoff > s.cfg.ReconnectBackoffMax {
				backoff = s.cfg.ReconnectBackoffMax
			}
		}

		select {
		case <-s.stopCh:
			s.setState(Closed)
			return
		case <-ctx.Done():
			s.setState(Closed)
			return
		case <-time.After(backoff):
		}
	}
}

// Stop signals the reconnect loop to exit and blocks until it has (spec.md
// §4.H "graceful shutdown").
func (s *Session) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	<-s.doneCh
}

// runOnce drives one connection attempt end to end: Opening, Handshaking,
// Ready, then Draining/Closed on any failure. It reports whether the
// connection ever reached Ready, which is what resets the backoff (spec.md
// §4.D "reconnect loop with exponential backoff").
func (s *Session) runOnce(ctx context.Context) (reachedReady bool) {
	s.setState(Opening)

	ep, err := s.open(s.devicePath)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("device open failed, retrying")
		}
		return false
	}
	defer ep.Close()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := frame.NewReader(ep, s.cfg.MaxFrameBytes)
	writer := frame.NewWriter(ep, s.cfg.MaxFrameBytes)

	s.mu.Lock()
	s.out = make(chan message.Message, s.cfg.OutboundQueueCapacity)
	out := s.out
	s.mu.Unlock()

	s.setState(Handshaking)
	if err := s.handshake(connCtx, writer); err != nil {
		if s.log != nil {
			s.log.WithError(err).Warn("handshake failed, retrying")
		}
		return false
	}

	s.setState(Ready)
	if s.log != nil {
		s.log.Info("session ready")
	}

	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)

	var wg sync.WaitGroup
	wg.Add(3)

	readErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		defer s.recoverLoop("read-loop", readErr)
		readErr <- s.readLoop(connCtx, reader)
	}()

	writeErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		defer s.recoverLoop("write-loop", writeErr)
		writeErr <- s.writeLoop(connCtx, writer, out, ep)
	}()

	keepaliveErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		defer s.recoverLoop("keepalive-loop", keepaliveErr)
		keepaliveErr <- s.keepaliveLoop(connCtx, out)
	}()

	var stopErr error
	select {
	case stopErr = <-readErr:
	case stopErr = <-writeErr:
	case stopErr = <-keepaliveErr:
	case <-ep.Disconnected():
		stopErr = frame.ErrDisconnected
	case <-s.stopCh:
		stopErr = nil
	case <-ctx.Done():
		stopErr = ctx.Err()
	}

	s.setState(Draining)
	s.dispatcher.CancelAll()
	cancel()
	// Close (not just MarkDisconnected) is what actually unblocks a
	// goroutine parked in a blocking Read/Write on the real device; the
	// deferred Close above then becomes a harmless no-op/double-close.
	ep.Close()
	wg.Wait()

	s.mu.Lock()
	s.out = nil
	s.mu.Unlock()

	if stopErr != nil && s.log != nil && !errors.Is(stopErr, context.Canceled) {
		s.log.WithError(stopErr).Warn("session ended")
	}

	return true
}

// handshake sends the hello Event that opens every fresh Session (spec.md
// §4.D). The protocol is Event-only at handshake time: there is no reply to
// wait for, so a successful frame write is sufficient to advance to Ready.
func (s *Session) handshake(ctx context.Context, w *frame.Writer) error {
	h := s.hello()
	m := message.Message{
		CorrelationID: s.NextCorrelationID(),
		Kind:          message.KindEvent,
		Operation:     message.OpHello,
		Payload:       h.Marshal(),
	}
	raw, err := message.Encode(m)
	if err != nil {
		return err
	}
	return w.WriteFrame(raw)
}

// readLoop decodes frames and routes Requests to the Dispatcher. A frame read
// error ends the Session (not the process); a frame whose Message fails to
// decode is logged and dropped, and reading goes on. The Dispatcher
// itself is never blocked by a slow peer since Dispatch spawns its own
// goroutine per request (spec.md §4.C, §4.E).
func (s *Session) readLoop(ctx context.Context, r *frame.Reader) error {
	for {
		raw, err := r.ReadFrame()
		if err != nil {
			return err
		}
		s.lastRead.Store(time.Now().UnixNano())

		m, err := message.Decode(raw)
		if err != nil {
			if s.log != nil {
				s.log.WithError(err).Warn("dropping malformed frame")
			}
			continue
		}

		if !m.IsRequest() {
			// Events/Responses from the host are not part of this protocol
			// direction (the agent only ever answers Requests and emits its
			// own Events); tolerate and ignore rather than tearing down.
			continue
		}

		s.dispatcher.Dispatch(ctx, m)
	}
}

// writeLoop serializes every outbound frame - Responses and Events alike -
// through a single goroutine, which is what gives the wire its per-handler
// emission-order guarantee (spec.md §5).
func (s *Session) writeLoop(ctx context.Context, w *frame.Writer, out <-chan message.Message, ep device.Endpoint) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-out:
			if !ok {
				return nil
			}
			raw, err := message.Encode(m)
			if err != nil {
				if s.log != nil {
					s.log.WithError(err).Error("failed to encode outbound message")
				}
				continue
			}
			if err := w.WriteFrame(raw); err != nil {
				return err
			}
			s.lastWrite.Store(time.Now().UnixNano())
		}
	}
}

// keepaliveLoop emits a ping Event whenever half a telemetry interval has
// passed with no other frame written, and ends the Session once a full
// telemetry interval times three has passed without a single inbound byte
// from the peer (spec.md §4.D "keepalive"). A non-positive interval (tests,
// or a deliberately disabled telemetry stream) disables both checks.
func (s *Session) keepaliveLoop(ctx context.Context, out chan<- message.Message) error {
	interval := s.cfg.TelemetryInterval
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	pingEvery := interval / 2
	staleAfter := interval * 3

	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if time.Since(time.Unix(0, s.lastRead.Load())) >= staleAfter {
				return errPeerStalled
			}
			if time.Since(time.Unix(0, s.lastWrite.Load())) >= pingEvery {
				select {
				case out <- message.Message{
					CorrelationID: s.NextCorrelationID(),
					Kind:          message.KindEvent,
					Operation:     message.OpPing,
				}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// recoverLoop converts a panic raised inside readLoop, writeLoop, or
// keepaliveLoop into a logged error delivered on errCh, which runOnce's
// select treats exactly like any other loop exit: Draining, cancel,
// reconnect (spec.md §4.H "never terminates the process"). Mirrors the
// teacher's supervisor.recoverLoop, one level further in since that one
// only reaches the goroutine that calls Start, not the loops runOnce
// spawns beneath it.
func (s *Session) recoverLoop(component string, errCh chan<- error) {
	if r := recover(); r != nil {
		if s.log != nil {
			s.log.WithFields(agentlog.Fields{
				"component": component,
				"panic":     fmt.Sprintf("%v", r),
				"stack":     string(debug.Stack()),
			}).Error("session loop panicked")
		}
		select {
		case errCh <- fmt.Errorf("session: %s panicked: %v", component, r):
		default:
		}
	}
}

// NextCorrelationID mints a fresh outbound correlation id, used by the
// handshake and by handler Events (spec.md §3).
func (s *Session) NextCorrelationID() uint64 {
	return s.corrSeq.Add(1)
}

// Send enqueues m, blocking until the outbound queue accepts it or ctx is
// done. This is the dispatch.Sender method handlers ultimately call through
// their RequestContext.
func (s *Session) Send(ctx context.Context, m message.Message) error {
	s.mu.RLock()
	out := s.out
	s.mu.RUnlock()

	if out == nil {
		return errNotReady
	}

	select {
	case out <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopCh:
		return errNotReady
	}
}

// TrySend enqueues m without blocking, used by the Telemetry Producer so a
// slow or absent Session never stalls sampling (spec.md §4.G "non-blocking
// enqueue; a full queue drops the sample").
func (s *Session) TrySend(m message.Message) bool {
	s.mu.RLock()
	out := s.out
	s.mu.RUnlock()

	if out == nil {
		return false
	}

	select {
	case out <- m:
		return true
	default:
		return false
	}
}

var errNotReady = errors.New("session: not ready")
var errPeerStalled = errors.New("session: peer stalled, no inbound byte within keepalive window")
