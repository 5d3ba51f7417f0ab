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

// Package dispatch routes each inbound Request to its registered handler
// and enforces per-request concurrency, cancellation, and deadlines
// (spec.md §4.E). The per-operation concurrency caps generalize the
// teacher's semaphore/sem package (NewWorker/DeferWorker, tests only - see
// DESIGN.md) over the real golang.org/x/sync/semaphore.Weighted the
// teacher's own go.mod already depends on directly.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/vagent/internal/agenterr"
	"github.com/nabbar/vagent/internal/agentlog"
	"github.com/nabbar/vagent/internal/message"
)

// Sender is the narrow outbound capability a Dispatcher needs: it must never
// see the rest of Session's state (spec.md §9 "cyclic references ... none
// are necessary").
type Sender interface {
	// Send enqueues m, blocking if the outbound queue is saturated until
	// space frees or ctx is done.
	Send(ctx context.Context, m message.Message) error
	NextCorrelationID() uint64
}

// DecodeFunc turns a Request's opaque payload into the operation's typed
// shape, or returns an error (always wrapped as agenterr.Malformed by the
// message package's payload unmarshalers).
type DecodeFunc func([]byte) (any, error)

// TimeoutFunc extracts a per-request requested timeout from the decoded
// payload, such as execute's Timeout field. Returning ok=false means the
// operation has no such field and the registration's DefaultTimeout applies
// unmodified.
type TimeoutFunc func(payload any) (requested time.Duration, ok bool)

// RunFunc executes the operation. It must honor rc.Context()'s cancellation
// and deadline at every blocking point (spec.md §4.F handler invariants).
type RunFunc func(rc *RequestContext, payload any) (responsePayload []byte, kind agenterr.Kind)

// Registration is one operation's entry in the Dispatcher's registry.
type Registration struct {
	Operation      message.Operation
	Decode         DecodeFunc
	Timeout        TimeoutFunc
	Run            RunFunc
	DefaultTimeout time.Duration
	// Concurrency is the simultaneous-request cap for this operation; 0
	// means unlimited (e.g. the quiesce operations, which are instead
	// globally serialized below).
	Concurrency int
	// OutputCap bounds the handler's own buffering, handed to it via the
	// RequestContext (spec.md §4.F "bound its own memory usage").
	OutputCap uint64
}

// RequestContext is the per-inbound-request capability handed to a running
// handler (spec.md §3 "Request Context").
type RequestContext struct {
	CorrelationID uint64
	Operation     message.Operation
	Deadline      time.Time
	OutputCap     uint64

	ctx    context.Context
	sender Sender
}

// Context carries the request's cancellation signal and deadline; handlers
// MUST pass it to every blocking call they make (exec.CommandContext, file
// I/O with a cancelable reader, etc).
func (rc *RequestContext) Context() context.Context { return rc.ctx }

// Emit sends an Event sharing this request's correlation_id. Handlers use it
// for the optional execute progress heartbeat (spec.md §4.F). Emit blocks
// on backpressure like a Response does, which is what keeps the "messages
// from a single handler appear in emission order" guarantee (spec.md §5)
// true even under a saturated outbound queue.
func (rc *RequestContext) Emit(op message.Operation, payload []byte) error {
	return rc.sender.Send(rc.ctx, message.Message{
		CorrelationID: rc.CorrelationID,
		Kind:          message.KindEvent,
		Operation:     op,
		Payload:       payload,
	})
}

// NewRequestContext builds a RequestContext directly, bypassing the
// registry and concurrency bookkeeping Dispatch otherwise applies. Exposed
// so the handlers package can exercise a RunFunc in isolation from its own
// tests.
func NewRequestContext(ctx context.Context, cid uint64, op message.Operation, deadline time.Time, outputCap uint64, sender Sender) *RequestContext {
	return &RequestContext{
		CorrelationID: cid,
		Operation:     op,
		Deadline:      deadline,
		OutputCap:     outputCap,
		ctx:           ctx,
		sender:        sender,
	}
}

// Dispatcher holds the operation registry and in-flight bookkeeping. One
// Dispatcher serves every connection the Session makes; the Session calls
// CancelAll each time a connection drains, so a fresh connection starts
// with no live in-flight requests (spec.md §3 invariant 6).
type Dispatcher struct {
	log            agentlog.Logger
	sender         Sender
	maxExecTimeout time.Duration

	registry map[message.Operation]Registration
	sems     map[message.Operation]*semaphore.Weighted

	mu       sync.Mutex
	inflight map[uint64]context.CancelFunc

	// fsMu globally serializes fs_freeze/fs_thaw regardless of their
	// per-operation concurrency cap (spec.md §5 "Filesystem ... fs_freeze
	// and fs_thaw are globally serialized by the Dispatcher").
	fsMu sync.Mutex
}

func New(log agentlog.Logger, sender Sender, maxExecTimeout time.Duration, registrations []Registration) *Dispatcher {
	d := &Dispatcher{
		log:            log,
		sender:         sender,
		maxExecTimeout: maxExecTimeout,
		registry:       make(map[message.Operation]Registration, len(registrations)),
		sems:           make(map[message.Operation]*semaphore.Weighted, len(registrations)),
		inflight:       make(map[uint64]context.CancelFunc),
	}
	for _, r := range registrations {
		d.registry[r.Operation] = r
		if r.Concurrency > 0 {
			d.sems[r.Operation] = semaphore.NewWeighted(int64(r.Concurrency))
		}
	}
	return d
}

// SetSender binds the Sender after construction, breaking the Dispatcher/
// Session construction cycle: the Supervisor builds the Dispatcher first
// (handlers need no Sender yet), then the Session (which needs the
// Dispatcher), then binds the Session here as the Dispatcher's Sender. Must
// be called before the Session starts accepting requests.
func (d *Dispatcher) SetSender(s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sender = s
}

// Dispatch handles one decoded inbound Request. It never blocks the caller
// (the Session's read-loop) - every step, including the unsupported-
// operation and duplicate-correlation fast paths, runs on its own goroutine
// so a single slow enqueue never head-of-line-blocks the next frame read
// (spec.md §1(b)).
func (d *Dispatcher) Dispatch(sessionCtx context.Context, m message.Message) {
	go d.handle(sessionCtx, m)
}

func (d *Dispatcher) handle(sessionCtx context.Context, m message.Message) {
	reg, ok := d.registry[m.Operation]
	if !ok {
		d.respond(sessionCtx, m.CorrelationID, agenterr.UnsupportedOperation, nil)
		return
	}

	d.mu.Lock()
	if _, exists := d.inflight[m.CorrelationID]; exists {
		d.mu.Unlock()
		d.respond(sessionCtx, m.CorrelationID, agenterr.ProtocolViolation, nil)
		return
	}
	d.mu.Unlock()

	payload, err := reg.Decode(m.Payload)
	if err != nil {
		d.respond(sessionCtx, m.CorrelationID, agenterr.KindOf(err), nil)
		return
	}

	if sem := d.sems[m.Operation]; sem != nil && !sem.TryAcquire(1) {
		d.respond(sessionCtx, m.CorrelationID, agenterr.Busy, nil)
		return
	}

	effective := reg.DefaultTimeout
	if reg.Timeout != nil {
		if requested, ok := reg.Timeout(payload); ok && requested > 0 {
			effective = requested
		}
	}
	if effective > d.maxExecTimeout {
		effective = d.maxExecTimeout
	}

	ctx, cancel := context.WithTimeout(sessionCtx, effective)

	d.mu.Lock()
	d.inflight[m.CorrelationID] = cancel
	d.mu.Unlock()

	rc := &RequestContext{
		CorrelationID: m.CorrelationID,
		Operation:     m.Operation,
		Deadline:      time.Now().Add(effective),
		OutputCap:     reg.OutputCap,
		ctx:           ctx,
		sender:        d.sender,
	}

	go d.run(reg, rc, payload, cancel)
}

func (d *Dispatcher) run(reg Registration, rc *RequestContext, payload any, cancel context.CancelFunc) {
	defer cancel()
	defer func() {
		d.mu.Lock()
		delete(d.inflight, rc.CorrelationID)
		d.mu.Unlock()
		if sem := d.sems[reg.Operation]; sem != nil {
			sem.Release(1)
		}
	}()

	responsePayload, kind := d.invoke(reg, rc, payload)
	// rc.ctx's own deadline/cancellation already happened inside invoke if
	// relevant; respond is handed context.Background() rather than rc.ctx,
	// so the synthesized Response still reaches the Sender even when rc.ctx
	// itself is done (spec.md §3 invariant 2).
	d.respond(context.Background(), rc.CorrelationID, kind, responsePayload)
}

// invoke runs the handler, converting a panic into agenterr.Internal and a
// context cancellation/deadline into agenterr.Cancelled/Timeout - this is
// the single point of failure isolation spec.md §9 requires ("any
// unexpected fault is caught at the Dispatcher boundary").
func (d *Dispatcher) invoke(reg Registration, rc *RequestContext, payload any) (responsePayload []byte, kind agenterr.Kind) {
	if reg.Operation == message.OpFSFreeze || reg.Operation == message.OpFSThaw {
		d.fsMu.Lock()
		defer d.fsMu.Unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			if d.log != nil {
				d.log.WithField("operation", reg.Operation).WithField("panic", fmt.Sprintf("%v", r)).Error("handler panicked")
			}
			responsePayload = nil
			kind = agenterr.Internal
		}
	}()

	responsePayload, kind = reg.Run(rc, payload)

	if rc.ctx.Err() != nil && kind == agenterr.Ok {
		if rc.ctx.Err() == context.DeadlineExceeded {
			return nil, agenterr.Timeout
		}
		return nil, agenterr.Cancelled
	}

	return responsePayload, kind
}

func (d *Dispatcher) respond(ctx context.Context, cid uint64, kind agenterr.Kind, payload []byte) {
	m := message.Message{CorrelationID: cid, Kind: message.KindResponse, Status: kind, Payload: payload}
	if err := d.sender.Send(ctx, m); err != nil && d.log != nil {
		d.log.WithError(err).WithField("correlation_id", cid).Warn("dropped response, session gone")
	}
}

// CancelAll fires cancellation on every in-flight Request Context, used by
// the Session when entering Draining (spec.md §4.D, §5 "Cancellation &
// timeouts").
func (d *Dispatcher) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cancel := range d.inflight {
		cancel()
	}
}

// InFlightCount reports the number of inbound requests currently running,
// used by the Supervisor's shutdown-grace wait (spec.md §4.H) and by
// status reporting.
func (d *Dispatcher) InFlightCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}
