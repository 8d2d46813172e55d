package uagent

import (
	"io"

	"github.com/tredeske/usshagent/uerr"
	"github.com/tredeske/usshagent/ulog"
	"github.com/tredeske/usshagent/usync"
)

// Role selects which half of the protocol an Engine plays.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// Engine is the duplex protocol object of spec.md section 4.3/4.4: it
// consumes inbound bytes via Ingest, matches them to outstanding state
// per its Role, and writes outbound frames to W as they're produced.
//
// An Engine is single-threaded-cooperative, per spec.md section 5: every
// method either completes synchronously or schedules a callback invoked
// from a later Ingest/reply call.  It is not safe for concurrent use.
type Engine struct {
	Role Role
	W    io.Writer
	Keys KeyParser

	framer *Framer
	dbg    *ulog.Debug

	failed  usync.AtomicBool
	failErr error

	// client role state - see client.go
	pending []*clientRequest_

	// server role state - see server.go
	inbound      []*inboundRequest_
	onIdentities func(*ServerRequest)
	onSign       func(req *ServerRequest, key ParsedKey, data []byte, flags SignFlags)
}

// NewEngine constructs an Engine in the given role.  w receives encoded
// outbound frames as they are produced; kp parses inbound public-key
// blobs.
func NewEngine(role Role, w io.Writer, kp KeyParser) *Engine {
	return &Engine{
		Role:   role,
		W:      w,
		Keys:   kp,
		framer: NewFramer(),
		dbg:    ulog.NewDebug("uagent"),
	}
}

// Ingest feeds newly-received bytes to the framer and dispatches every
// frame that completes as a result, in wire order, per spec.md section 5:
// "bytes delivered to ingest are processed in order... strictly
// left-to-right."
//
// A decode error on the client role is fatal to the Engine (spec.md
// section 7); the Engine will return that same error from every
// subsequent call until closed.  Server-role errors are handled inline
// (a FAILURE reply) and never reach here as a return value.
func (e *Engine) Ingest(chunk []byte) error {
	if e.failed.IsSet() {
		return e.failErr
	}
	e.framer.Ingest(chunk)
	for {
		typ, payload, ok := e.framer.ReadNextFrame()
		if !ok {
			return nil
		}
		e.dbg.F("ingest: %s role=%s len=%d", msgName(typ), e.Role, len(payload))

		var err error
		if e.Role == RoleServer {
			err = e.handleServerFrame(typ, payload)
		} else {
			err = e.handleClientFrame(typ, payload)
		}
		if err != nil {
			e.fail(err)
			return err
		}
	}
}

// ReadNextFrame exposes the framer directly, mirroring spec.md section 6's
// "read_next_frame() -> bytes | none".  Ingest already drains every frame
// it decodes, so under normal operation this returns ok=false; it exists
// for callers that want to inspect framing independent of role dispatch.
func (e *Engine) ReadNextFrame() (typ byte, payload []byte, ok bool) {
	return e.framer.ReadNextFrame()
}

// Failed reports whether the Engine has been torn down by a prior decode
// or transport error.
func (e *Engine) Failed() (bool, error) {
	if e.failed.IsSet() {
		return true, e.failErr
	}
	return false, nil
}

// fail marks the Engine as dead and, for the client role, sweeps every
// pending request with err.
func (e *Engine) fail(err error) {
	if !e.failed.SetUnlessSet() {
		return
	}
	e.failErr = err
	if e.Role == RoleClient {
		pending := e.pending
		e.pending = nil
		for _, p := range pending {
			p.fail(err)
		}
	}
}

// Close tears the Engine down as if the transport had failed, per
// spec.md section 5's "end, close, and error each trigger a single
// cleanup path that fails every pending request callback once."
func (e *Engine) Close(cause error) {
	if cause == nil {
		cause = ErrTransportFailure
	} else {
		cause = uerr.Chainf(ErrTransportFailure, "%s", cause.Error())
	}
	e.fail(cause)
}

func (e *Engine) write(frame []byte) error {
	_, err := e.W.Write(frame)
	if err != nil {
		failErr := uerr.Chainf(ErrTransportFailure, "write frame: %s", err)
		e.fail(failErr)
		return failErr
	}
	return nil
}
