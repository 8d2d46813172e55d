// Package openssh adapts uagent's client-mode Engine to an OpenSSH-style
// transport: a duplex byte stream reached by dialing a local unix-domain
// socket, per spec.md section 4.5.
package openssh

import (
	"io"
	"net"

	"github.com/tredeske/usshagent/uerr"
	"github.com/tredeske/usshagent/ulog"
	"github.com/tredeske/usshagent/usync"

	"github.com/tredeske/usshagent/uagent"
)

// Dialer opens a fresh connection per call, matching spec.md section
// 4.5's "each operation opens a fresh connection ... and destroys the
// stream on completion." The zero value dials a unix socket at Endpoint.
type Dialer struct {
	// Endpoint is the unix-domain socket path, typically $SSH_AUTH_SOCK.
	Endpoint string

	// Dial overrides how a connection is opened, for tests. Defaults to
	// net.Dial("unix", Endpoint).
	Dial func() (net.Conn, error)

	// Keys parses identity blobs.  There is no default; callers must set
	// it (keys.New() is the usual choice).
	Keys uagent.KeyParser
}

func (d *Dialer) dial() (net.Conn, error) {
	if d.Dial != nil {
		return d.Dial()
	}
	return net.Dial("unix", d.Endpoint)
}

// GetIdentities opens a connection, issues exactly one REQUEST_IDENTITIES,
// and closes the connection on completion.  At-most-one invocation of cb
// is guaranteed, per spec.md section 4.5.
func (d *Dialer) GetIdentities(cb func([]uagent.Identity, error)) {
	conn, err := d.dial()
	if err != nil {
		cb(nil, uerr.Chainf(uagent.ErrTransportFailure, "dial %s: %s", d.Endpoint, err))
		return
	}

	var once usync.AtomicBool
	done := func(keys []uagent.Identity, err error) {
		if once.SetUnlessSet() {
			conn.Close()
			cb(keys, err)
		}
	}

	engine := uagent.NewEngine(uagent.RoleClient, conn, d.Keys)

	// GetIdentities only enqueues state and writes the request frame; it
	// must run before pump_ starts reading so the two goroutines never
	// touch the engine at the same time, per spec.md section 5's
	// single-owner model.
	engine.GetIdentities(func(keys []uagent.Identity, err error) {
		done(keys, err)
	})

	go pump_(conn, engine)
}

// Sign opens a connection, issues exactly one SIGN_REQUEST, and closes
// the connection on completion.
func (d *Dialer) Sign(
	pubkey uagent.ParsedKey,
	data []byte,
	opts *uagent.SignOptions,
	cb func([]byte, error),
) {
	conn, err := d.dial()
	if err != nil {
		cb(nil, uerr.Chainf(uagent.ErrTransportFailure, "dial %s: %s", d.Endpoint, err))
		return
	}

	var once usync.AtomicBool
	done := func(sig []byte, err error) {
		if once.SetUnlessSet() {
			conn.Close()
			cb(sig, err)
		}
	}

	engine := uagent.NewEngine(uagent.RoleClient, conn, d.Keys)

	engine.Sign(pubkey, data, opts, func(sig []byte, err error) {
		done(sig, err)
	})

	go pump_(conn, engine)
}

// pump_ reads conn until it closes or errors, feeding every chunk to
// engine.  Its own close/error maps to a single TransportFailure, per
// spec.md section 4.5: "close, end, and error events ... all map to a
// single failure that aborts any pending callback exactly once." The
// engine itself delivers that failure to the pending callback (via
// Close's sweep of pending requests), so pump_ has nothing further to
// report once Ingest or Close has run.
func pump_(conn net.Conn, engine *uagent.Engine) {
	buf := make([]byte, 32*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if ingestErr := engine.Ingest(buf[:n]); ingestErr != nil {
				return // engine already failed and swept its pending request
			}
		}
		if err != nil {
			if err != io.EOF {
				ulog.Debugf("openssh: read agent socket: %s", err)
			}
			engine.Close(uerr.Chainf(uagent.ErrTransportFailure, "connection closed: %s", err))
			return
		}
	}
}
