package openssh

import (
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/tredeske/usshagent/uerr"
	"github.com/tredeske/usshagent/ulog"

	"github.com/tredeske/usshagent/uagent"
)

// Listen creates a unix-domain socket at path with mode 0600, the
// permissions an OpenSSH-compatible agent socket requires so only its
// owner can reach it.  Modeled on unet/socket.go's direct-syscall
// approach to socket options, adapted here to the umask trick net.Listen
// needs for socket-file permissions.
func Listen(path string) (net.Listener, error) {
	old := unix.Umask(0177) // leaves 0600 after the usual 0777 socket default
	defer unix.Umask(old)

	os.Remove(path) // stale socket from a prior crash, per OpenSSH's own agent

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, uerr.Chainf(uagent.ErrTransportFailure, "listen on %s: %s", path, err)
	}
	return l, nil
}

// OnIdentities and OnSign hand the owner both the request and the Engine
// that produced it, since the reply operations (IdentitiesReply,
// SignReply, FailureReply) are methods on that Engine.
type OnIdentities func(e *uagent.Engine, req *uagent.ServerRequest)
type OnSign func(e *uagent.Engine, req *uagent.ServerRequest, key uagent.ParsedKey, data []byte, flags uagent.SignFlags)

// Serve accepts connections on l and wires each one to a fresh
// server-mode Engine running onIdentities/onSign, until l is closed.
// Every connection gets its own Engine, per spec.md section 5: an engine
// is owned by a single logical caller.
func Serve(l net.Listener, kp uagent.KeyParser, onIdentities OnIdentities, onSign OnSign) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return uerr.Chainf(uagent.ErrTransportFailure, "accept: %s", err)
		}
		go serveConn_(conn, kp, onIdentities, onSign)
	}
}

func serveConn_(conn net.Conn, kp uagent.KeyParser, onIdentities OnIdentities, onSign OnSign) {
	defer conn.Close()

	var engine *uagent.Engine
	engine = uagent.NewServerEngine(conn, kp,
		func(req *uagent.ServerRequest) {
			if onIdentities != nil {
				onIdentities(engine, req)
			} else {
				engine.FailureReply(req)
			}
		},
		func(req *uagent.ServerRequest, key uagent.ParsedKey, data []byte, flags uagent.SignFlags) {
			if onSign != nil {
				onSign(engine, req, key, data, flags)
			} else {
				engine.FailureReply(req)
			}
		},
	)

	buf := make([]byte, 32*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if ingestErr := engine.Ingest(buf[:n]); ingestErr != nil {
				return
			}
		}
		if err != nil {
			ulog.Debugf("openssh: serve connection: %s", err)
			return
		}
	}
}
