package openssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/net/nettest"

	"github.com/tredeske/usshagent/uagent"
	"github.com/tredeske/usshagent/uagent/keys"
)

func testIdentity(t *testing.T) uagent.ParsedKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return keys.Wrap(sshPub, "test@host")
}

func TestDialerGetIdentitiesEndToEnd(t *testing.T) {
	l, err := nettest.NewLocalListener("unix")
	require.NoError(t, err)
	defer l.Close()

	identity := testIdentity(t)
	kp := keys.New()

	go Serve(l, kp,
		func(e *uagent.Engine, req *uagent.ServerRequest) {
			require.NoError(t, e.IdentitiesReply(req, []uagent.IdentitySource{identity}))
		},
		nil,
	)

	d := &Dialer{
		Keys: kp,
		Dial: func() (net.Conn, error) { return net.Dial(l.Addr().Network(), l.Addr().String()) },
	}

	done := make(chan struct{})
	var got []uagent.Identity
	var gotErr error
	d.GetIdentities(func(ids []uagent.Identity, err error) {
		got, gotErr = ids, err
		close(done)
	})
	<-done

	require.NoError(t, gotErr)
	require.Len(t, got, 1)
	require.Equal(t, identity.Marshal(), got[0].Key.Marshal())
	require.Equal(t, "test@host", got[0].Comment)
}

func TestDialerSignEndToEnd(t *testing.T) {
	l, err := nettest.NewLocalListener("unix")
	require.NoError(t, err)
	defer l.Close()

	identity := testIdentity(t)
	kp := keys.New()

	go Serve(l, kp, nil,
		func(e *uagent.Engine, req *uagent.ServerRequest, key uagent.ParsedKey, data []byte, flags uagent.SignFlags) {
			require.Equal(t, []byte("payload"), data)
			require.NoError(t, e.SignReply(req, []byte("raw-signature")))
		},
	)

	d := &Dialer{
		Keys: kp,
		Dial: func() (net.Conn, error) { return net.Dial(l.Addr().Network(), l.Addr().String()) },
	}

	done := make(chan struct{})
	var gotSig []byte
	var gotErr error
	d.Sign(identity, []byte("payload"), nil, func(sig []byte, err error) {
		gotSig, gotErr = sig, err
		close(done)
	})
	<-done

	require.NoError(t, gotErr)
	require.Equal(t, []byte("raw-signature"), gotSig)
}

func TestListenCreatesOwnerOnlySocket(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/agent.sock"

	l, err := Listen(path)
	require.NoError(t, err)
	defer l.Close()

	require.Equal(t, "unix", l.Addr().Network())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDialerDialFailureReportsTransportFailure(t *testing.T) {
	d := &Dialer{
		Dial: func() (net.Conn, error) { return nil, errors.New("boom") },
	}

	var gotErr error
	d.GetIdentities(func(ids []uagent.Identity, err error) { gotErr = err })
	require.ErrorIs(t, gotErr, uagent.ErrTransportFailure)
}
