package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func testKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return sshPub
}

func TestParseRoundTrip(t *testing.T) {
	sshPub := testKey(t)

	p := New()
	parsed, err := p.Parse(sshPub.Marshal())
	require.NoError(t, err)

	require.Equal(t, "ssh-ed25519", parsed.Type())
	require.Equal(t, sshPub.Marshal(), parsed.Marshal())
	require.Equal(t, "", parsed.Comment())

	parsed.SetComment("user@host")
	require.Equal(t, "user@host", parsed.Comment())
}

func TestParseRejectsGarbage(t *testing.T) {
	p := New()
	_, err := p.Parse([]byte("not a key"))
	require.Error(t, err)
}

func TestWrap(t *testing.T) {
	sshPub := testKey(t)
	wrapped := Wrap(sshPub, "wrapped@host")
	require.Equal(t, "ssh-ed25519", wrapped.Type())
	require.Equal(t, "wrapped@host", wrapped.Comment())
	require.Equal(t, sshPub.Marshal(), wrapped.Marshal())
}
