package agentctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tredeske/usshagent/uagent"
)

type fakeKey_ struct {
	typ, blob, comment string
}

func (k *fakeKey_) Type() string        { return k.typ }
func (k *fakeKey_) Comment() string     { return k.comment }
func (k *fakeKey_) SetComment(c string) { k.comment = c }
func (k *fakeKey_) Marshal() []byte     { return []byte(k.blob) }

type fakeKeyParser_ struct{}

func (fakeKeyParser_) Parse(blob []byte) (uagent.ParsedKey, error) {
	s := string(blob)
	if s == "reject" {
		return nil, errors.New("rejected")
	}
	return &fakeKey_{typ: "ssh-ed25519", blob: s}, nil
}

type fakeAgent_ struct {
	identities  []uagent.Identity
	err         error
	calls       int
	signCalls   int
	signResult  []byte
	signErr     error
}

func (a *fakeAgent_) GetIdentities(cb func([]uagent.Identity, error)) {
	a.calls++
	cb(a.identities, a.err)
}

func (a *fakeAgent_) Sign(
	pubkey uagent.ParsedKey, data []byte, opts *uagent.SignOptions, cb func([]byte, error),
) {
	a.signCalls++
	cb(a.signResult, a.signErr)
}

func TestInitFreshToLoaded(t *testing.T) {
	agent := &fakeAgent_{identities: []uagent.Identity{
		{Key: &fakeKey_{typ: "ssh-ed25519", blob: "one"}, Comment: "one@host"},
		{Key: &fakeKey_{typ: "ssh-ed25519", blob: "reject"}, Comment: "skip-me"},
	}}
	ctx := New(agent, fakeKeyParser_{})

	var gotErr error
	ctx.Init(func(err error) { gotErr = err })

	require.NoError(t, gotErr)
	require.Equal(t, 1, agent.calls)
	require.Equal(t, 1, ctx.Len(), "rejected key is dropped")
	require.Equal(t, -1, ctx.Pos())
}

func TestInitLoadedCallsBackWithoutRefetch(t *testing.T) {
	agent := &fakeAgent_{identities: []uagent.Identity{
		{Key: &fakeKey_{typ: "ssh-ed25519", blob: "one"}},
	}}
	ctx := New(agent, fakeKeyParser_{})

	ctx.Init(func(error) {})
	ctx.Init(func(error) {})

	require.Equal(t, 1, agent.calls, "identities fetched at most once")
}

func TestInitFailurePermitsRetry(t *testing.T) {
	boom := errors.New("boom")
	agent := &fakeAgent_{err: boom}
	ctx := New(agent, fakeKeyParser_{})

	var gotErr error
	ctx.Init(func(err error) { gotErr = err })
	require.ErrorIs(t, gotErr, boom)
	require.Equal(t, boom, ctx.LoadErr())

	agent.err = nil
	agent.identities = []uagent.Identity{{Key: &fakeKey_{typ: "ssh-ed25519", blob: "one"}}}
	ctx.Init(func(err error) { gotErr = err })
	require.NoError(t, gotErr)
	require.Equal(t, 2, agent.calls)
}

func TestNextKeyCursorAdvancesAndExhausts(t *testing.T) {
	agent := &fakeAgent_{identities: []uagent.Identity{
		{Key: &fakeKey_{typ: "ssh-ed25519", blob: "one"}},
		{Key: &fakeKey_{typ: "ssh-ed25519", blob: "two"}},
	}}
	ctx := New(agent, fakeKeyParser_{})
	ctx.Init(func(error) {})

	id, ok := ctx.NextKey()
	require.True(t, ok)
	require.Equal(t, "one", string(id.Key.Marshal()))
	require.Equal(t, 0, ctx.Pos())

	cur, ok := ctx.CurrentKey()
	require.True(t, ok)
	require.Equal(t, "one", string(cur.Key.Marshal()))

	id, ok = ctx.NextKey()
	require.True(t, ok)
	require.Equal(t, "two", string(id.Key.Marshal()))

	_, ok = ctx.NextKey()
	require.False(t, ok)
	require.Equal(t, -1, ctx.Pos())

	ctx.Reset()
	require.Equal(t, -1, ctx.Pos())
	_, ok = ctx.CurrentKey()
	require.False(t, ok)
}

func TestNextKeyBeforeLoaded(t *testing.T) {
	ctx := New(&fakeAgent_{}, fakeKeyParser_{})
	_, ok := ctx.NextKey()
	require.False(t, ok)
	require.Equal(t, 0, ctx.Len())
	require.Empty(t, ctx.Keys())
}

func TestSignForwardsToAgent(t *testing.T) {
	agent := &fakeAgent_{signResult: []byte("sig")}
	ctx := New(agent, fakeKeyParser_{})

	var got []byte
	ctx.Sign(&fakeKey_{typ: "ssh-ed25519"}, []byte("data"), nil, func(sig []byte, err error) {
		got = sig
	})
	require.Equal(t, 1, agent.signCalls)
	require.Equal(t, []byte("sig"), got)
}
