package uagent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// signOnlyAgent_ overrides Sign but leaves GetIdentities to BaseAgent's
// default, per spec.md section 6's "embed and override only what you
// support" contract.
type signOnlyAgent_ struct {
	BaseAgent
}

func (signOnlyAgent_) Sign(pubkey ParsedKey, data []byte, opts *SignOptions, cb func([]byte, error)) {
	cb([]byte("signed"), nil)
}

func TestBaseAgentDefaultsReportMissingImplementation(t *testing.T) {
	var a BaseAgent

	var gotErr error
	a.GetIdentities(func(ids []Identity, err error) { gotErr = err })
	require.ErrorIs(t, gotErr, ErrMissingImplementation)

	var gotSigErr error
	a.Sign(nil, nil, nil, func(sig []byte, err error) { gotSigErr = err })
	require.ErrorIs(t, gotSigErr, ErrMissingImplementation)
}

func TestBaseAgentEmbedOverridesOnlyOneMethod(t *testing.T) {
	a := signOnlyAgent_{}

	var gotErr error
	a.GetIdentities(func(ids []Identity, err error) { gotErr = err })
	require.ErrorIs(t, gotErr, ErrMissingImplementation, "unoverridden method still reports it")

	var gotSig []byte
	a.Sign(nil, nil, nil, func(sig []byte, err error) { gotSig = sig })
	require.Equal(t, []byte("signed"), gotSig)
}
