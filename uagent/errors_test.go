package uagent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tredeske/usshagent/uerr"
)

func TestErrorsAreMatchableThroughChainf(t *testing.T) {
	wrapped := uerr.Chainf(ErrMalformedMessage, "uagent: decode identity %d blob", 3)
	require.True(t, errors.Is(wrapped, ErrMalformedMessage))
	require.False(t, errors.Is(wrapped, ErrWrongMessageType))
}

func TestMsgNameKnownAndReserved(t *testing.T) {
	require.Equal(t, "SIGN_REQUEST", msgName(MsgSignRequest))
	require.Contains(t, msgName(17), "ADD_IDENTITY")
	require.Equal(t, "UNKNOWN", msgName(0x63))
}
