package uagent

import "github.com/tredeske/usshagent/uerr"

// the semantic error kinds of spec.md section 7.  Match with errors.Is -
// wrapped instances still compare equal through uerr.Chainf's Unwrap.
const (
	ErrTransportFailure      = uerr.Const("uagent: transport failure")
	ErrUnexpectedMessage     = uerr.Const("uagent: unexpected message from peer")
	ErrWrongMessageType      = uerr.Const("uagent: wrong message type")
	ErrMalformedMessage      = uerr.Const("uagent: malformed message")
	ErrMalformedSignature    = uerr.Const("uagent: malformed OpenSSH signature format")
	ErrAgentFailure          = uerr.Const("uagent: agent responded with failure")
	ErrInvalidArgument       = uerr.Const("uagent: invalid argument")
	ErrMissingImplementation = uerr.Const("uagent: missing implementation")
)
