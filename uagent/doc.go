// Package uagent implements the core of the SSH authentication-agent wire
// protocol described in draft-miller-ssh-agent-04: a length-prefixed
// framing codec plus client and server state machines for the two
// operations used during SSH authentication, REQUEST_IDENTITIES and
// SIGN_REQUEST.
//
// The package does not open transports (see uagent/openssh) and does not
// parse or generate SSH public keys itself (see uagent/keys and the
// KeyParser interface) - it consumes bytes, produces bytes, and matches
// requests to replies.
//
// https://datatracker.ietf.org/doc/html/draft-miller-ssh-agent-04
package uagent
