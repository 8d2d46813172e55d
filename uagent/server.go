package uagent

import (
	"io"

	"github.com/tredeske/usshagent/uerr"
)

// SignFlags carries the decoded hash selection of a SIGN_REQUEST, per
// spec.md section 4.4.  Hash is "", "sha256", or "sha512".
type SignFlags struct {
	Hash string
}

// ServerRequest is spec.md section 3's "Inbound request": created on
// decode, pushed FIFO, and marked with a response when the owner (or the
// engine itself, for a malformed/unknown frame) replies.
type ServerRequest struct {
	requestType byte
	context     string // signature-format identifier, set for SIGN_REQUEST

	response []byte // nil until answered
	answered bool
}

// inboundRequest_ is one FIFO slot of the server role: it holds the
// ServerRequest whose response frame answer emits once every earlier slot
// has been emitted.
type inboundRequest_ struct {
	req *ServerRequest
}

// NewServerEngine constructs an Engine in the server role.  onIdentities
// and onSign are invoked as REQUEST_IDENTITIES/SIGN_REQUEST frames decode
// cleanly, per spec.md section 4.4's public contract.
func NewServerEngine(
	w io.Writer,
	kp KeyParser,
	onIdentities func(*ServerRequest),
	onSign func(req *ServerRequest, key ParsedKey, data []byte, flags SignFlags),
) *Engine {
	e := NewEngine(RoleServer, w, kp)
	e.onIdentities = onIdentities
	e.onSign = onSign
	return e
}

// handleServerFrame decodes one inbound frame, pushes a ServerRequest onto
// the FIFO, and either dispatches an owner event (clean decode) or
// immediately answers with FAILURE (malformed or unknown type), per
// spec.md section 4.4.
func (e *Engine) handleServerFrame(typ byte, payload []byte) error {
	req := &ServerRequest{requestType: typ}
	inbound := &inboundRequest_{req: req}
	e.inbound = append(e.inbound, inbound)

	switch typ {
	case MsgRequestIdentities:
		if e.onIdentities != nil {
			e.onIdentities(req)
		} else {
			e.failureReply(req)
		}

	case MsgSignRequest:
		key, data, flags, ok := e.decodeSignRequest(payload)
		if !ok {
			e.failureReply(req)
		} else if e.onSign != nil {
			req.context = string(sigFormatFor(key, flags))
			e.onSign(req, key, data, flags)
		} else {
			e.failureReply(req)
		}

	default:
		e.failureReply(req)
	}

	return nil
}

// decodeSignRequest decodes a SIGN_REQUEST body per spec.md section 4.3/
// 4.4: string pubkey_blob, string data, u32 flags.  ok=false on any
// underrun or a key blob the KeyParser rejects - both are "malformed",
// answered with FAILURE by the caller.
func (e *Engine) decodeSignRequest(payload []byte) (key ParsedKey, data []byte, flags SignFlags, ok bool) {
	r := newReader_(payload)
	blob, err := r.readString()
	if err != nil {
		return nil, nil, SignFlags{}, false
	}
	d, err := r.readString()
	if err != nil {
		return nil, nil, SignFlags{}, false
	}
	rawFlags, err := r.readUint32()
	if err != nil {
		return nil, nil, SignFlags{}, false
	}

	key, err = e.Keys.Parse(append([]byte(nil), blob...))
	if err != nil {
		return nil, nil, SignFlags{}, false
	}

	if key.Type() == keyTypeRSA {
		switch {
		case rawFlags&FlagRSASHA512 != 0:
			flags.Hash = "sha512"
		case rawFlags&FlagRSASHA256 != 0:
			flags.Hash = "sha256"
		}
	}
	return key, append([]byte(nil), d...), flags, true
}

// sigFormatFor is the algorithm identifier embedded in a sign reply, per
// spec.md section 4.4: a hash flag on an RSA key selects the rsa-sha2-*
// name, otherwise the key's own type name.
func sigFormatFor(key ParsedKey, flags SignFlags) SigFormat {
	if key.Type() == keyTypeRSA {
		switch flags.Hash {
		case "sha256":
			return SigFormatRSASHA256
		case "sha512":
			return SigFormatRSASHA512
		}
	}
	return SigFormat(key.Type())
}

// FailureReply answers req with FAILURE.  Idempotent: a second call on an
// already-answered request is a no-op.
func (e *Engine) FailureReply(req *ServerRequest) error {
	return e.failureReply(req)
}

func (e *Engine) failureReply(req *ServerRequest) error {
	return e.answer(req, EncodeFrame(MsgFailure, nil))
}

// IdentitiesReply answers req with an IDENTITIES_ANSWER built from keys,
// per spec.md section 4.4.  req.requestType must be REQUEST_IDENTITIES.
func (e *Engine) IdentitiesReply(req *ServerRequest, keys []IdentitySource) error {
	if req.requestType != MsgRequestIdentities {
		return uerr.Chainf(ErrInvalidArgument,
			"IdentitiesReply: request is not REQUEST_IDENTITIES")
	}
	if req.answered {
		return nil
	}

	resolved := make([]struct {
		key     ParsedKey
		comment string
	}, 0, len(keys))
	for _, src := range keys {
		key, comment, ok := resolveIdentity(e.Keys, src)
		if !ok {
			continue
		}
		resolved = append(resolved, struct {
			key     ParsedKey
			comment string
		}{key, comment})
	}

	body := appendUint32(nil, uint32(len(resolved)))
	for _, r := range resolved {
		body = appendString(body, r.key.Marshal())
		body = appendString(body, []byte(r.comment))
	}
	return e.answer(req, EncodeFrame(MsgIdentitiesAnswer, body))
}

// SignReply answers req with a SIGN_RESPONSE wrapping signature under
// req.context, per spec.md section 4.4.  req.requestType must be
// SIGN_REQUEST and signature must be non-empty.
func (e *Engine) SignReply(req *ServerRequest, signature []byte) error {
	if req.requestType != MsgSignRequest {
		return uerr.Chainf(ErrInvalidArgument, "SignReply: request is not SIGN_REQUEST")
	}
	if len(signature) == 0 {
		return uerr.Chainf(ErrInvalidArgument, "SignReply: signature is empty")
	}
	if req.answered {
		return nil
	}

	// per spec.md section 4.4: the inner value is itself
	// (string algorithm, string sig_blob), matching OpenSSH's own
	// doubly-string-encoded signature blob (RFC4253).
	inner := appendString(nil, []byte(req.context))
	inner = appendString(inner, signature)
	body := appendString(nil, inner)
	return e.answer(req, EncodeFrame(MsgSignResponse, body))
}

// answer attaches frame to req's response slot and walks the FIFO,
// emitting every head-to-tail run of now-answered requests, per spec.md
// section 4.4's ordering rule: "out-of-order completion is allowed,
// out-of-order emission is forbidden."
func (e *Engine) answer(req *ServerRequest, frame []byte) error {
	if req.answered {
		return nil
	}
	req.answered = true
	req.response = frame

	for len(e.inbound) > 0 && e.inbound[0].req.answered {
		head := e.inbound[0]
		e.inbound = e.inbound[1:]
		if err := e.write(head.req.response); err != nil {
			return err
		}
	}
	return nil
}
