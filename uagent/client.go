package uagent

import (
	"io"

	"github.com/tredeske/usshagent/uerr"
)

// SignOptions controls the RSA-SHA2 flag bits of a SIGN_REQUEST, per
// spec.md section 4.3.
type SignOptions struct {
	// Hash selects the signature hash: "", "sha256", or "sha512".  Only
	// meaningful when the key type is ssh-rsa; ignored otherwise.
	Hash string
}

// clientRequest_ is spec.md section 3's "Outbound pending request": the
// FIFO head matches the next decoded reply frame.
type clientRequest_ struct {
	expectType byte
	complete   func(typ byte, payload []byte) error // decode + invoke user callback
	failOnce   func(err error)
}

func (p *clientRequest_) fail(err error) {
	if p.failOnce != nil {
		p.failOnce(err)
	}
}

// NewClientEngine constructs an Engine in the client role.
func NewClientEngine(w io.Writer, kp KeyParser) *Engine {
	return NewEngine(RoleClient, w, kp)
}

// GetIdentities sends a REQUEST_IDENTITIES message and invokes cb with the
// decoded identity list once the matching IDENTITIES_ANSWER (or FAILURE)
// arrives, per spec.md section 4.3.
func (e *Engine) GetIdentities(cb func([]Identity, error)) {
	if e.Role != RoleClient {
		cb(nil, uerr.Chainf(ErrInvalidArgument, "GetIdentities: engine is not in client role"))
		return
	}
	if failed, err := e.Failed(); failed {
		cb(nil, err)
		return
	}

	req := &clientRequest_{
		expectType: MsgIdentitiesAnswer,
		failOnce:   func(err error) { cb(nil, err) },
	}
	req.complete = func(typ byte, payload []byte) error {
		keys, err := e.decodeIdentitiesAnswer(payload)
		if err != nil {
			cb(nil, err)
			return err
		}
		cb(keys, nil)
		return nil
	}

	e.pending = append(e.pending, req)
	frame := EncodeFrame(MsgRequestIdentities, nil)
	e.write(frame)
}

// Sign sends a SIGN_REQUEST for pubkey/data and invokes cb with the raw
// signature blob once the matching SIGN_RESPONSE (or FAILURE) arrives,
// per spec.md section 4.3.
func (e *Engine) Sign(pubkey ParsedKey, data []byte, opts *SignOptions, cb func([]byte, error)) {
	if e.Role != RoleClient {
		cb(nil, uerr.Chainf(ErrInvalidArgument, "Sign: engine is not in client role"))
		return
	}
	if pubkey == nil {
		cb(nil, uerr.Chainf(ErrInvalidArgument, "Sign: pubkey is required"))
		return
	}
	if failed, err := e.Failed(); failed {
		cb(nil, err)
		return
	}

	var flags uint32
	if pubkey.Type() == keyTypeRSA && opts != nil {
		switch opts.Hash {
		case "sha256":
			flags = FlagRSASHA256
		case "sha512":
			flags = FlagRSASHA512
		}
	}

	body := make([]byte, 0, 4+len(pubkey.Marshal())+4+len(data)+4)
	body = appendString(body, pubkey.Marshal())
	body = appendString(body, data)
	body = appendUint32(body, flags)

	req := &clientRequest_{
		expectType: MsgSignResponse,
		failOnce:   func(err error) { cb(nil, err) },
	}
	req.complete = func(typ byte, payload []byte) error {
		sig, err := decodeSignResponse(payload)
		if err != nil {
			cb(nil, err)
			return err
		}
		cb(sig, nil)
		return nil
	}

	e.pending = append(e.pending, req)
	e.write(EncodeFrame(MsgSignRequest, body))
}

// handleClientFrame matches a decoded reply frame to the FIFO head, per
// spec.md section 4.3's reply-decoding rules.
func (e *Engine) handleClientFrame(typ byte, payload []byte) error {
	if len(e.pending) == 0 {
		return uerr.Chainf(ErrUnexpectedMessage, "uagent: %s with no outstanding request", msgName(typ))
	}
	head := e.pending[0]
	e.pending = e.pending[1:]

	if typ == MsgFailure {
		head.fail(ErrAgentFailure)
		return nil
	}
	if typ != head.expectType {
		err := uerr.Chainf(ErrWrongMessageType,
			"uagent: expected reply type %d, got %d", head.expectType, typ)
		head.fail(err)
		return err
	}
	return head.complete(typ, payload)
}

// decodeIdentitiesAnswer decodes an IDENTITIES_ANSWER body per spec.md
// section 4.3: nkeys, then nkeys repetitions of (string blob, string
// comment).  A key whose blob the KeyParser rejects is skipped, not fatal.
func (e *Engine) decodeIdentitiesAnswer(payload []byte) ([]Identity, error) {
	r := newReader_(payload)
	n, err := r.readUint32()
	if err != nil {
		return nil, uerr.Chainf(ErrMalformedMessage, "uagent: decode IDENTITIES_ANSWER count")
	}

	out := make([]Identity, 0, n)
	for i := uint32(0); i < n; i++ {
		blob, err := r.readString()
		if err != nil {
			return nil, uerr.Chainf(ErrMalformedMessage, "uagent: decode identity %d blob", i)
		}
		comment, err := r.readString()
		if err != nil {
			return nil, uerr.Chainf(ErrMalformedMessage, "uagent: decode identity %d comment", i)
		}

		key, parseErr := e.Keys.Parse(append([]byte(nil), blob...))
		if parseErr != nil {
			continue // unsupported key type tolerated, per spec.md section 4.3
		}
		if key.Comment() == "" {
			key.SetComment(string(comment))
		}
		out = append(out, Identity{Key: key, Comment: key.Comment()})
	}
	return out, nil
}

// decodeSignResponse strips the outer (algorithm, signature) encoding of
// a SIGN_RESPONSE, per spec.md section 4.3 / S4: the outer string is
// itself (string algorithm, string sig_blob); only sig_blob is returned.
func decodeSignResponse(payload []byte) ([]byte, error) {
	outer := newReader_(payload)
	sig, err := outer.readString()
	if err != nil {
		return nil, uerr.Chainf(ErrMalformedMessage, "uagent: decode SIGN_RESPONSE outer signature")
	}

	inner := newReader_(sig)
	if _, err := inner.readString(); err != nil { // algorithm, discarded
		return nil, uerr.Chainf(ErrMalformedSignature, "uagent: decode signature algorithm")
	}
	sigBlob, err := inner.readString()
	if err != nil {
		return nil, uerr.Chainf(ErrMalformedSignature, "uagent: decode signature blob")
	}
	return append([]byte(nil), sigBlob...), nil
}
