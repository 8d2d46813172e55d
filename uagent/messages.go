package uagent

// agent protocol message type codes, per draft-miller-ssh-agent-04 section 3.
const (
	MsgFailure = byte(5)

	MsgRequestIdentities = byte(11)
	MsgIdentitiesAnswer  = byte(12)
	MsgSignRequest       = byte(13)
	MsgSignResponse      = byte(14)

	// reserved codes - recognized by name for diagnostics only (see S5 in
	// spec.md).  None of these ever get a constructive reply; the server
	// answers each with MsgFailure, same as any other unrecognized code.
	msgAddIdentity                = byte(17)
	msgRemoveIdentity             = byte(18)
	msgRemoveAllIdentities        = byte(19)
	msgAddSmartcardKey            = byte(20)
	msgRemoveSmartcardKey         = byte(21)
	msgLock                       = byte(22)
	msgUnlock                     = byte(23)
	msgAddIDConstrained           = byte(25)
	msgAddSmartcardKeyConstrained = byte(26)
	msgExtension                  = byte(27)
)

var reservedMsgNames = map[byte]string{
	msgAddIdentity:                "ADD_IDENTITY",
	msgRemoveIdentity:             "REMOVE_IDENTITY",
	msgRemoveAllIdentities:        "REMOVE_ALL_IDENTITIES",
	msgAddSmartcardKey:            "ADD_SMARTCARD_KEY",
	msgRemoveSmartcardKey:         "REMOVE_SMARTCARD_KEY",
	msgLock:                       "LOCK",
	msgUnlock:                     "UNLOCK",
	msgAddIDConstrained:           "ADD_ID_CONSTRAINED",
	msgAddSmartcardKeyConstrained: "ADD_SMARTCARD_KEY_CONSTRAINED",
	msgExtension:                  "EXTENSION",
}

// msgName returns a human name for a message type, for logging only.
func msgName(typ byte) string {
	switch typ {
	case MsgFailure:
		return "FAILURE"
	case MsgRequestIdentities:
		return "REQUEST_IDENTITIES"
	case MsgIdentitiesAnswer:
		return "IDENTITIES_ANSWER"
	case MsgSignRequest:
		return "SIGN_REQUEST"
	case MsgSignResponse:
		return "SIGN_RESPONSE"
	}
	if name, ok := reservedMsgNames[typ]; ok {
		return name + " (reserved, not implemented)"
	}
	return "UNKNOWN"
}

// SIGN_REQUEST.flags bits, per spec.md section 3.
const (
	FlagRSASHA256 uint32 = 1 << 1 // 0x02
	FlagRSASHA512 uint32 = 1 << 2 // 0x04
)

// SigFormat names the algorithm identifier embedded in a SIGN_RESPONSE,
// per spec.md section 4.4.
type SigFormat string

const (
	SigFormatSSHRSA    SigFormat = "ssh-rsa"
	SigFormatRSASHA256 SigFormat = "rsa-sha2-256"
	SigFormatRSASHA512 SigFormat = "rsa-sha2-512"
)

const keyTypeRSA = "ssh-rsa"
