package uagent

// Identity pairs a key with the comment the agent reported for it, the
// decoded form of one IDENTITIES_ANSWER entry (spec.md section 4.3).
type Identity struct {
	Key     ParsedKey
	Comment string
}

// IdentitySource is any of the three shapes spec.md section 4.4 allows an
// owner to hand to ServerRequest.IdentitiesReply: a ParsedKey directly, a
// {pubkey, comment} pair, or a raw public-key blob.
type IdentitySource interface{}

// IdentityWithComment is the {pubkey, comment} wrapper form of
// IdentitySource.
type IdentityWithComment struct {
	Pubkey  ParsedKey
	Comment string
}

// RawIdentity is the raw-blob wrapper form of IdentitySource; Comment is
// attached separately since a raw blob carries no comment of its own.
type RawIdentity struct {
	Blob    []byte
	Comment string
}

// resolveIdentity extracts a ParsedKey and comment from any IdentitySource
// shape, parsing raw blobs via kp.  It returns ok=false for an entry that
// fails to parse or has an unrecognized shape - per spec.md section 4.4,
// such entries are skipped rather than failing the whole reply.
func resolveIdentity(kp KeyParser, v IdentitySource) (key ParsedKey, comment string, ok bool) {
	switch t := v.(type) {
	case ParsedKey:
		return t, t.Comment(), true
	case IdentityWithComment:
		if t.Pubkey == nil {
			return nil, "", false
		}
		return t.Pubkey, t.Comment, true
	case *IdentityWithComment:
		if t == nil || t.Pubkey == nil {
			return nil, "", false
		}
		return t.Pubkey, t.Comment, true
	case RawIdentity:
		k, err := kp.Parse(t.Blob)
		if err != nil {
			return nil, "", false
		}
		return k, t.Comment, true
	case *RawIdentity:
		if t == nil {
			return nil, "", false
		}
		k, err := kp.Parse(t.Blob)
		if err != nil {
			return nil, "", false
		}
		return k, t.Comment, true
	case []byte:
		k, err := kp.Parse(t)
		if err != nil {
			return nil, "", false
		}
		return k, k.Comment(), true
	default:
		return nil, "", false
	}
}
