package uagent

// ParsedKey is the structured form of an SSH public key, as produced by a
// KeyParser.  Equality between two ParsedKeys is by their canonical wire
// blob (Marshal), per spec.md section 3.
type ParsedKey interface {
	// Type is the SSH public-key algorithm name, e.g. "ssh-rsa",
	// "ssh-ed25519".
	Type() string

	// Comment is the identity's comment, or "" if none was set.
	Comment() string

	// SetComment updates the comment.  The client engine uses this to
	// backfill a key's comment from an IDENTITIES_ANSWER entry per
	// spec.md section 4.3: "key.comment := key.comment or decoded_comment".
	SetComment(string)

	// Marshal returns the canonical SSH wire-format public-key blob.
	Marshal() []byte
}

// KeyParser is the external capability spec.md section 6 requires: it
// turns a raw SSH public-key blob into a structured ParsedKey.  The core
// never parses key material itself.
type KeyParser interface {
	Parse(blob []byte) (ParsedKey, error)
}

// IsParsedKey reports whether v implements ParsedKey, mirroring spec.md
// section 6's "is_parsed_key(v) -> bool".
func IsParsedKey(v any) bool {
	_, ok := v.(ParsedKey)
	return ok
}

// KeysEqual compares two keys by their canonical wire blob.
func KeysEqual(a, b ParsedKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, bb := a.Marshal(), b.Marshal()
	if len(ab) != len(bb) {
		return false
	}
	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}
	return true
}
