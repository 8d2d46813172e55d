// Package keys provides the default uagent.KeyParser, backed by
// golang.org/x/crypto/ssh's public-key parsing and marshaling.
package keys

import (
	"golang.org/x/crypto/ssh"

	"github.com/tredeske/usshagent/uagent"
)

// Parser is the default uagent.KeyParser: it accepts any public-key blob
// golang.org/x/crypto/ssh recognizes.
type Parser struct{}

// New returns a Parser.  There is no state to construct.
func New() Parser {
	return Parser{}
}

// Parse implements uagent.KeyParser.
func (Parser) Parse(blob []byte) (uagent.ParsedKey, error) {
	pub, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return nil, err
	}
	return &key_{pub: pub}, nil
}

// key_ adapts ssh.PublicKey to uagent.ParsedKey, adding the mutable
// comment field the agent protocol carries alongside each identity.
type key_ struct {
	pub     ssh.PublicKey
	comment string
}

func (k *key_) Type() string { return k.pub.Type() }

func (k *key_) Comment() string { return k.comment }

func (k *key_) SetComment(c string) { k.comment = c }

func (k *key_) Marshal() []byte { return k.pub.Marshal() }

// Wrap adapts an already-parsed ssh.PublicKey (e.g. from
// ssh.ParseAuthorizedKey) into a uagent.ParsedKey, for callers building
// identities from authorized_keys-style input rather than raw blobs.
func Wrap(pub ssh.PublicKey, comment string) uagent.ParsedKey {
	return &key_{pub: pub, comment: comment}
}
