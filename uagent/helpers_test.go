package uagent

import (
	"bytes"
	"fmt"
)

// fakeKey_ is a minimal ParsedKey for core-package tests, independent of
// any real SSH key encoding - the engine only ever treats a key blob as
// an opaque byte string plus a type name.
type fakeKey_ struct {
	typ     string
	blob    []byte
	comment string
}

func (k *fakeKey_) Type() string      { return k.typ }
func (k *fakeKey_) Comment() string   { return k.comment }
func (k *fakeKey_) SetComment(c string) { k.comment = c }
func (k *fakeKey_) Marshal() []byte   { return k.blob }

func newFakeKey(typ, name string) *fakeKey_ {
	return &fakeKey_{typ: typ, blob: []byte(fmt.Sprintf("%s:%s", typ, name))}
}

// fakeKeyParser_ parses the "type:name" blobs newFakeKey produces.
// Blobs that don't contain a ':' are rejected, letting tests exercise the
// "KeyParser rejects this blob" path.
type fakeKeyParser_ struct{}

func (fakeKeyParser_) Parse(blob []byte) (ParsedKey, error) {
	i := bytes.IndexByte(blob, ':')
	if i < 0 {
		return nil, fmt.Errorf("fakeKeyParser: no type separator in %q", blob)
	}
	return &fakeKey_{typ: string(blob[:i]), blob: append([]byte(nil), blob...)}, nil
}
