package uagent

import "encoding/binary"

var bigEnd_ = binary.BigEndian

// appendUint32 appends a big-endian uint32 to b, per spec.md section 4.1.
func appendUint32(b []byte, v uint32) []byte {
	return bigEnd_.AppendUint32(b, v)
}

// appendString appends a u32 length followed by v, per spec.md section 6.
func appendString(b []byte, v []byte) []byte {
	b = appendUint32(b, uint32(len(v)))
	return append(b, v...)
}

// reader_ is a forward-only cursor over a decoded message payload.
//
// It never advances on an underrun - callers treat an error return as
// spec.md's "MalformedMessage" and give up on the whole payload.
type reader_ struct {
	buf []byte
	pos int
}

func newReader_(buf []byte) *reader_ {
	return &reader_{buf: buf}
}

func (r *reader_) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader_) done() bool {
	return r.remaining() == 0
}

func (r *reader_) readByte() (b byte, err error) {
	if r.remaining() < 1 {
		return 0, ErrMalformedMessage
	}
	b = r.buf[r.pos]
	r.pos++
	return
}

func (r *reader_) readUint32() (v uint32, err error) {
	if r.remaining() < 4 {
		return 0, ErrMalformedMessage
	}
	v = bigEnd_.Uint32(r.buf[r.pos:])
	r.pos += 4
	return
}

// readString reads a u32 length L followed by L bytes, per spec.md
// section 4.1.  The returned slice aliases buf - callers that retain it
// past the lifetime of the frame must copy it.
func (r *reader_) readString() (s []byte, err error) {
	start := r.pos
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(n) {
		r.pos = start
		return nil, ErrMalformedMessage
	}
	s = r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return
}
