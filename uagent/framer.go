package uagent

// decodedFrame_ is one fully-received (type, payload) pair, queued until
// the engine reads it with ReadNextFrame.
type decodedFrame_ struct {
	typ     byte
	payload []byte
}

// Framer is the stateful byte-stream decoder of spec.md section 4.2: it
// accepts arbitrarily chunked bytes and yields whole frames, never a
// partial one, and never loses bytes across writes.
//
// A Framer is not safe for concurrent use, matching the single-owner
// model of spec.md section 5.
type Framer struct {
	buf    []byte
	msgLen int32 // -1 until the length prefix of the in-progress frame is known
	ready  []decodedFrame_
}

// NewFramer returns a Framer with no buffered state.
func NewFramer() *Framer {
	return &Framer{msgLen: -1}
}

// Ingest appends chunk to the framer's buffer and decodes as many whole
// frames as are now available.  Decoded frames are queued for
// ReadNextFrame in the order they complete, which - because Ingest never
// reorders - is also wire order.
func (f *Framer) Ingest(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	f.buf = append(f.buf, chunk...)

	for len(f.buf) >= 5 {
		if f.msgLen == -1 {
			f.msgLen = int32(bigEnd_.Uint32(f.buf))
		}
		total := 4 + int(f.msgLen)
		if len(f.buf) < total {
			break // need more bytes for this frame
		}

		typ := f.buf[4]
		payload := make([]byte, total-5)
		copy(payload, f.buf[5:total])
		f.ready = append(f.ready, decodedFrame_{typ: typ, payload: payload})

		// compact to a freshly sized tail: never retain the original,
		// possibly-large backing array past what holds the unfinished frame.
		tail := f.buf[total:]
		if len(tail) == 0 {
			f.buf = nil
		} else {
			f.buf = append([]byte(nil), tail...)
		}
		f.msgLen = -1
	}
}

// ReadNextFrame returns the oldest decoded-but-unread frame, if any.
func (f *Framer) ReadNextFrame() (typ byte, payload []byte, ok bool) {
	if len(f.ready) == 0 {
		return 0, nil, false
	}
	fr := f.ready[0]
	f.ready = f.ready[1:]
	return fr.typ, fr.payload, true
}

// EncodeFrame produces the single contiguous wire frame for (typ, body),
// per spec.md section 3: 4-byte big-endian length, 1-byte type, payload.
func EncodeFrame(typ byte, body []byte) []byte {
	out := make([]byte, 0, 5+len(body))
	out = appendUint32(out, uint32(1+len(body)))
	out = append(out, typ)
	out = append(out, body...)
	return out
}
