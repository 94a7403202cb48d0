package crypto

import (
	"crypto/rc4"
	"fmt"
)

// RC4Stream wraps the standard library's RC4 implementation behind the
// Stream interface. RC4 is mandated by the wire protocol itself (spec.md
// §4.1/§4.4), not chosen for convenience — there is no actively maintained
// third-party Go RC4 package more suitable than the one in crypto/rc4, so
// this is the one place in the cipher stack that reaches into the standard
// library for the primitive itself rather than a wrapper around it.
type RC4Stream struct {
	c *rc4.Cipher
}

// NewRC4Stream creates a single-direction RC4 stream from key.
func NewRC4Stream(key []byte) (*RC4Stream, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating rc4 stream: %w", err)
	}
	return &RC4Stream{c: c}, nil
}

// XORKeyStream encrypts or decrypts data in place.
func (s *RC4Stream) XORKeyStream(data []byte) {
	s.c.XORKeyStream(data, data)
}

// Session owns one inbound and one outbound cipher state for a single
// connection, each seeded from the same key but evolving independently as
// bytes flow across it. This is the shape spec.md §9 requires: "each session
// owns two independent cipher states (read, write)".
type Session struct {
	In  Stream
	Out Stream
}

// NewRC4Session creates a Session with independent RC4 states for each
// direction, both seeded from key. Used for DC/GC clients and the shipgate
// link (spec.md §4.1, §4.4).
func NewRC4Session(key []byte) (*Session, error) {
	in, err := NewRC4Stream(key)
	if err != nil {
		return nil, fmt.Errorf("inbound rc4: %w", err)
	}
	out, err := NewRC4Stream(key)
	if err != nil {
		return nil, fmt.Errorf("outbound rc4: %w", err)
	}
	return &Session{In: in, Out: out}, nil
}
