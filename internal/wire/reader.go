package wire

import (
	"fmt"
	"io"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/crypto"
)

// MaxPacketLen bounds the total packet length (header included) a header may
// claim, as a defense against a peer claiming an absurd length.
const MaxPacketLen = 65536

// ReadPacket reads one framed packet from r using variant's header layout,
// decrypting the encrypted portion in place with cipher if non-nil (the
// redirector speaks VariantPC/VariantDCGC unencrypted — spec.md §6 — so
// cipher may be nil there). buf must be large enough to hold the header
// plus the largest body the caller expects; ReadPacket never allocates.
//
// Step (a) of spec.md §4.1's reader loop ("ensures the 4-byte header is
// decrypted and readable") requires decrypting the header's tail — every
// byte from variant.ClearPrefixLen() on — before the length field in it can
// be trusted: DC/GC and PC only leave the first two header bytes clear: the
// rest of the header (the length field) arrives RC4/keystream-encrypted,
// same as the body. That decrypt happens here, in its own XORKeyStream
// call, before the length is readable; the body is decrypted in a second
// call once it's been read, continuing the same cipher stream. Shipgate's
// ClearPrefixLen covers its whole header, so this first call is a no-op
// there and only the body (subject to the NoEncrypt flag) is decrypted.
//
// It returns the decoded Header and a subslice of buf holding the decrypted
// body (header excluded).
func ReadPacket(r io.Reader, variant Variant, cipher crypto.Stream, buf []byte) (Header, []byte, error) {
	hsz := variant.HeaderSize()
	if len(buf) < hsz {
		return Header{}, nil, fmt.Errorf("wire: buffer smaller than header (%d < %d)", len(buf), hsz)
	}

	if _, err := io.ReadFull(r, buf[:hsz]); err != nil {
		return Header{}, nil, fmt.Errorf("reading header: %w", err)
	}

	prefixLen := variant.ClearPrefixLen()
	if cipher != nil && prefixLen < hsz {
		cipher.XORKeyStream(buf[prefixLen:hsz])
	}

	h := variant.Decode(buf[:hsz])

	if h.Length < hsz || h.Length > MaxPacketLen {
		return Header{}, nil, fmt.Errorf("wire: invalid packet length %d", h.Length)
	}
	bodyLen := h.Length - hsz
	if bodyLen > len(buf)-hsz {
		return Header{}, nil, fmt.Errorf("wire: packet body %d exceeds buffer", bodyLen)
	}

	body := buf[hsz : hsz+bodyLen]
	if bodyLen > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return Header{}, nil, fmt.Errorf("reading body: %w", err)
		}
	}

	skipDecrypt := variant == VariantShipgate && h.Flags&constants.ShipgateFlagNoEncrypt != 0
	if cipher != nil && bodyLen > 0 && !skipDecrypt {
		cipher.XORKeyStream(body)
	}

	return h, body, nil
}
