package wire

import (
	"fmt"
	"io"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/crypto"
)

// WritePacket frames body as a single packet of the given variant, type and
// flags, encrypts it with cipher (unless the Shipgate NoEncrypt flag is
// set), and writes it to w. scratch is used to assemble header+body+padding
// before the write and must be at least variant.HeaderSize()+len(body)+7
// bytes; WritePacket does not retain it.
//
// For VariantShipgate, body is padded with zero bytes up to the next
// multiple of 8 before the length is computed, per spec.md §4.4.
//
// Encryption covers everything from variant.ClearPrefixLen() on — the
// header's length field for DC/GC/PC (the header is encoded into scratch in
// the clear first, then overwritten in place by the same XORKeyStream call
// that covers the body), or just the body for Shipgate, whose whole header
// stays clear. This is the write-side mirror of ReadPacket's two-step
// decrypt (spec.md §4.1/§6).
func WritePacket(w io.Writer, variant Variant, cipher crypto.Stream, flags uint16, typ uint16, body []byte, scratch []byte) error {
	hsz := variant.HeaderSize()
	totalUnpadded := hsz + len(body)
	total := variant.PadLength(totalUnpadded)
	if len(scratch) < total {
		return fmt.Errorf("wire: scratch buffer too small (need %d, have %d)", total, len(scratch))
	}

	n := copy(scratch[hsz:], body)
	clear(scratch[hsz+n : total])

	h := Header{Type: typ, Flags: flags, Length: total}
	if variant == VariantShipgate {
		h.UncompressedLen = len(body)
	}
	variant.Encode(scratch[:hsz], h)

	prefixLen := variant.ClearPrefixLen()
	skipEncrypt := variant == VariantShipgate && flags&constants.ShipgateFlagNoEncrypt != 0
	if cipher != nil && total > prefixLen && !skipEncrypt {
		cipher.XORKeyStream(scratch[prefixLen:total])
	}

	if _, err := w.Write(scratch[:total]); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}
