// Package wire implements the three incompatible packet framings used across
// the cluster (spec.md §3), the per-connection send buffer with its
// backpressure invariants (spec.md §5), and the buffer pool the connection
// handlers borrow scratch space from.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Variant identifies which of the three wire framings a connection speaks.
// The three are not just different byte orders — PC's type/flags bytes
// trail the length instead of leading it, and Shipgate carries two extra
// fields DC/GC/PC don't have at all.
type Variant int

const (
	// VariantDCGC is {u8 type, u8 flags, u16 len_le}, used by Dreamcast and
	// GameCube clients.
	VariantDCGC Variant = iota
	// VariantPC is {u16 len_le, u8 type, u8 flags}, used by PC clients.
	VariantPC
	// VariantShipgate is {u16 len, u16 type, u16 flags, u16 unc_len}, all
	// big-endian, used on the ship<->shipgate link. Bodies are padded so the
	// total length is always a multiple of 8.
	VariantShipgate
)

// HeaderSize returns the on-wire size of a header in this variant.
func (v Variant) HeaderSize() int {
	switch v {
	case VariantDCGC, VariantPC:
		return 4
	case VariantShipgate:
		return 8
	default:
		panic(fmt.Sprintf("wire: unknown variant %d", v))
	}
}

// ClearPrefixLen returns how many leading header bytes travel unencrypted,
// regardless of cipher state (spec.md §4.1/§6). DC/GC and PC both leave
// only the first two header bytes — whatever occupies that *position*, not
// a fixed field — in the clear; the other half of the header (the length
// field, wherever it falls in that variant's layout) is encrypted along
// with the body. Shipgate's entire 8-byte header is sent in the clear, so
// its ClearPrefixLen equals its HeaderSize.
func (v Variant) ClearPrefixLen() int {
	if v == VariantShipgate {
		return v.HeaderSize()
	}
	return 2
}

// Header is the decoded form of a packet header, normalized across variants.
// UncompressedLen is only meaningful for VariantShipgate; it is zero for
// DC/GC/PC.
type Header struct {
	Type            uint16
	Flags           uint16
	Length          int // total on-wire length, header included
	UncompressedLen int
}

// Encode writes h into buf[:v.HeaderSize()] in this variant's layout. buf
// must be at least v.HeaderSize() bytes.
func (v Variant) Encode(buf []byte, h Header) {
	switch v {
	case VariantDCGC:
		buf[0] = byte(h.Type)
		buf[1] = byte(h.Flags)
		binary.LittleEndian.PutUint16(buf[2:4], uint16(h.Length))
	case VariantPC:
		binary.LittleEndian.PutUint16(buf[0:2], uint16(h.Length))
		buf[2] = byte(h.Type)
		buf[3] = byte(h.Flags)
	case VariantShipgate:
		binary.BigEndian.PutUint16(buf[0:2], uint16(h.Length))
		binary.BigEndian.PutUint16(buf[2:4], h.Type)
		binary.BigEndian.PutUint16(buf[4:6], h.Flags)
		binary.BigEndian.PutUint16(buf[6:8], uint16(h.UncompressedLen))
	default:
		panic(fmt.Sprintf("wire: unknown variant %d", v))
	}
}

// Decode reads a Header out of buf, which must hold at least
// v.HeaderSize() bytes.
func (v Variant) Decode(buf []byte) Header {
	switch v {
	case VariantDCGC:
		return Header{
			Type:   uint16(buf[0]),
			Flags:  uint16(buf[1]),
			Length: int(binary.LittleEndian.Uint16(buf[2:4])),
		}
	case VariantPC:
		return Header{
			Length: int(binary.LittleEndian.Uint16(buf[0:2])),
			Type:   uint16(buf[2]),
			Flags:  uint16(buf[3]),
		}
	case VariantShipgate:
		return Header{
			Length:          int(binary.BigEndian.Uint16(buf[0:2])),
			Type:            binary.BigEndian.Uint16(buf[2:4]),
			Flags:           binary.BigEndian.Uint16(buf[4:6]),
			UncompressedLen: int(binary.BigEndian.Uint16(buf[6:8])),
		}
	default:
		panic(fmt.Sprintf("wire: unknown variant %d", v))
	}
}

// PadLength rounds n up to this variant's required alignment. DC/GC/PC have
// no alignment requirement; Shipgate packets must be padded to a multiple
// of 8 bytes (spec.md §4.4).
func (v Variant) PadLength(n int) int {
	if v != VariantShipgate {
		return n
	}
	if rem := n % 8; rem != 0 {
		return n + (8 - rem)
	}
	return n
}
