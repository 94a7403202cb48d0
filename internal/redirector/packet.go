package redirector

import (
	"encoding/binary"
	"net"

	"github.com/sylverant/psoserv/internal/constants"
)

// redirectPacketLen is the DC/GC/PC redirect packet's on-wire size: a
// 4-byte header, a 4-byte big-endian IPv4 address, a 2-byte little-endian
// port, and 2 bytes of padding (Sylverant's DC_REDIRECT_LENGTH).
const redirectPacketLen = constants.RedirectLength

// buildRedirect writes a single-client redirect packet into buf (which must
// be at least redirectPacketLen bytes) framed with the DC/GC header when pc
// is false, or the PC header when pc is true. Both headers carry the same
// type/length values — only byte order of type/flags vs. length differs
// between the two framings (spec.md §3, grounded on
// original_source/redirector/src/redirector.c's send_redirect).
func buildRedirect(buf []byte, ip net.IP, port uint16, pc bool) int {
	clear(buf[:redirectPacketLen])

	if pc {
		binary.LittleEndian.PutUint16(buf[0:2], uint16(redirectPacketLen))
		buf[2] = byte(constants.PacketTypeRedirect)
		buf[3] = 0
	} else {
		buf[0] = byte(constants.PacketTypeRedirect)
		buf[1] = 0
		binary.LittleEndian.PutUint16(buf[2:4], uint16(redirectPacketLen))
	}

	ip4 := ip.To4()
	copy(buf[4:8], ip4)
	binary.LittleEndian.PutUint16(buf[8:10], port)
	// buf[10:12] stays zeroed padding.

	return redirectPacketLen
}

// buildSelectiveRedirect writes the dual-parse trick packet into buf (which
// must be at least constants.SelectiveRedirectLen bytes): PC clients parse
// it as a type-0x19 Redirect of length 0xB0 pointing at the PC port; DC/GC
// clients parse only the first 0x19 bytes as a type-0xB0 Ignored packet,
// then see a second 4-byte header at offset 0x19 that accounts for the rest
// of the 0xB0 total, consuming the PC-only bytes in between without ever
// interpreting them. Grounded on redirector.c's send_selective_redirect.
func buildSelectiveRedirect(buf []byte, ip net.IP, pcPort uint16) int {
	total := constants.SelectiveRedirectLen
	clear(buf[:total])

	binary.LittleEndian.PutUint16(buf[0:2], uint16(total))
	buf[2] = byte(constants.PacketTypeRedirect)
	buf[3] = 0

	ip4 := ip.To4()
	copy(buf[4:8], ip4)
	binary.LittleEndian.PutUint16(buf[8:10], pcPort)

	off := constants.SelectiveIgnoreOffset
	buf[off] = byte(constants.SelectiveIgnoreType)
	buf[off+1] = 0
	binary.LittleEndian.PutUint16(buf[off+2:off+4], uint16(constants.SelectiveIgnoreLen2))

	return total
}
