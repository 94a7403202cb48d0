package redirector

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/sylverant/psoserv/internal/constants"
)

func TestBuildRedirectDCGC(t *testing.T) {
	buf := make([]byte, constants.SelectiveRedirectLen)
	ip := net.ParseIP("10.0.0.5")
	n := buildRedirect(buf, ip, 9201, false)

	if n != constants.RedirectLength {
		t.Fatalf("n = %d, want %d", n, constants.RedirectLength)
	}
	if buf[0] != constants.PacketTypeRedirect {
		t.Fatalf("type byte = %#x, want %#x", buf[0], constants.PacketTypeRedirect)
	}
	if gotLen := binary.LittleEndian.Uint16(buf[2:4]); gotLen != constants.RedirectLength {
		t.Fatalf("length = %#x, want %#x", gotLen, constants.RedirectLength)
	}
	if !net.IP(buf[4:8]).Equal(ip.To4()) {
		t.Fatalf("ip bytes = %v, want %v", buf[4:8], ip.To4())
	}
	if gotPort := binary.LittleEndian.Uint16(buf[8:10]); gotPort != 9201 {
		t.Fatalf("port = %d, want 9201", gotPort)
	}
}

func TestBuildRedirectPC(t *testing.T) {
	buf := make([]byte, constants.SelectiveRedirectLen)
	ip := net.ParseIP("10.0.0.5")
	buildRedirect(buf, ip, 9300, true)

	if gotLen := binary.LittleEndian.Uint16(buf[0:2]); gotLen != constants.RedirectLength {
		t.Fatalf("length = %#x, want %#x", gotLen, constants.RedirectLength)
	}
	if buf[2] != constants.PacketTypeRedirect {
		t.Fatalf("type byte = %#x, want %#x", buf[2], constants.PacketTypeRedirect)
	}
}

// TestBuildSelectiveRedirectDualParse verifies the packet parses correctly
// under both header interpretations: as a PC redirect of length 0xB0, and as
// a DC/GC "ignored" packet of length 0x19 followed by a second ignored
// packet accounting for the remaining 0x97 bytes. Grounded on
// original_source/redirector/src/redirector.c's send_selective_redirect.
func TestBuildSelectiveRedirectDualParse(t *testing.T) {
	buf := make([]byte, constants.SelectiveRedirectLen)
	ip := net.ParseIP("10.0.0.5")
	n := buildSelectiveRedirect(buf, ip, 9300)

	if n != constants.SelectiveRedirectLen {
		t.Fatalf("n = %d, want %d", n, constants.SelectiveRedirectLen)
	}

	// PC interpretation: {u16 len, u8 type, u8 flags}.
	pcLen := binary.LittleEndian.Uint16(buf[0:2])
	pcType := buf[2]
	if pcLen != constants.SelectiveRedirectLen || pcType != constants.PacketTypeRedirect {
		t.Fatalf("PC parse: len=%#x type=%#x", pcLen, pcType)
	}

	// DC/GC interpretation: {u8 type, u8 flags, u16 len}.
	dcType := buf[0]
	dcLen := binary.LittleEndian.Uint16(buf[2:4])
	if dcType != constants.SelectiveIgnoreType || int(dcLen) != constants.SelectiveIgnoreLen1 {
		t.Fatalf("DC/GC parse: type=%#x len=%#x", dcType, dcLen)
	}

	// Second DC/GC header picks up right where the first one's claimed
	// length ends, and its own length accounts for the rest of the buffer.
	off := constants.SelectiveIgnoreOffset
	hdr2Type := buf[off]
	hdr2Len := binary.LittleEndian.Uint16(buf[off+2 : off+4])
	if hdr2Type != constants.SelectiveIgnoreType {
		t.Fatalf("second header type = %#x, want %#x", hdr2Type, constants.SelectiveIgnoreType)
	}
	if off+int(hdr2Len) != constants.SelectiveRedirectLen {
		t.Fatalf("off(%d)+hdr2Len(%d) = %d, want %d", off, hdr2Len, off+int(hdr2Len), constants.SelectiveRedirectLen)
	}
}
