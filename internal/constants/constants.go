// Package constants holds the fixed, protocol-defined values shared by every
// service in the cluster: listening ports, header sizes, packet types and
// buffer limits. None of these are configurable — they are part of the wire
// contract the original clients and ships expect.
package constants

// Redirector/Login listening ports (spec.md §6). Each DC/GC port on the
// redirector maps to the same port on the login service.
const (
	PortDCv1 = 9200
	PortDCv2 = 9201
	PortPC   = 9300
	PortGC   = 9100
	PortGC1  = 9000
	PortGC2  = 9001
)

// Ship listening ports: one connection port per variant (spec.md §6), kept
// distinct from the login service's ports so both can run on one host. The
// retrieval pack's original ship_server config lists block ports but not a
// fixed per-variant set, so these are a fresh, internally consistent choice
// offset from the login ports (see DESIGN.md).
const (
	ShipPortDCv1 = 5200
	ShipPortDCv2 = 5201
	ShipPortPC   = 5300
	ShipPortGC   = 5100
	ShipPortGC1  = 5000
	ShipPortGC2  = 5001
)

// Header sizes, per variant.
const (
	HeaderSizeDCGC     = 4 // u8 type, u8 flags, u16 len_le
	HeaderSizePC       = 4 // u16 len_le, u8 type, u8 flags
	HeaderSizeShipgate = 8 // u16 len, u16 type, u16 flags, u16 unc_len, all BE
)

// RC4/PC cipher key size, in bytes.
const (
	CryptKeySize = 16
)

// Redirect packet (spec.md §6).
const (
	PacketTypeRedirect    = 0x0019
	RedirectLength        = 0x000C
	SelectiveRedirectLen  = 0x00B0
	SelectiveIgnoreType   = 0xB0
	SelectiveIgnoreOffset = 0x19
	SelectiveIgnoreLen1   = 0x0019
	SelectiveIgnoreLen2   = 0x0097
)

// Shipgate envelope flag bits (spec.md §6).
const (
	ShipgateFlagNoDeflate = 1 << 0
	ShipgateFlagNoEncrypt = 1 << 1
	ShipgateFlagResponse  = 1 << 2
	ShipgateFlagFailure   = 1 << 3
)

// Shipgate packet types (spec.md §4.4), grounded on
// _examples/original_source/trunk/shipgate/src/packets.c's SHDR_TYPE_* enum.
const (
	ShipgateTypeLogin    = 0x00
	ShipgateTypeLoginAck = 0x01
	ShipgateTypeCount    = 0x02
	ShipgateTypeFWDC     = 0x03
	ShipgateTypeFWPC     = 0x04
	ShipgateTypePing     = 0x05
	ShipgateTypeSStatus  = 0x06
	ShipgateTypeCReq     = 0x07
	ShipgateTypeCReqAns  = 0x08
	ShipgateTypeGMLogin  = 0x09
	ShipgateTypeError    = 0x0A
)

// Ship status values carried by SSTATUS.
const (
	ShipStatusUp   = 0
	ShipStatusDown = 1
)

// Minimum peer proto_ver required to accept optional/late-added shipgate
// features (spec.md §4.4). Sending to an older peer is a silent no-op.
const (
	ShipgateProtoVerErrorReport = 1
)

// Character-data restore (CREQ) blob size — spec.md §4.4.
const CharacterDataSize = 1052

// Buffer sizing.
const (
	// DefaultReadBufSize is the per-connection scratch receive buffer for
	// client-facing services (redirector clients never read; login/ship do).
	DefaultReadBufSize = 4096
	// DefaultSendBufSize is the per-connection scratch send buffer.
	DefaultSendBufSize = 4096
	// ShipgateReadBufSize / ShipgateSendBufSize size the federation link's
	// buffers; forwarded packets can be as large as a full client packet.
	ShipgateReadBufSize  = 16384
	ShipgateSendBufSize  = 16384
	MaxShipgatePacketLen = 65528 // largest multiple of 8 that fits in the u16 total-length field (header included)
)

// Login attempt throttling (spec.md §4.3's "Invariants" plus the original
// Sylverant config's ban-after-N-tries window).
const (
	DefaultLoginTryBeforeBan = 5
	DefaultLoginBlockSeconds = 900
)

// Shipgate protocol version and handshake constants (spec.md §4.4, grounded
// on original_source/trunk/shipgate/src/packets.c's send_welcome). The
// retrieved excerpt doesn't carry the exact login message text or version
// numbers baked into the real binary, so these are a fresh, internally
// consistent choice rather than a bit-exact reproduction (see DESIGN.md).
const (
	ShipgateVersionMajor = 1
	ShipgateVersionMinor = 0
	ShipgateVersionMicro = 0
	ShipgateLoginMsg     = "Sylverant Shipgate"
	ShipgateNonceSize    = 4
	ShipgateLoginMsgSize = 32
)

// Login service packet types (spec.md §4.3), grounded on
// _examples/original_source/trunk/login_server/src/dclogin.c's
// process_dclogin_packet dispatch switch. The retrieved source excerpt
// names these types (LOGIN_DC_LOGIN0_TYPE, etc.) but the header carrying
// their numeric values wasn't part of the retrieval pack, so the values
// below are a fresh, internally consistent assignment (see DESIGN.md).
const (
	LoginTypeDCLogin0       = 0x90
	LoginTypeDCLogin2       = 0x91
	LoginTypeClientLogin    = 0x93
	LoginTypeDCv2LoginA     = 0x9A
	LoginTypeDCChecksum     = 0x96
	LoginTypeDCChecksumAck  = 0x97
	LoginTypeTimestamp      = 0xB1
	LoginTypeShipListReqDC  = 0x98
	LoginTypeShipList       = 0xA0
	LoginTypeInfoRequest    = 0xA8
	LoginTypeShipSelect     = 0xA1
	LoginTypeGCVerifyLicense = 0x9C
	LoginTypeGCLoginC       = 0xDB
	LoginTypeGCLoginE       = 0x9D
	LoginTypeLoginD         = 0x9E
	LoginTypeDCSecurity     = 0x92
	LoginTypeRedirect       = PacketTypeRedirect
)

// Menu identifiers used by the ship-select / offline-quest dispatch
// (dclogin.c's handle_ship_select).
const (
	MenuIDShipSelect     = 0x00120000
	OfflineQuestMenuItem = 0xDEADBEEF
)

// Ship-side packet types (spec.md §4.5), grounded on
// _examples/original_source/trunk/ship_server/src/ship_packets.h's
// SHIP_*_TYPE defines. The client re-presents its login credentials once
// more on arrival at the ship (the redirect packet itself carries no
// payload), reusing the same DC v1 client-login wire shape login already
// decodes.
const (
	ShipTypeLogin          = LoginTypeClientLogin
	ShipTypeMenuSelect     = 0x0010
	ShipTypeSimpleMail     = 0x0081
	ShipTypeQuestList      = 0x00A2
	ShipTypeTextMessage    = 0x00B0
	ShipTypeGMLogin        = 0x00F0
	ShipTypeCharRestoreReq = 0x00F1
)

// MenuIDQuestCategories is the root menu id a client selects to browse the
// quest catalog's top-level categories (ship_packets.h's send_quest_categories
// call site names the concept but not a fixed id — the retrieval pack's
// excerpt has no header defining it, so this is a fresh, internally
// consistent choice following MenuIDShipSelect's pattern; see DESIGN.md).
const MenuIDQuestCategories = 0x00130000

// Simple-mail body sizes (ship_packets.h's dc_simple_mail_pkt/
// pc_simple_mail_pkt): a fixed header, a 16-char(PC: UTF-16) sender name,
// the destination guildcard, and a fixed free-text "stuff" field.
const (
	DCSimpleMailNameSize  = 16
	DCSimpleMailTextSize  = 0x200
	PCSimpleMailNameSize  = 16 // UTF-16 code units
	PCSimpleMailTextSize  = 0x400 // bytes, UTF-16LE
)

// BugReportGuildcard is the reserved destination guildcard that marks a
// simple-mail packet as a bug report instead of player-to-player mail
// (spec.md §4.5.3). The original constant wasn't in the retrieval pack's
// excerpts; 0 is never a valid player guildcard, so it's reused here as the
// sentinel (see DESIGN.md).
const BugReportGuildcard = 0
