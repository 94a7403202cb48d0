package login

import (
	"encoding/binary"
	"time"
)

// Packet bodies for the login service's reply traffic (spec.md §4.3),
// grounded on dclogin.c's send_simple/send_dc_security/send_timestamp call
// sites. The original send_*() bodies live in a packets.c this pack's
// retrieval didn't carry, so the exact byte layouts below are a fresh,
// internally consistent design (see DESIGN.md) built to carry the fields
// those call sites actually pass (guildcard, a simple status flag, a
// timestamp string).

// simpleBodyLen matches dclogin.c's send_simple(c, type, flag) shape: the
// reply's own header type IS the semantic type, and the body is one flag.
const simpleBodyLen = 4

// encodeSimple builds the body for a "flag-only" reply (LOGIN0 ack, DCv2
// LOGINA prompt, GC LOGINC pass/fail, checksum ack, etc).
func encodeSimple(flag int32) []byte {
	buf := make([]byte, simpleBodyLen)
	binary.LittleEndian.PutUint32(buf, uint32(flag))
	return buf
}

// dcSecurityBodyLen carries the fields dclogin.c's call sites actually pass:
// the assigned guildcard and the language code the client last reported.
const dcSecurityBodyLen = 8

// encodeDCSecurity builds the body for send_dc_security(c, guildcard, NULL, 0).
func encodeDCSecurity(guildcard uint32, languageCode byte) []byte {
	buf := make([]byte, dcSecurityBodyLen)
	binary.LittleEndian.PutUint32(buf[0:], guildcard)
	buf[4] = languageCode
	return buf
}

// encodeTimestamp builds the body for send_timestamp(c): a fixed-width
// "YYYY:MM:DD: HH:MM:SS.mmm" string, the format PSO clients expect.
func encodeTimestamp(ts string) []byte {
	buf := make([]byte, 28)
	copy(buf, ts)
	return buf
}

func currentTimestamp() string {
	return time.Now().UTC().Format("2006:01:02: 15:04:05.000")
}

const infoReplyHeaderLen = 12

// encodeInfoReply builds the body for send_info_reply(c, msg): a small
// fixed header (unused here beyond zero-fill) followed by the NUL
// terminated message text, the shape every PSO "scrolling text" packet
// shares.
func encodeInfoReply(msg string) []byte {
	buf := make([]byte, infoReplyHeaderLen+len(msg)+1)
	copy(buf[infoReplyHeaderLen:], msg)
	return buf
}

const shipListEntryLen = 64

// encodeShipList builds the body for send_ship_list(c): one fixed-width
// entry per known ship, each carrying the ship's id and name. Grounded on
// dclogin.c's send_ship_list call site and shipgate.ShipStatusInfo's own
// name field width.
func encodeShipList(ships []ShipInfo) []byte {
	buf := make([]byte, len(ships)*shipListEntryLen)
	for i, s := range ships {
		off := i * shipListEntryLen
		binary.LittleEndian.PutUint32(buf[off:], s.ID)
		copy(buf[off+4:off+shipListEntryLen], s.Name)
	}
	return buf
}

const shipRedirectBodyLen = 12

// encodeShipRedirect builds a redirect packet body pointing at the chosen
// ship's block-listener endpoint (spec.md §6's redirect layout, reused here
// for ship transfer instead of the redirector's fixed login-server target).
func encodeShipRedirect(ship ShipInfo) []byte {
	buf := make([]byte, shipRedirectBodyLen)
	binary.BigEndian.PutUint32(buf[0:], ship.Addr)
	binary.LittleEndian.PutUint16(buf[4:], ship.Port)
	return buf
}
