package ship

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sylverant/psoserv/internal/constants"
)

// Fixed string field widths shared with internal/login's DC v1 client-login
// packet — the ship reuses the exact same wire shape for the client's
// post-redirect re-login (see constants.ShipTypeLogin).
const (
	dcIDFieldLen     = 8
	dcSerialFieldLen = 8
	dcAccessFieldLen = 8
)

const shipLoginBodyLen = 1 + dcIDFieldLen + dcSerialFieldLen + dcAccessFieldLen

// decodeShipLogin parses the client's post-redirect login packet.
func decodeShipLogin(body []byte) (languageCode byte, dcID, serial, accessKey string, err error) {
	if len(body) < shipLoginBodyLen {
		return 0, "", "", "", fmt.Errorf("ship login body too short: %d", len(body))
	}
	languageCode = body[0]
	dcID = cString(body[1 : 1+dcIDFieldLen])
	serial = cString(body[1+dcIDFieldLen : 1+dcIDFieldLen+dcSerialFieldLen])
	accessKey = cString(body[1+dcIDFieldLen+dcSerialFieldLen : shipLoginBodyLen])
	return languageCode, dcID, serial, accessKey, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// dcSimpleMailBodyLen is tag + gc_sender + name + gc_dest + stuff, grounded
// on ship_packets.h's dc_simple_mail_pkt.
const dcSimpleMailBodyLen = 4 + 4 + constants.DCSimpleMailNameSize + 4 + constants.DCSimpleMailTextSize

// decodeDCSimpleMail parses a DC/GC simple-mail packet body.
func decodeDCSimpleMail(body []byte) (senderGC, destGC uint32, senderName string, text []byte, err error) {
	if len(body) < dcSimpleMailBodyLen {
		return 0, 0, "", nil, fmt.Errorf("dc simple mail body too short: %d", len(body))
	}
	senderGC = binary.LittleEndian.Uint32(body[4:8])
	name := body[8 : 8+constants.DCSimpleMailNameSize]
	destGC = binary.LittleEndian.Uint32(body[8+constants.DCSimpleMailNameSize : 12+constants.DCSimpleMailNameSize])
	stuffOff := 12 + constants.DCSimpleMailNameSize
	return senderGC, destGC, cString(name), body[stuffOff:dcSimpleMailBodyLen], nil
}

// menuSelectBodyLen is menu_id + item_id (ship_packets.h's dc_select_pkt).
const menuSelectBodyLen = 8

// decodeMenuSelect parses a client menu-selection packet.
func decodeMenuSelect(body []byte) (menuID, itemID uint32, err error) {
	if len(body) < menuSelectBodyLen {
		return 0, 0, fmt.Errorf("menu select body too short: %d", len(body))
	}
	return binary.LittleEndian.Uint32(body[0:4]), binary.LittleEndian.Uint32(body[4:8]), nil
}

// pcSimpleMailBodyLen mirrors dcSimpleMailBodyLen with a UTF-16 name field
// and a doubled-width text field (ship_packets.h's pc_simple_mail_pkt).
const pcSimpleMailBodyLen = 4 + 4 + constants.PCSimpleMailNameSize*2 + 4 + constants.PCSimpleMailTextSize

// decodePCSimpleMail parses a PC simple-mail packet body. The text field is
// left as raw UTF-16LE bytes; transcoding to Shift-JIS happens only for bug
// reports (bugreport.go), matching the original's bug_report-only iconv call.
func decodePCSimpleMail(body []byte) (senderGC, destGC uint32, text []byte, err error) {
	if len(body) < pcSimpleMailBodyLen {
		return 0, 0, nil, fmt.Errorf("pc simple mail body too short: %d", len(body))
	}
	senderGC = binary.LittleEndian.Uint32(body[4:8])
	destOff := 8 + constants.PCSimpleMailNameSize*2
	destGC = binary.LittleEndian.Uint32(body[destOff : destOff+4])
	stuffOff := destOff + 4
	return senderGC, destGC, body[stuffOff:pcSimpleMailBodyLen], nil
}
