package login

import (
	"bytes"
	"fmt"
)

// Fixed string field widths used by the DC/PC/GC login packets, matching
// the capacities dclogin.c passes to sylverant_db_escape_str at each call
// site (8 for dc_id/serial on DC, 8/12 for serial/access on GC). The
// header defining the full packet structs wasn't in the retrieval pack, so
// the surrounding offsets are a fresh, internally consistent layout (see
// DESIGN.md) sized to carry exactly the fields the handlers read.
const (
	dcIDFieldLen     = 8
	dcSerialFieldLen = 8
	dcAccessFieldLen = 8

	gcSerialFieldLen   = 8
	gcAccessFieldLen   = 12
	gcPasswordFieldLen = 16
)

// dcLoginBodyLen is dc_id + serial + access_key, one language-code byte
// first (handle_login reads pkt->language_code).
const dcLoginBodyLen = 1 + dcIDFieldLen + dcSerialFieldLen + dcAccessFieldLen

// decodeDCLogin parses a DC v1 LOGIN packet body (handle_login's
// login_dclogin_pkt).
func decodeDCLogin(body []byte) (languageCode byte, dcID, serial, accessKey string, err error) {
	if len(body) < dcLoginBodyLen {
		return 0, "", "", "", fmt.Errorf("dc login body too short: %d", len(body))
	}
	languageCode = body[0]
	dcID = cString(body[1 : 1+dcIDFieldLen])
	serial = cString(body[1+dcIDFieldLen : 1+dcIDFieldLen+dcSerialFieldLen])
	accessKey = cString(body[1+dcIDFieldLen+dcSerialFieldLen : dcLoginBodyLen])
	return languageCode, dcID, serial, accessKey, nil
}

// dcV2LoginBodyLen mirrors dcLoginBodyLen minus the leading language-code
// byte (handle_v2login reads no language code — it's recovered later via
// LOGIND).
const dcV2LoginBodyLen = dcIDFieldLen + dcSerialFieldLen + dcAccessFieldLen

// decodeDCV2Login parses a DC v2 / PC login packet body (handle_v2login's
// login_dcv2login_pkt). PC clients populate dc_id too, even though the PC
// lookup path in dclogin.c ignores it.
func decodeDCV2Login(body []byte) (dcID, serial, accessKey string, err error) {
	if len(body) < dcV2LoginBodyLen {
		return "", "", "", fmt.Errorf("dc v2/pc login body too short: %d", len(body))
	}
	dcID = cString(body[0:dcIDFieldLen])
	serial = cString(body[dcIDFieldLen : dcIDFieldLen+dcSerialFieldLen])
	accessKey = cString(body[dcIDFieldLen+dcSerialFieldLen : dcV2LoginBodyLen])
	return dcID, serial, accessKey, nil
}

// gcHLCheckBodyLen is serial + access_key (handle_gchlcheck's
// login_gc_hlcheck_pkt).
const gcHLCheckBodyLen = gcSerialFieldLen + gcAccessFieldLen

// decodeGCHLCheck parses a GC VERIFY_LICENSE packet body.
func decodeGCHLCheck(body []byte) (serial, accessKey string, err error) {
	if len(body) < gcHLCheckBodyLen {
		return "", "", fmt.Errorf("gc hlcheck body too short: %d", len(body))
	}
	serial = cString(body[0:gcSerialFieldLen])
	accessKey = cString(body[gcSerialFieldLen:gcHLCheckBodyLen])
	return serial, accessKey, nil
}

// gcLoginCBodyLen is serial + access_key + password (handle_gcloginc's
// login_gc_loginc_pkt).
const gcLoginCBodyLen = gcSerialFieldLen + gcAccessFieldLen + gcPasswordFieldLen

// decodeGCLoginC parses a GC LOGINC packet body.
func decodeGCLoginC(body []byte) (serial, accessKey, password string, err error) {
	if len(body) < gcLoginCBodyLen {
		return "", "", "", fmt.Errorf("gc loginc body too short: %d", len(body))
	}
	serial = cString(body[0:gcSerialFieldLen])
	accessKey = cString(body[gcSerialFieldLen : gcSerialFieldLen+gcAccessFieldLen])
	password = cString(body[gcSerialFieldLen+gcAccessFieldLen : gcLoginCBodyLen])
	return serial, accessKey, password, nil
}

// gcLoginDEBodyLen is serial + access_key, shared by handle_gclogine and
// handle_logind's login_login_de_pkt (language_code is the first byte).
const gcLoginDEBodyLen = 1 + gcSerialFieldLen + gcAccessFieldLen

// decodeGCLoginDE parses a GC LOGINE / LOGIND packet body.
func decodeGCLoginDE(body []byte) (languageCode byte, serial, accessKey string, err error) {
	if len(body) < gcLoginDEBodyLen {
		return 0, "", "", fmt.Errorf("gc login d/e body too short: %d", len(body))
	}
	languageCode = body[0]
	serial = cString(body[1 : 1+gcSerialFieldLen])
	accessKey = cString(body[1+gcSerialFieldLen : gcLoginDEBodyLen])
	return languageCode, serial, accessKey, nil
}

// cString trims a fixed-width, NUL-padded C string field down to its
// content.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
