package shipgate

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/crypto"
	"github.com/sylverant/psoserv/internal/wire"
)

// loginPacketBodyLen is the body size of the unencrypted welcome/login
// exchange: a fixed-width message, three one-byte version fields, one pad
// byte, and the two 4-byte nonces (spec.md §4.4, grounded on
// original_source/trunk/shipgate/src/packets.c's send_welcome).
const loginPacketBodyLen = constants.ShipgateLoginMsgSize + 4 + constants.ShipgateNonceSize*2

func buildLoginBody(shipNonce, gateNonce []byte) []byte {
	body := make([]byte, loginPacketBodyLen)
	copy(body[:constants.ShipgateLoginMsgSize], constants.ShipgateLoginMsg)
	body[constants.ShipgateLoginMsgSize] = constants.ShipgateVersionMajor
	body[constants.ShipgateLoginMsgSize+1] = constants.ShipgateVersionMinor
	body[constants.ShipgateLoginMsgSize+2] = constants.ShipgateVersionMicro
	// body[...+3] is a pad byte, left zero.
	off := constants.ShipgateLoginMsgSize + 4
	copy(body[off:off+constants.ShipgateNonceSize], shipNonce)
	copy(body[off+constants.ShipgateNonceSize:], gateNonce)
	return body
}

func parseLoginBody(body []byte) (shipNonce, gateNonce []byte, err error) {
	if len(body) < loginPacketBodyLen {
		return nil, nil, fmt.Errorf("login packet too short: %d bytes", len(body))
	}
	off := constants.ShipgateLoginMsgSize + 4
	return body[off : off+constants.ShipgateNonceSize],
		body[off+constants.ShipgateNonceSize : off+2*constants.ShipgateNonceSize], nil
}

// handshake performs the shipgate side of connection setup: send an
// unencrypted welcome packet carrying a fresh gate nonce, read back the
// ship's own nonce in its login reply, and derive the RC4 session key both
// sides now compute independently from the shared secret and the two
// nonces (spec.md §4.4). The ship's identity (ship_id, name, address) is
// not carried here — it arrives in the first SSTATUS packet the ship sends
// once the encrypted link is up.
func handshake(conn net.Conn, sharedSecret []byte, scratch []byte) (*crypto.Session, error) {
	gateNonce, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("generating gate nonce: %w", err)
	}

	welcome := buildLoginBody(make([]byte, constants.ShipgateNonceSize), gateNonce)
	if err := wire.WritePacket(conn, wire.VariantShipgate, nil,
		constants.ShipgateFlagNoDeflate|constants.ShipgateFlagNoEncrypt,
		constants.ShipgateTypeLogin, welcome, scratch); err != nil {
		return nil, fmt.Errorf("sending welcome: %w", err)
	}

	h, respBody, err := wire.ReadPacket(conn, wire.VariantShipgate, nil, scratch)
	if err != nil {
		return nil, fmt.Errorf("reading ship login: %w", err)
	}
	if h.Type != constants.ShipgateTypeLogin {
		return nil, fmt.Errorf("expected login packet, got type %#x", h.Type)
	}

	shipNonce, _, err := parseLoginBody(respBody)
	if err != nil {
		return nil, err
	}

	key := crypto.DeriveShipgateKey(sharedSecret,
		binary.BigEndian.Uint32(shipNonce), binary.BigEndian.Uint32(gateNonce))
	return crypto.NewRC4Session(key)
}

func randomNonce() ([]byte, error) {
	n := make([]byte, constants.ShipgateNonceSize)
	if _, err := io.ReadFull(rand.Reader, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ClientHandshake performs the *dialing* side of shipgate connection setup —
// a ship, or the login service's roster-subscription pseudo-ship (spec.md
// §4.3). It reads the gateway's unencrypted welcome, replies with its own
// nonce, and derives the same RC4 session key the gateway computed in
// handshake. Exported because both internal/ship and internal/login dial
// Shipgate and need the identical client-side exchange.
func ClientHandshake(conn net.Conn, sharedSecret []byte, scratch []byte) (*crypto.Session, error) {
	h, body, err := wire.ReadPacket(conn, wire.VariantShipgate, nil, scratch)
	if err != nil {
		return nil, fmt.Errorf("reading shipgate welcome: %w", err)
	}
	if h.Type != constants.ShipgateTypeLogin {
		return nil, fmt.Errorf("unexpected shipgate handshake type %#x", h.Type)
	}
	_, gateNonceView, err := parseLoginBody(body)
	if err != nil {
		return nil, err
	}
	// gateNonceView aliases scratch, which WritePacket below will overwrite
	// to assemble the reply — copy out before reusing the buffer.
	gateNonce := append([]byte(nil), gateNonceView...)

	shipNonce, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("generating ship nonce: %w", err)
	}

	reply := buildLoginBody(shipNonce, make([]byte, constants.ShipgateNonceSize))
	if err := wire.WritePacket(conn, wire.VariantShipgate, nil,
		constants.ShipgateFlagNoDeflate|constants.ShipgateFlagNoEncrypt,
		constants.ShipgateTypeLogin, reply, scratch); err != nil {
		return nil, fmt.Errorf("sending login reply: %w", err)
	}

	key := crypto.DeriveShipgateKey(sharedSecret,
		binary.BigEndian.Uint32(shipNonce), binary.BigEndian.Uint32(gateNonce))
	return crypto.NewRC4Session(key)
}
