package shipgate

import (
	"encoding/binary"
	"fmt"

	"github.com/sylverant/psoserv/internal/constants"
)

// shipNameSize is the fixed width of the ship name field in SSTATUS
// packets (grounded on send_ship_status's char name[] field).
const shipNameSize = 32

// sstatusBodyLen is name + ship_id + ship_addr + int_addr + port + status.
const sstatusBodyLen = shipNameSize + 4 + 4 + 4 + 2 + 2

// ShipStatusInfo is the decoded body of an SSTATUS packet (spec.md §4.4).
type ShipStatusInfo struct {
	Name    string
	ShipID  uint32
	Addr    uint32
	IntAddr uint32
	Port    uint16
	Status  ShipStatus
}

// EncodeSStatus builds an SSTATUS packet body, grounded on
// original_source/trunk/shipgate/src/packets.c's send_ship_status.
func EncodeSStatus(info ShipStatusInfo) []byte {
	body := make([]byte, sstatusBodyLen)
	copy(body[:shipNameSize], info.Name)
	binary.BigEndian.PutUint32(body[shipNameSize:], info.ShipID)
	binary.BigEndian.PutUint32(body[shipNameSize+4:], info.Addr)
	binary.BigEndian.PutUint32(body[shipNameSize+8:], info.IntAddr)
	binary.BigEndian.PutUint16(body[shipNameSize+12:], info.Port)
	binary.BigEndian.PutUint16(body[shipNameSize+14:], uint16(info.Status))
	return body
}

// DecodeSStatus parses an SSTATUS packet body.
func DecodeSStatus(body []byte) (ShipStatusInfo, error) {
	if len(body) < sstatusBodyLen {
		return ShipStatusInfo{}, fmt.Errorf("sstatus packet too short: %d bytes", len(body))
	}
	name := string(body[:shipNameSize])
	for i, b := range []byte(name) {
		if b == 0 {
			name = name[:i]
			break
		}
	}
	return ShipStatusInfo{
		Name:    name,
		ShipID:  binary.BigEndian.Uint32(body[shipNameSize:]),
		Addr:    binary.BigEndian.Uint32(body[shipNameSize+4:]),
		IntAddr: binary.BigEndian.Uint32(body[shipNameSize+8:]),
		Port:    binary.BigEndian.Uint16(body[shipNameSize+12:]),
		Status:  ShipStatus(binary.BigEndian.Uint16(body[shipNameSize+14:])),
	}, nil
}

// fwHeaderLen is the metadata prefix forward_dreamcast/forward_pc add ahead
// of the raw client packet bytes: the sending ship_id and, since the
// gateway itself decides routing rather than parsing client packet bodies,
// the destination ship_id the sending ship asked to reach (an addressing
// scheme original_source's retrieved excerpt doesn't show in full, decided
// here per DESIGN.md's open question on cross-ship forward routing).
const fwHeaderLen = 8

// EncodeForward wraps a raw DC/GC or PC client packet for forwarding
// through the shipgate to another ship, tagging it with the sender's and
// destination's ship_id (spec.md §4.4, grounded on packets.c's
// forward_dreamcast).
func EncodeForward(senderShipID, destShipID uint32, clientPacket []byte) []byte {
	body := make([]byte, fwHeaderLen+len(clientPacket))
	binary.BigEndian.PutUint32(body, senderShipID)
	binary.BigEndian.PutUint32(body[4:], destShipID)
	copy(body[fwHeaderLen:], clientPacket)
	return body
}

// DecodeForward splits a forwarded packet body back into its sender and
// destination ship_id and the original client packet bytes.
func DecodeForward(body []byte) (senderShipID, destShipID uint32, clientPacket []byte, err error) {
	if len(body) < fwHeaderLen {
		return 0, 0, nil, fmt.Errorf("forward packet too short: %d bytes", len(body))
	}
	return binary.BigEndian.Uint32(body), binary.BigEndian.Uint32(body[4:]), body[fwHeaderLen:], nil
}

// EncodeCount builds a COUNT packet body: the total player count across the
// ship's blocks, reported periodically (spec.md §4.4).
func EncodeCount(count uint32) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, count)
	return body
}

// DecodeCount parses a COUNT packet body.
func DecodeCount(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, fmt.Errorf("count packet too short: %d bytes", len(body))
	}
	return binary.BigEndian.Uint32(body), nil
}

// creqBodyLen is guildcard + slot + character data.
const creqBodyLen = 4 + 4 + constants.CharacterDataSize

// EncodeCReq builds a character-data-restore request/response body.
func EncodeCReq(guildcard uint32, slot int32, data []byte) []byte {
	body := make([]byte, creqBodyLen)
	binary.BigEndian.PutUint32(body, guildcard)
	binary.BigEndian.PutUint32(body[4:], uint32(slot))
	copy(body[8:], data)
	return body
}

// DecodeCReq parses a character-data-restore body.
func DecodeCReq(body []byte) (guildcard uint32, slot int32, data []byte, err error) {
	if len(body) < creqBodyLen {
		return 0, 0, nil, fmt.Errorf("creq packet too short: %d bytes", len(body))
	}
	return binary.BigEndian.Uint32(body), int32(binary.BigEndian.Uint32(body[4:])), body[8:creqBodyLen], nil
}

// gmLoginBodyLen is guildcard + block + a 1-byte privilege level (spec.md
// §4.4: "the reply carries guildcard, block, and a 1-byte privilege level;
// success/failure is encoded in the header flags").
const gmLoginBodyLen = 4 + 4 + 1

// GMLoginInfo is the decoded body of a GMLOGIN request or reply.
type GMLoginInfo struct {
	Guildcard uint32
	Block     uint32
	Privilege byte
}

// EncodeGMLogin builds a GM cross-ship login-check request/reply body: the
// guildcard attempting a GM login, the block it's logging in from, and its
// privilege level as resolved by the shipgate. Pass/fail is carried in the
// Shipgate Failure flag on the response packet, not the body.
func EncodeGMLogin(info GMLoginInfo) []byte {
	body := make([]byte, gmLoginBodyLen)
	binary.BigEndian.PutUint32(body, info.Guildcard)
	binary.BigEndian.PutUint32(body[4:], info.Block)
	body[8] = info.Privilege
	return body
}

// DecodeGMLogin parses a GMLOGIN request/reply body.
func DecodeGMLogin(body []byte) (GMLoginInfo, error) {
	if len(body) < gmLoginBodyLen {
		return GMLoginInfo{}, fmt.Errorf("gmlogin packet too short: %d bytes", len(body))
	}
	return GMLoginInfo{
		Guildcard: binary.BigEndian.Uint32(body),
		Block:     binary.BigEndian.Uint32(body[4:]),
		Privilege: body[8],
	}, nil
}

// EncodeError builds an ERROR packet body: the packet type that failed and
// a short human-readable reason (spec.md §4.4).
func EncodeError(failedType uint16, reason string) []byte {
	body := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(body, failedType)
	copy(body[2:], reason)
	return body
}

// DecodeError parses an ERROR packet body.
func DecodeError(body []byte) (failedType uint16, reason string, err error) {
	if len(body) < 2 {
		return 0, "", fmt.Errorf("error packet too short: %d bytes", len(body))
	}
	return binary.BigEndian.Uint16(body), string(body[2:]), nil
}
