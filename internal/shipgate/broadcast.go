package shipgate

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/crypto"
	"github.com/sylverant/psoserv/internal/wire"
)

// outboundQueueSize bounds how many pending packets a ship's Outbound
// channel holds. Once it is full, enqueue returns an error and that packet
// is not queued; the sender never blocks, and packets already queued keep
// their order.
const outboundQueueSize = 256

// runSender drains e.Outbound in order and writes each packet to conn,
// encrypting with sess.Out. Exactly one goroutine must run this per
// connection — it is the sole owner of the write side of conn and of
// sess.Out, preserving the per-(gateway,ship) FIFO ordering spec.md §4.4
// requires.
func runSender(conn net.Conn, sess *crypto.Session, e *ShipEntry, scratch []byte) {
	for body := range e.Outbound {
		typ, flags, payload := splitEnvelope(body)
		if err := wire.WritePacket(conn, wire.VariantShipgate, sess.Out, flags, typ, payload, scratch); err != nil {
			slog.Warn("shipgate send failed", "ship_id", e.ID, "err", err)
			return
		}
	}
}

// encodeEnvelope prefixes a queued outbound packet with its type and flags
// so runSender doesn't need a richer channel element type.
func encodeEnvelope(typ, flags uint16, payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	buf[0] = byte(typ >> 8)
	buf[1] = byte(typ)
	buf[2] = byte(flags >> 8)
	buf[3] = byte(flags)
	copy(buf[4:], payload)
	return buf
}

func splitEnvelope(buf []byte) (typ, flags uint16, payload []byte) {
	typ = uint16(buf[0])<<8 | uint16(buf[1])
	flags = uint16(buf[2])<<8 | uint16(buf[3])
	return typ, flags, buf[4:]
}

// enqueue queues a packet for ship e, preserving FIFO order with everything
// already queued. Returns an error if the queue is full rather than
// blocking the caller (typically the handler goroutine for a different
// ship's connection).
func enqueue(e *ShipEntry, typ, flags uint16, payload []byte) error {
	select {
	case e.Outbound <- encodeEnvelope(typ, flags, payload):
		return nil
	default:
		return fmt.Errorf("shipgate: outbound queue full for ship_id %d", e.ID)
	}
}

// broadcastConnect implements the connect half of spec.md §4.4's SSTATUS
// fan-out: replay every already-connected ship's status to the newly
// registered entry (so it starts with a complete roster), then announce the
// new entry's up-status to every one of those ships, in the order Shipgate
// observed them. existing must be a snapshot of the roster taken before
// entry was registered, so it does not include entry itself.
func broadcastConnect(entry *ShipEntry, existing []*ShipEntry) {
	for _, other := range existing {
		if err := enqueue(entry, constants.ShipgateTypeSStatus, constants.ShipgateFlagNoDeflate, EncodeSStatus(other.StatusInfo())); err != nil {
			slog.Warn("shipgate sstatus replay failed", "ship_id", entry.ID, "other_ship_id", other.ID, "err", err)
		}
	}
	up := EncodeSStatus(entry.StatusInfo())
	for _, other := range existing {
		if err := enqueue(other, constants.ShipgateTypeSStatus, constants.ShipgateFlagNoDeflate, up); err != nil {
			slog.Warn("shipgate sstatus up broadcast failed", "ship_id", other.ID, "err", err)
		}
	}
}

// broadcastDisconnect implements the disconnect half: announce entry's
// down-status to every ship still on the roster (entry has already been
// Unregistered by the caller, so remaining excludes it automatically).
func broadcastDisconnect(entry *ShipEntry, remaining []*ShipEntry) {
	info := entry.StatusInfo()
	info.Status = StatusDown
	down := EncodeSStatus(info)
	for _, other := range remaining {
		if err := enqueue(other, constants.ShipgateTypeSStatus, constants.ShipgateFlagNoDeflate, down); err != nil {
			slog.Warn("shipgate sstatus down broadcast failed", "ship_id", other.ID, "err", err)
		}
	}
}

func newShipEntry(id uint32, name string, addr, intAddr uint32, port uint16) *ShipEntry {
	return &ShipEntry{
		ID:       id,
		Name:     name,
		Addr:     addr,
		IntAddr:  intAddr,
		Port:     port,
		Status:   StatusUp,
		Outbound: make(chan []byte, outboundQueueSize),
	}
}
