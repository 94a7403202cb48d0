// Package shipgate implements the federation service every ship dials out
// to: one authenticated, RC4-encrypted, multiplexed link per ship, a roster
// of connected ships keyed by ship_id, and per-ship FIFO broadcast ordering
// (spec.md §4.4). Grounded structurally on the teacher's internal/gslistener
// package (one listener, one Server per link type, a Handler dispatching by
// packet type) but built fresh against the Shipgate wire format instead of
// generalizing the teacher's Blowfish/RSA GS-auth handshake, which has no
// PSO analogue.
package shipgate

import (
	"fmt"
	"sync"
)

// ShipStatus mirrors the status values carried by SSTATUS packets.
type ShipStatus int

const (
	StatusUp ShipStatus = iota
	StatusDown
)

// ShipEntry is one row in the roster: everything the gateway and other
// ships need to know about a connected ship. ShipEntry is arena-style —
// ships never hold pointers to each other, only ship_id values looked up
// through the Roster (spec.md §4.4's "no cross-ship pointers").
type ShipEntry struct {
	ID       uint32
	Name     string
	Addr     uint32 // external IPv4, network byte order as received
	IntAddr  uint32 // internal/LAN IPv4
	Port     uint16
	Status   ShipStatus
	Outbound chan []byte // per-ship FIFO broadcast queue (spec.md §4.4)
}

// StatusInfo converts an entry's current roster fields into the payload an
// SSTATUS broadcast carries about it.
func (e *ShipEntry) StatusInfo() ShipStatusInfo {
	return ShipStatusInfo{
		Name:    e.Name,
		ShipID:  e.ID,
		Addr:    e.Addr,
		IntAddr: e.IntAddr,
		Port:    e.Port,
		Status:  e.Status,
	}
}

// Roster is the shipgate's table of currently connected ships. order
// records ship_ids in the sequence Shipgate observed their connect events,
// since a broadcast must reach "every currently-connected ship... in the
// order Shipgate observed the triggering event" (spec.md §4.4) and Go map
// iteration order is randomized.
type Roster struct {
	mu    sync.RWMutex
	ships map[uint32]*ShipEntry
	order []uint32
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{ships: make(map[uint32]*ShipEntry)}
}

// Register adds the roster entry for a ship and appends its ship_id to the
// registration order. It returns an error, leaving the roster unchanged, if
// that ship_id is already registered: a reconnecting ship can register again
// only after its old entry has been Unregistered by the server's disconnect
// cleanup, which also closes the old entry's Outbound channel.
func (r *Roster) Register(e *ShipEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ships[e.ID]; exists {
		return fmt.Errorf("shipgate: ship_id %d already registered", e.ID)
	}
	r.ships[e.ID] = e
	r.order = append(r.order, e.ID)
	return nil
}

// Unregister removes a ship from the roster.
func (r *Roster) Unregister(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ships[id]; !exists {
		return
	}
	delete(r.ships, id)
	for i, ship := range r.order {
		if ship == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the entry for id, or nil if not connected.
func (r *Roster) Get(id uint32) *ShipEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ships[id]
}

// All returns a snapshot slice of every connected ship, in the order each
// was registered (spec.md §4.4's "in the order Shipgate observed the
// triggering event").
func (r *Roster) All() []*ShipEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ShipEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.ships[id])
	}
	return out
}

// Count returns the number of connected ships.
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ships)
}
