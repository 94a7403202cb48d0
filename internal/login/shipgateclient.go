package login

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/shipgate"
	"github.com/sylverant/psoserv/internal/wire"
)

// loginPseudoShipID identifies the login service's own connection to
// Shipgate in its ship roster — reserved so no real ship can collide with
// it (spec.md §4.3: "The login service subscribes to Shipgate for the live
// ship roster").
const loginPseudoShipID = 0

// ShipInfo is a snapshot of one ship's roster entry, as seen by the login
// service (spec.md §4.3's "Ship selection").
type ShipInfo struct {
	ID   uint32
	Name string
	Addr uint32
	Port uint16
}

// ShipgateClient maintains one outbound connection to Shipgate, re-dialing
// on failure, and keeps a read-only snapshot of the current ship roster
// learned from SSTATUS broadcasts. Grounded structurally on shipgate.Roster
// (mutex-guarded map keyed by ship_id); the link itself reuses
// shipgate.ClientHandshake.
type ShipgateClient struct {
	addr         string
	sharedSecret []byte

	mu    sync.RWMutex
	ships map[uint32]ShipInfo
}

// NewShipgateClient creates a ShipgateClient for the given shipgate address.
func NewShipgateClient(host string, port int, sharedSecret string) *ShipgateClient {
	return &ShipgateClient{
		addr:         fmt.Sprintf("%s:%d", host, port),
		sharedSecret: []byte(sharedSecret),
		ships:        make(map[uint32]ShipInfo),
	}
}

// Ships returns a snapshot of the currently known ship roster.
func (sc *ShipgateClient) Ships() []ShipInfo {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make([]ShipInfo, 0, len(sc.ships))
	for _, s := range sc.ships {
		out = append(out, s)
	}
	return out
}

// Ship looks up one ship by ID.
func (sc *ShipgateClient) Ship(id uint32) (ShipInfo, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	s, ok := sc.ships[id]
	return s, ok
}

// Run dials Shipgate and processes its broadcast stream until ctx is
// canceled, reconnecting with a fixed backoff on any error.
func (sc *ShipgateClient) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := sc.runOnce(ctx); err != nil {
			slog.Warn("shipgate client connection failed, retrying", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (sc *ShipgateClient) runOnce(ctx context.Context) error {
	conn, err := net.Dial("tcp", sc.addr)
	if err != nil {
		return fmt.Errorf("dialing shipgate at %s: %w", sc.addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	scratch := make([]byte, constants.ShipgateSendBufSize)
	sess, err := shipgate.ClientHandshake(conn, sc.sharedSecret, scratch)
	if err != nil {
		return fmt.Errorf("shipgate handshake: %w", err)
	}

	selfStatus := shipgate.ShipStatusInfo{
		Name:   "login",
		ShipID: loginPseudoShipID,
		Status: shipgate.StatusUp,
	}
	if err := wire.WritePacket(conn, wire.VariantShipgate, sess.Out, 0,
		constants.ShipgateTypeSStatus, shipgate.EncodeSStatus(selfStatus), scratch); err != nil {
		return fmt.Errorf("announcing login pseudo-ship: %w", err)
	}

	readBuf := make([]byte, constants.ShipgateReadBufSize)
	for {
		h, body, err := wire.ReadPacket(conn, wire.VariantShipgate, sess.In, readBuf)
		if err != nil {
			return fmt.Errorf("reading shipgate stream: %w", err)
		}
		if h.Type != constants.ShipgateTypeSStatus {
			continue
		}
		info, err := shipgate.DecodeSStatus(body)
		if err != nil {
			slog.Warn("shipgate client: bad SSTATUS", "err", err)
			continue
		}
		sc.applyStatus(info)
	}
}

func (sc *ShipgateClient) applyStatus(info shipgate.ShipStatusInfo) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if info.Status == shipgate.StatusDown {
		delete(sc.ships, info.ShipID)
		return
	}
	sc.ships[info.ShipID] = ShipInfo{ID: info.ShipID, Name: info.Name, Addr: info.Addr, Port: info.Port}
}
