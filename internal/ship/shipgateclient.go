package ship

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/crypto"
	"github.com/sylverant/psoserv/internal/shipgate"
	"github.com/sylverant/psoserv/internal/wire"
)

// ShipgateSession owns the ship's one outbound connection to Shipgate: it
// announces this ship, reports periodic player counts, and forwards
// account-critical requests (GM checks, character-data restore) while
// consuming roster broadcasts (spec.md §4.5's "Ownership of one shipgate
// session"). Grounded structurally on internal/login.ShipgateClient, reusing
// shipgate.ClientHandshake for the link itself.
type ShipgateSession struct {
	cfg config.Ship

	mu   sync.Mutex
	conn net.Conn
	sess *crypto.Session
}

// NewShipgateSession creates a ShipgateSession for the given ship config.
func NewShipgateSession(cfg config.Ship) *ShipgateSession {
	return &ShipgateSession{cfg: cfg}
}

// Run dials Shipgate and services the link until ctx is canceled,
// reconnecting with a fixed backoff on any error.
func (s *ShipgateSession) Run(ctx context.Context, clientCount func() uint32) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.runOnce(ctx, clientCount); err != nil {
			slog.Warn("ship: shipgate session failed, retrying", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *ShipgateSession) runOnce(ctx context.Context, clientCount func() uint32) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.ShipgateHost, s.cfg.ShipgatePort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing shipgate at %s: %w", addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	scratch := make([]byte, constants.ShipgateSendBufSize)
	sess, err := shipgate.ClientHandshake(conn, []byte(s.cfg.SharedSecret), scratch)
	if err != nil {
		return fmt.Errorf("shipgate handshake: %w", err)
	}

	selfStatus := shipgate.ShipStatusInfo{
		Name:   s.cfg.ShipName,
		ShipID: uint32(s.cfg.ShipID),
		Status: shipgate.StatusUp,
	}
	if err := wire.WritePacket(conn, wire.VariantShipgate, sess.Out, 0,
		constants.ShipgateTypeSStatus, shipgate.EncodeSStatus(selfStatus), scratch); err != nil {
		return fmt.Errorf("announcing ship status: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.sess = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.sess = nil
		s.mu.Unlock()
	}()

	go s.reportCountsPeriodically(ctx, conn, sess, clientCount)

	readBuf := make([]byte, constants.ShipgateReadBufSize)
	for {
		h, body, err := wire.ReadPacket(conn, wire.VariantShipgate, sess.In, readBuf)
		if err != nil {
			return fmt.Errorf("reading shipgate stream: %w", err)
		}
		s.handle(h.Type, body)
	}
}

func (s *ShipgateSession) reportCountsPeriodically(ctx context.Context, conn net.Conn, sess *crypto.Session, clientCount func() uint32) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	scratch := make([]byte, constants.ShipgateSendBufSize)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wire.WritePacket(conn, wire.VariantShipgate, sess.Out, 0,
				constants.ShipgateTypeCount, shipgate.EncodeCount(clientCount()), scratch); err != nil {
				slog.Warn("ship: reporting player count failed", "err", err)
				return
			}
		}
	}
}

func (s *ShipgateSession) handle(typ uint16, body []byte) {
	switch typ {
	case constants.ShipgateTypeSStatus:
		info, err := shipgate.DecodeSStatus(body)
		if err != nil {
			slog.Warn("ship: bad sstatus from shipgate", "err", err)
			return
		}
		slog.Debug("ship: peer ship status", "ship_id", info.ShipID, "status", info.Status)
	case constants.ShipgateTypeGMLogin:
		info, err := shipgate.DecodeGMLogin(body)
		if err != nil {
			slog.Warn("ship: bad gmlogin response", "err", err)
			return
		}
		slog.Debug("ship: gm login answer", "guildcard", info.Guildcard, "block", info.Block, "privilege", info.Privilege)
	case constants.ShipgateTypeCReqAns:
		guildcard, slot, _, err := shipgate.DecodeCReq(body)
		if err != nil {
			slog.Warn("ship: bad character restore response", "err", err)
			return
		}
		slog.Debug("ship: character restore answer", "guildcard", guildcard, "slot", slot)
	case constants.ShipgateTypeError:
		failedType, reason, err := shipgate.DecodeError(body)
		if err != nil {
			return
		}
		slog.Warn("ship: shipgate reported error", "failed_type", failedType, "reason", reason)
	}
}

// RequestGMLogin asks Shipgate to verify a GM's access level for guildcard,
// reporting the block the client is currently on so the reply can be routed
// back to the right block if a future broadcast needs it.
func (s *ShipgateSession) RequestGMLogin(guildcard uint32, block uint32) error {
	return s.send(constants.ShipgateTypeGMLogin, shipgate.EncodeGMLogin(shipgate.GMLoginInfo{Guildcard: guildcard, Block: block}))
}

// RequestCharacterRestore asks Shipgate for a previous ship's saved
// character slot.
func (s *ShipgateSession) RequestCharacterRestore(guildcard uint32, slot int32) error {
	return s.send(constants.ShipgateTypeCReq, shipgate.EncodeCReq(guildcard, slot, make([]byte, constants.CharacterDataSize)))
}

func (s *ShipgateSession) send(typ uint16, body []byte) error {
	s.mu.Lock()
	conn, sess := s.conn, s.sess
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("ship: no active shipgate connection")
	}
	scratch := make([]byte, constants.ShipgateSendBufSize)
	return wire.WritePacket(conn, wire.VariantShipgate, sess.Out, 0, typ, body, scratch)
}
