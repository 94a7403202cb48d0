package shipgate

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/db"
	"github.com/sylverant/psoserv/internal/wire"
)

// Server is the shipgate federation listener: one TCP port, many ship
// connections, one Roster tracking who's currently up (spec.md §4.4).
// Structurally grounded on the teacher's internal/gslistener.Server (accept
// loop, per-connection handshake then packet loop, shared buffer pools).
type Server struct {
	cfg    config.Shipgate
	roster *Roster
	hand   *Handler

	sendPool *wire.BufPool
	readPool *wire.BufPool
}

// NewServer creates a shipgate Server.
func NewServer(cfg config.Shipgate, database *db.DB) *Server {
	roster := NewRoster()
	return &Server{
		cfg:      cfg,
		roster:   roster,
		hand:     NewHandler(database, roster),
		sendPool: wire.NewBufPool(constants.ShipgateSendBufSize),
		readPool: wire.NewBufPool(constants.ShipgateReadBufSize),
	}
}

// Roster exposes the connected-ship table for other services in-process
// (tests, metrics) that need to inspect it without a network round trip.
func (s *Server) Roster() *Roster {
	return s.roster
}

// Run listens on cfg.BindAddress:cfg.Port and accepts ship connections
// until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("shipgate listening", "addr", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	scratch := s.sendPool.Get(constants.ShipgateSendBufSize)
	defer s.sendPool.Put(scratch)

	sess, err := handshake(conn, []byte(s.cfg.SharedSecret), scratch)
	if err != nil {
		slog.Warn("shipgate handshake failed", "remote", remote, "err", err)
		return
	}

	readBuf := s.readPool.Get(constants.ShipgateReadBufSize)
	defer s.readPool.Put(readBuf)

	// The ship's first packet on the encrypted link must be its SSTATUS
	// announcing identity; everything before that has no ship_id to key a
	// roster entry on.
	h, body, err := wire.ReadPacket(conn, wire.VariantShipgate, sess.In, readBuf)
	if err != nil {
		slog.Warn("shipgate reading initial status failed", "remote", remote, "err", err)
		return
	}
	if h.Type != constants.ShipgateTypeSStatus {
		slog.Warn("shipgate expected initial SSTATUS", "remote", remote, "got_type", h.Type)
		return
	}
	info, err := DecodeSStatus(body)
	if err != nil {
		slog.Warn("shipgate decoding initial SSTATUS failed", "remote", remote, "err", err)
		return
	}

	entry := newShipEntry(info.ShipID, info.Name, info.Addr, info.IntAddr, info.Port)
	existing := s.roster.All() // snapshot before Register, so it excludes entry itself
	if err := s.roster.Register(entry); err != nil {
		slog.Warn("shipgate registration failed", "remote", remote, "err", err)
		return
	}
	slog.Info("ship connected", "ship_id", entry.ID, "name", entry.Name, "remote", remote)
	broadcastConnect(entry, existing)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	sendScratch := s.sendPool.Get(constants.ShipgateSendBufSize)
	go runSender(conn, sess, entry, sendScratch)

	defer func() {
		s.roster.Unregister(entry.ID)
		broadcastDisconnect(entry, s.roster.All())
		close(entry.Outbound)
		s.sendPool.Put(sendScratch)
		slog.Info("ship disconnected", "ship_id", entry.ID, "name", entry.Name)
	}()

	for {
		h, body, err := wire.ReadPacket(conn, wire.VariantShipgate, sess.In, readBuf)
		if err != nil {
			if ctx.Err() == nil {
				slog.Info("shipgate read ended", "ship_id", entry.ID, "err", err)
			}
			return
		}
		if err := s.hand.Handle(ctx, entry, h.Type, body); err != nil {
			slog.Warn("shipgate packet handling failed", "ship_id", entry.ID, "type", h.Type, "err", err)
		}
	}
}
