package ship

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/questlist"
	"github.com/sylverant/psoserv/internal/wire"
)

// Server is the ship service: one listener per variant at the lobby-select
// entry point, one listener per variant per configured block, and one
// outbound ShipgateSession (spec.md §4.5). Structurally grounded on the
// login service's multi-listener accept-loop shape (internal/login.Server),
// generalized from a fixed six-port listener set to a listener set repeated
// once per block.
type Server struct {
	cfg      config.Ship
	handler  *Handler
	shipgate *ShipgateSession

	sendPool *wire.BufPool
	readPool *wire.BufPool

	clientCount atomic.Int64
}

// NewServer creates a ship Server. Quest catalog load failures are logged
// and leave the ship with an empty catalog rather than failing startup —
// a missing or malformed quest directory shouldn't keep the ship from
// serving logins, mail, and forwards.
func NewServer(cfg config.Ship) *Server {
	sg := NewShipgateSession(cfg)
	quests, err := questlist.Load(cfg.QuestDir)
	if err != nil {
		slog.Warn("ship: quest catalog load failed, starting with an empty catalog", "dir", cfg.QuestDir, "err", err)
		quests = &questlist.List{}
	}
	return &Server{
		cfg:      cfg,
		handler:  NewHandler(sg, cfg.BugReportDir, quests),
		shipgate: sg,
		sendPool: wire.NewBufPool(constants.DefaultSendBufSize),
		readPool: wire.NewBufPool(constants.DefaultReadBufSize),
	}
}

type shipListener struct {
	port    int
	kind    Kind
	blockID int
}

// listeners builds the full listener set: block 0 is the lobby-select entry
// point (config.Ship.VariantPorts), blocks 1..N are config.Ship.Blocks.
func (s *Server) listeners() []shipListener {
	var out []shipListener
	addSet := func(p config.RedirectorPorts, blockID int) {
		out = append(out,
			shipListener{p.DCv1, KindDCv1, blockID},
			shipListener{p.DCv2, KindDCv2, blockID},
			shipListener{p.PC, KindPC, blockID},
			shipListener{p.GC, KindGC, blockID},
			shipListener{p.GC1, KindGC, blockID},
			shipListener{p.GC2, KindGC, blockID},
		)
	}
	addSet(s.cfg.VariantPorts, 0)
	for i, block := range s.cfg.Blocks {
		addSet(block, i+1)
	}
	return out
}

// Run starts the shipgate session and every variant listener (lobby-select
// plus one set per block), blocking until ctx is canceled or a listener
// fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.shipgate.Run(ctx, func() uint32 { return uint32(s.clientCount.Load()) })
		return nil
	})

	for _, l := range s.listeners() {
		l := l
		g.Go(func() error {
			return s.serve(ctx, l)
		})
	}

	return g.Wait()
}

func (s *Server) serve(ctx context.Context, l shipListener) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, l.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("ship listening", "addr", addr, "kind", l.kind, "block", l.blockID)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept on %s: %w", addr, err)
		}
		go s.handleConn(ctx, conn, l.kind, l.blockID)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, kind Kind, blockID int) {
	defer conn.Close()

	client, err := NewClient(conn, kind, blockID)
	if err != nil {
		slog.Warn("ship: rejecting connection", "err", err)
		return
	}

	s.clientCount.Add(1)
	defer s.clientCount.Add(-1)

	sendScratch := s.sendPool.Get(constants.DefaultSendBufSize)
	defer s.sendPool.Put(sendScratch)
	readBuf := s.readPool.Get(constants.DefaultReadBufSize)
	defer s.readPool.Put(readBuf)

	if err := sendWelcome(client, sendScratch); err != nil {
		slog.Warn("ship: welcome handshake failed", "ip", client.IP(), "conn", client.ConnID(), "err", err)
		return
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		h, body, err := wire.ReadPacket(conn, client.WireVariant(), client.Cipher().In, readBuf)
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("ship: connection ended", "ip", client.IP(), "conn", client.ConnID(), "err", err)
			}
			return
		}

		reply, replyType, keepOpen, err := s.handler.Handle(client, h.Type, body)
		if err != nil {
			slog.Warn("ship: handler error", "ip", client.IP(), "conn", client.ConnID(), "type", h.Type, "err", err)
			return
		}
		if reply != nil {
			if err := wire.WritePacket(conn, client.WireVariant(), client.Cipher().Out, 0, replyType, reply, sendScratch); err != nil {
				slog.Warn("ship: write failed", "ip", client.IP(), "conn", client.ConnID(), "err", err)
				return
			}
		}
		if !keepOpen {
			return
		}
	}
}
