package login

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/wire"
)

// Server is the login service: six persistent-connection listeners (DC v1,
// DC v2, PC, and three GC ports), one Handler dispatching authenticated
// traffic, and one outbound ShipgateClient for the ship roster (spec.md
// §4.3). Structurally grounded on the redirector's six-listener accept-loop
// shape (internal/redirector/server.go), generalized from "write one packet
// and close" to a persistent per-connection read loop.
type Server struct {
	cfg      config.Login
	handler  *Handler
	shipgate *ShipgateClient

	sendPool *wire.BufPool
	readPool *wire.BufPool
}

// NewServer creates a login Server.
func NewServer(cfg config.Login, repo ClientRepository) *Server {
	sc := NewShipgateClient(cfg.ShipgateHost, cfg.ShipgatePort, cfg.SharedSecret)
	throttle := NewThrottle(cfg.LoginTryBeforeBan, time.Duration(cfg.LoginBlockSeconds)*time.Second)
	return &Server{
		cfg:      cfg,
		handler:  NewHandler(repo, sc, throttle),
		shipgate: sc,
		sendPool: wire.NewBufPool(constants.DefaultSendBufSize),
		readPool: wire.NewBufPool(constants.DefaultReadBufSize),
	}
}

type listener struct {
	port int
	kind Kind
}

func (s *Server) listeners() []listener {
	return []listener{
		{s.cfg.Ports.DCv1, KindDCv1},
		{s.cfg.Ports.DCv2, KindDCv2},
		{s.cfg.Ports.PC, KindPC},
		{s.cfg.Ports.GC, KindGC},
		{s.cfg.Ports.GC1, KindGC},
		{s.cfg.Ports.GC2, KindGC},
	}
}

// Run starts the shipgate client and all six listeners, blocking until ctx
// is canceled or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.shipgate.Run(ctx)
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

func (s *Server) serve(ctx context.Context, l listener) error {
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

	slog.Info("login listening", "addr", addr, "kind", l.kind)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept on %s: %w", addr, err)
		}
		go s.handleConn(ctx, conn, l.kind)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, kind Kind) {
	defer conn.Close()

	client, err := NewClient(conn, kind)
	if err != nil {
		slog.Warn("login: rejecting connection", "err", err)
		return
	}

	if !s.handler.throttle.Allowed(client.IP()) {
		slog.Info("login: ip banned, dropping", "ip", client.IP(), "conn", client.ConnID())
		return
	}

	sendScratch := s.sendPool.Get(constants.DefaultSendBufSize)
	defer s.sendPool.Put(sendScratch)
	readBuf := s.readPool.Get(constants.DefaultReadBufSize)
	defer s.readPool.Put(readBuf)

	if err := sendWelcome(client, sendScratch); err != nil {
		slog.Warn("login: welcome handshake failed", "ip", client.IP(), "conn", client.ConnID(), "err", err)
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
				slog.Debug("login: connection ended", "ip", client.IP(), "conn", client.ConnID(), "err", err)
			}
			return
		}

		reply, replyType, keepOpen, err := s.handler.Handle(ctx, client, h.Type, body)
		if err != nil {
			slog.Warn("login: handler error", "ip", client.IP(), "conn", client.ConnID(), "type", h.Type, "err", err)
			return
		}
		if reply != nil {
			if err := wire.WritePacket(conn, client.WireVariant(), client.Cipher().Out, 0, replyType, reply, sendScratch); err != nil {
				slog.Warn("login: write failed", "ip", client.IP(), "conn", client.ConnID(), "err", err)
				return
			}
		}
		if !keepOpen {
			return
		}
	}
}
