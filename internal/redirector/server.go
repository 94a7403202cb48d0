package redirector

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/constants"
)

// Server accepts connections on every DC/GC/PC port and immediately sends a
// redirect packet pointing at the login service, then closes. It is the
// simplest service in the cluster: it never reads from a client and never
// touches the database (spec.md §6).
//
// The original Sylverant redirector is a single select() loop over six
// sockets; the idiomatic Go rendition is one goroutine per listener, each
// running its own Accept loop, joined by an errgroup so any listener
// failure brings the whole service down cleanly.
type Server struct {
	cfg    config.Redirector
	target net.IP
}

// NewServer resolves cfg.TargetHost and returns a ready-to-run Server.
func NewServer(cfg config.Redirector) (*Server, error) {
	ips, err := net.LookupIP(cfg.TargetHost)
	if err != nil {
		return nil, fmt.Errorf("resolving target host %q: %w", cfg.TargetHost, err)
	}
	var target net.IP
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			target = v4
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("target host %q has no IPv4 address", cfg.TargetHost)
	}
	return &Server{cfg: cfg, target: target}, nil
}

// listener describes one of the six ports the redirector serves.
type listener struct {
	name string
	port int
	kind portKind
}

type portKind int

const (
	kindDCv1 portKind = iota
	kindDCv2
	kindPC
	kindGC  // GC port 0: sends selective redirect, then DC redirect to GC
	kindGC1 // GC port 1
	kindGC2 // GC port 2
)

// Run starts all six listeners and blocks until ctx is canceled or one of
// them fails.
func (s *Server) Run(ctx context.Context) error {
	listeners := []listener{
		{"dc_v1", s.cfg.Ports.DCv1, kindDCv1},
		{"dc_v2", s.cfg.Ports.DCv2, kindDCv2},
		{"pc", s.cfg.Ports.PC, kindPC},
		{"gc", s.cfg.Ports.GC, kindGC},
		{"gc1", s.cfg.Ports.GC1, kindGC1},
		{"gc2", s.cfg.Ports.GC2, kindGC2},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, l := range listeners {
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
		return fmt.Errorf("listening on %s (%s): %w", addr, l.name, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("redirector listening", "name", l.name, "addr", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept on %s: %w", l.name, err)
		}
		go s.handle(conn, l)
	}
}

func (s *Server) handle(conn net.Conn, l listener) {
	defer conn.Close()

	var buf [constants.SelectiveRedirectLen]byte
	var n int

	switch l.kind {
	case kindDCv1, kindDCv2, kindGC1, kindGC2:
		targetPort := l.port
		switch l.kind {
		case kindDCv1:
			targetPort = s.cfg.Ports.DCv1
		case kindDCv2:
			targetPort = s.cfg.Ports.DCv2
		case kindGC1:
			targetPort = s.cfg.Ports.GC1
		case kindGC2:
			targetPort = s.cfg.Ports.GC2
		}
		n = buildRedirect(buf[:], s.target, uint16(targetPort), false)
	case kindPC:
		n = buildRedirect(buf[:], s.target, uint16(s.cfg.Ports.PC), true)
	case kindGC:
		// The shared GC port also catches PC clients that connected to the
		// wrong place; disambiguate with the selective redirect, then send
		// the real GC redirect right behind it (spec.md §6).
		selN := buildSelectiveRedirect(buf[:], s.target, uint16(s.cfg.Ports.PC))
		if _, err := conn.Write(buf[:selN]); err != nil {
			slog.Warn("redirector write failed", "name", l.name, "err", err)
			return
		}
		n = buildRedirect(buf[:], s.target, uint16(s.cfg.Ports.GC), false)
	}

	if _, err := conn.Write(buf[:n]); err != nil {
		slog.Warn("redirector write failed", "name", l.name, "err", err)
	}
}
