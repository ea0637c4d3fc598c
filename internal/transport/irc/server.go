package irc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/core"
)

// Server accepts IRC-framed line connections and bridges them to the hub.
type Server struct {
	hub     *core.Hub
	maxLine int
	log     *zerolog.Logger
	wg      sync.WaitGroup
}

// NewServer builds a line transport server. Connections sending a line
// longer than maxLine bytes are dropped; zero means the RFC 1459 limit.
func NewServer(hub *core.Hub, maxLine int, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if maxLine <= 0 {
		maxLine = lineLimit + 2
	}
	return &Server{hub: hub, maxLine: maxLine, log: logger}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. On cancellation it
// closes ln and waits for open sessions to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("line transport listening")
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

// ServeConn runs one session until the peer quits, the connection fails or
// ctx is cancelled.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	client := s.hub.NewClient()
	logger := s.log.With().
		Int64("user_id", int64(client.ID)).
		Str("session", client.Session).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	sess := newSession(conn, client, s.maxLine, &logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.hub.RegisterClient(client)
	logger.Debug().Msg("line client connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.writeLoop(ctx)
	}()

	if err := sess.readLoop(ctx); err != nil && ctx.Err() == nil {
		logger.Debug().Err(err).Msg("line client read ended")
	}

	cancel()
	s.hub.UnregisterClient(client)
	<-done
	conn.Close()
	logger.Debug().Msg("line client disconnected")
}
