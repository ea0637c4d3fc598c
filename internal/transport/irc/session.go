package irc

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sorcix/irc"

	"github.com/vovakirdan/chanserv/internal/core"
)

// session is one line connection. The reader and the writer goroutine share
// the encoder, so every write goes through mu.
type session struct {
	conn   net.Conn
	client *core.Client
	lines  *bufio.Scanner
	log    *zerolog.Logger

	mu   sync.Mutex
	enc  *irc.Encoder
	nick string
}

// newSession reads lines of at most maxLine bytes, terminator included. A
// longer line ends the session.
func newSession(conn net.Conn, client *core.Client, maxLine int, logger *zerolog.Logger) *session {
	lines := bufio.NewScanner(conn)
	lines.Buffer(make([]byte, 0, min(maxLine, 4096)), maxLine)
	return &session{
		conn:   conn,
		client: client,
		lines:  lines,
		enc:    irc.NewEncoder(conn),
		log:    logger,
	}
}

func (s *session) readLoop(ctx context.Context) error {
	for s.lines.Scan() {
		msg := irc.ParseMessage(s.lines.Text())
		if msg == nil {
			continue
		}
		s.log.Debug().Str("line", msg.String()).Msg("<-")

		switch strings.ToUpper(msg.Command) {
		case irc.PING:
			s.encode(pong(args(msg)))
			continue
		case irc.PONG, irc.USER, "CAP":
			continue
		case irc.QUIT:
			s.encode(&irc.Message{Command: irc.ERROR, Trailing: "Closing link"})
			return nil
		}

		cmds, code := parse(msg)
		if code != "" {
			s.mu.Lock()
			reply := protocolError(s.nick, strings.ToUpper(msg.Command), code)
			s.mu.Unlock()
			s.encode(reply)
			continue
		}
		for _, cmd := range cmds {
			select {
			case s.client.Commands <- cmd:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return s.lines.Err()
}

func (s *session) writeLoop(ctx context.Context) {
	for {
		select {
		case ev, ok := <-s.client.Events:
			if !ok {
				return
			}
			s.deliver(ev)
		case <-ctx.Done():
			return
		}
	}
}

// deliver renders ev for this connection and tracks its own nickname.
func (s *session) deliver(ev *core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Kind == core.EventConnected {
		s.nick = ev.Nickname
	}
	s.write(render(ev, s.nick)...)
	if ev.Kind == core.EventOkay && ev.Command.Kind == core.CommandNick && ev.Command.Sender == s.nick {
		s.nick = ev.Command.Nickname
	}
}

func (s *session) encode(msgs ...*irc.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(msgs...)
}

// write must be called with mu held.
func (s *session) write(msgs ...*irc.Message) {
	for _, msg := range msgs {
		s.log.Debug().Str("line", msg.String()).Msg("->")
		if err := s.enc.Encode(msg); err != nil {
			s.log.Debug().Err(err).Msg("line write failed")
			s.conn.Close()
			return
		}
	}
}
