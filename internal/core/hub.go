package core

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const defaultClientBuffer = 32

// Hub is the single serialization point between transports and the Processor.
// Connections register, push Commands, and receive Events; the hub resolves
// recipient nicknames to live clients.
type Hub struct {
	proc   *Processor
	log    *zerolog.Logger
	audit  AuditSink
	buffer int

	register   chan *Client
	unregister chan *Client
	inbox      chan Command
	done       chan struct{}

	clients map[UserID]*Client
	nextID  atomic.Int64
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithAudit records every processed command into sink.
func WithAudit(sink AuditSink) HubOption {
	return func(h *Hub) { h.audit = sink }
}

// WithClientBuffer sets the Commands/Events buffer size for clients made by NewClient.
func WithClientBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates a new chat hub instance.
func NewHub(opts ...HubOption) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		proc:       NewProcessor(),
		log:        &nop,
		buffer:     defaultClientBuffer,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan Command, defaultClientBuffer),
		done:       make(chan struct{}),
		clients:    make(map[UserID]*Client),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Processor exposes the state machine for read-only queries.
func (h *Hub) Processor() *Processor {
	return h.proc
}

// NewClient allocates a fresh identifier and builds a client for it.
func (h *Hub) NewClient() *Client {
	return NewClient(UserID(h.nextID.Add(1)-1), h.buffer)
}

// RegisterClient connects c. It returns immediately once the hub has stopped.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient disconnects c and closes its Events channel.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.connect(ctx, c)
		case c := <-h.unregister:
			h.disconnect(c)
		case cmd := <-h.inbox:
			h.handle(cmd)
		}
	}
}

func (h *Hub) connect(ctx context.Context, c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Warn().Int64("user_id", int64(c.ID)).Msg("client id already connected")
		return
	}
	h.clients[c.ID] = c
	ev := h.handle(Connect(c.ID))
	h.log.Debug().
		Int64("user_id", int64(c.ID)).
		Str("session", c.Session).
		Str("nick", ev.Nickname).
		Msg("client connected")
	go h.pump(ctx, c)
}

func (h *Hub) disconnect(c *Client) {
	if registered, ok := h.clients[c.ID]; !ok || registered != c {
		return
	}
	delete(h.clients, c.ID)
	close(c.gone)
	close(c.Events)

	ev := h.handle(Disconnect(c.ID))
	h.log.Debug().
		Int64("user_id", int64(c.ID)).
		Str("session", c.Session).
		Str("nick", ev.Nickname).
		Strs("channels", ev.Channels).
		Msg("client disconnected")
}

// pump forwards a client's commands into the hub, stamping the sender id.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			cmd.User = c.ID
			select {
			case h.inbox <- cmd:
			case <-c.gone:
				return
			case <-ctx.Done():
				return
			}
		case <-c.gone:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handle(cmd Command) *Event {
	ev := h.proc.Process(cmd)
	if ev.Failed() {
		h.log.Debug().
			Str("command", cmd.Kind.String()).
			Str("code", ev.Error.Code).
			Int64("user_id", int64(cmd.User)).
			Msg("command rejected")
	}
	if h.audit != nil {
		h.audit.Record(ev)
	}
	h.deliver(ev)
	return ev
}

func (h *Hub) deliver(ev *Event) {
	if ev.Failed() {
		if c, ok := h.clients[ev.Command.User]; ok {
			h.send(c, ev)
		}
		return
	}
	for _, nick := range ev.Recipients {
		id, ok := h.proc.UserID(nick)
		if !ok {
			continue
		}
		if c, ok := h.clients[id]; ok {
			h.send(c, ev)
		}
	}
}

func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().
			Int64("user_id", int64(c.ID)).
			Str("event", ev.Kind.String()).
			Msg("client event buffer full, dropping event")
	}
}

func (h *Hub) shutdown() {
	for id, c := range h.clients {
		close(c.gone)
		close(c.Events)
		delete(h.clients, id)
	}
}
