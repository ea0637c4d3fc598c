package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/config"
	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/proto"
	"github.com/vovakirdan/chanserv/internal/store"
	"github.com/vovakirdan/chanserv/internal/store/sqlite"
)

type testEnv struct {
	ts  *httptest.Server
	hub *core.Hub
}

// startTestServer runs a hub and an HTTP server around it. st may be nil.
func startTestServer(t *testing.T, st store.AuditStore, opts ...core.HubOption) *testEnv {
	t.Helper()

	hub := core.NewHub(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	disabledLogger := zerolog.New(nil)
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second

	server := NewServer(hub, st, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, hub: hub}
}

// createTestStore creates an in-memory SQLite store with the audit schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	nick string
}

type rawOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// dial opens a WebSocket and consumes the connected greeting.
func (e *testEnv) dial(ctx context.Context, t *testing.T) *wsClient {
	t.Helper()

	wsURL := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	c := &wsClient{t: t, conn: conn}
	out := c.read(ctx)
	if out.Type != proto.OutboundTypeEvent || out.Event != proto.EventConnected {
		t.Fatalf("expected connected event, got %+v", out)
	}
	var data proto.EventConnectedData
	c.decode(out, &data)
	if data.Protocol != proto.ProtocolVersion {
		t.Fatalf("expected protocol %d, got %d", proto.ProtocolVersion, data.Protocol)
	}
	c.nick = data.User
	return c
}

func (c *wsClient) send(ctx context.Context, typ string, data any) {
	c.t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := wsjson.Write(ctx, c.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		c.t.Fatalf("write %s: %v", typ, err)
	}
}

func (c *wsClient) read(ctx context.Context) rawOutbound {
	c.t.Helper()
	var out rawOutbound
	if err := wsjson.Read(ctx, c.conn, &out); err != nil {
		c.t.Fatalf("read outbound: %v", err)
	}
	return out
}

// expect reads the next outbound and requires it to be the named event.
func (c *wsClient) expect(ctx context.Context, name string, v any) {
	c.t.Helper()
	out := c.read(ctx)
	if out.Type != proto.OutboundTypeEvent || out.Event != name {
		c.t.Fatalf("expected event %q, got %+v", name, out)
	}
	if v != nil {
		c.decode(out, v)
	}
}

func (c *wsClient) expectError(ctx context.Context, code string) {
	c.t.Helper()
	out := c.read(ctx)
	if out.Type != proto.OutboundTypeError || out.Error == nil {
		c.t.Fatalf("expected error %q, got %+v", code, out)
	}
	if out.Error.Code != code {
		c.t.Fatalf("expected error code %q, got %q", code, out.Error.Code)
	}
}

func (c *wsClient) decode(out rawOutbound, v any) {
	c.t.Helper()
	if err := json.Unmarshal(out.Data, v); err != nil {
		c.t.Fatalf("unmarshal event data: %v", err)
	}
}
