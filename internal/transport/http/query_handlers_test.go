package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vovakirdan/chanserv/internal/audit"
	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/proto"
)

func getJSON(t *testing.T, env *testEnv, path string, wantStatus int, v any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	env.ts.Config.Handler.ServeHTTP(resp, req)

	if resp.Code != wantStatus {
		t.Fatalf("GET %s: expected status %d, got %d: %s", path, wantStatus, resp.Code, resp.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
}

func TestQueryEndpoints(t *testing.T) {
	env := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := env.dial(ctx, t)
	bob := env.dial(ctx, t)

	alice.send(ctx, proto.InboundTypeNick, proto.NickData{Nick: "alice"})
	alice.expect(ctx, proto.EventNick, nil)
	alice.send(ctx, proto.InboundTypeCreate, proto.CreateData{Channel: "vip", InviteOnly: true})
	alice.expect(ctx, proto.EventCreate, nil)
	alice.send(ctx, proto.InboundTypeInvite, proto.TargetData{Channel: "vip", User: bob.nick})
	alice.expect(ctx, proto.EventNames, nil)

	var users UsersResponse
	getJSON(t, env, "/api/users", http.StatusOK, &users)
	if len(users.Users) != 2 || users.Users[0] != bob.nick || users.Users[1] != "alice" {
		// Default nicknames sort before lowercase names.
		t.Fatalf("unexpected users: %v", users.Users)
	}

	var channels []ChannelResponse
	getJSON(t, env, "/api/channels", http.StatusOK, &channels)
	if len(channels) != 1 {
		t.Fatalf("expected one channel, got %d", len(channels))
	}
	if channels[0].Name != "vip" || channels[0].Owner != "alice" || !channels[0].InviteOnly {
		t.Fatalf("unexpected channel: %+v", channels[0])
	}

	var vip ChannelResponse
	getJSON(t, env, "/api/channels/vip", http.StatusOK, &vip)
	if len(vip.Members) != 2 {
		t.Fatalf("expected two members, got %v", vip.Members)
	}

	var errResp ErrorResponse
	getJSON(t, env, "/api/channels/missing", http.StatusNotFound, &errResp)
	if errResp.Error == "" {
		t.Fatal("expected error message")
	}

	// Audit is not served without a store.
	getJSON(t, env, "/api/audit", http.StatusNotFound, nil)
}

func TestAuditEndpoint(t *testing.T) {
	st := createTestStore(t)
	writer := audit.NewWriter(st, 64, nil)
	env := startTestServer(t, st, core.WithAudit(writer))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := env.dial(ctx, t)
	c.send(ctx, proto.InboundTypeJoin, proto.ChannelData{Channel: "ghost"})
	c.expectError(ctx, core.ErrCodeNoSuchChannel)

	// Flush queued entries synchronously.
	stopped, stop := context.WithCancel(context.Background())
	stop()
	writer.Run(stopped)

	var entries []AuditEntryResponse
	getJSON(t, env, "/api/audit?limit=10", http.StatusOK, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Command != "join" || entries[0].Outcome != core.ErrCodeNoSuchChannel || entries[0].Channel != "ghost" {
		t.Fatalf("unexpected newest entry: %+v", entries[0])
	}
	if entries[1].Command != "connect" || entries[1].Actor != c.nick {
		t.Fatalf("unexpected oldest entry: %+v", entries[1])
	}

	getJSON(t, env, "/api/audit?limit=abc", http.StatusBadRequest, nil)
}
