package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chanserv/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	nick := flag.String("nick", "tester", "nickname to take")
	channel := flag.String("channel", "general", "channel name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	steps := []struct {
		typ  string
		data any
	}{
		{proto.InboundTypeNick, proto.NickData{Nick: *nick}},
		// Fails with channel_exists when someone else created it first; the join still works.
		{proto.InboundTypeCreate, proto.CreateData{Channel: *channel}},
		{proto.InboundTypeJoin, proto.ChannelData{Channel: *channel}},
		{proto.InboundTypeMsg, proto.MsgData{Channel: *channel, Text: *text}},
	}
	for _, step := range steps {
		if err := send(step.typ, step.data); err != nil {
			return err
		}
	}

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if outbound.Error != nil {
			fmt.Printf("error: code=%s command=%s msg=%q\n", outbound.Error.Code, outbound.Error.Command, outbound.Error.Msg)
			continue
		}
		fmt.Printf("event=%s data=%s\n", outbound.Event, string(outbound.Data))

		if outbound.Event == proto.EventMessage {
			var evt proto.EventMessageData
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal message: %w", err)
			}
			if evt.User == *nick && evt.Text == *text {
				fmt.Printf("round trip ok: channel=%s user=%s\n", evt.Channel, evt.User)
				return nil
			}
		}
	}
}
