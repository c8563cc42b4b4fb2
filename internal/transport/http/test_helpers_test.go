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

	"github.com/vovakirdan/palchat-server/internal/config"
	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/proto"
)

// wireFrame is the client-side view of an outbound frame.
type wireFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return &cfg
}

func startTestServer(t *testing.T, deps Deps) (*httptest.Server, *core.Hub) {
	t.Helper()

	hub := core.NewHub(core.NewModel())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	disabledLogger := zerolog.Nop()
	server := NewServer(hub, testConfig(), &disabledLogger, deps)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	var connected proto.EventConnectedData
	readEvent(ctx, t, conn, proto.EventConnected, &connected)
	return conn, connected.User
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readFrame(ctx context.Context, t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()

	var frame wireFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

// readEvent reads the next frame, checks it is the named event and decodes its
// payload into out.
func readEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, name string, out any) {
	t.Helper()

	frame := readFrame(ctx, t, conn)
	if frame.Type != proto.OutboundTypeEvent || frame.Event != name {
		t.Fatalf("expected event %q, got type=%q event=%q error=%+v", name, frame.Type, frame.Event, frame.Error)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(frame.Data, out); err != nil {
		t.Fatalf("unmarshal %s data: %v", name, err)
	}
}

func readError(ctx context.Context, t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()

	frame := readFrame(ctx, t, conn)
	if frame.Type != proto.OutboundTypeError || frame.Error == nil {
		t.Fatalf("expected error frame, got type=%q event=%q", frame.Type, frame.Event)
	}
	return frame.Error
}
