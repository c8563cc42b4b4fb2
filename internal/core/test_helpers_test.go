package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Broadcast, kind BroadcastKind) *Broadcast {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event queue closed before %v arrived", kind)
			}
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

func mustNoEvent(t *testing.T, ch <-chan *Broadcast) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(NewModel(), opts...)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub) (*Session, string) {
	t.Helper()

	s := hub.NewSession()
	if err := hub.Register(context.Background(), s); err != nil {
		t.Fatalf("register: %v", err)
	}
	ev := mustEvent(t, s.Events, BroadcastConnected)
	return s, ev.Nickname
}
