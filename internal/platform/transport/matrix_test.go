package transport

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient("https://matrix.hospital.example", "@censobot:hospital.example", "syt_token", zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func textEvent(sender, room, body string) *event.Event {
	return &event.Event{
		Sender: id.UserID(sender),
		RoomID: id.RoomID(room),
		ID:     id.EventID("$evt"),
		Content: event.Content{
			Parsed: &event.MessageEventContent{MsgType: event.MsgText, Body: body},
		},
	}
}

func TestOnMessageDelivers(t *testing.T) {
	c := newTestClient(t)

	var got Message
	c.OnMessage(func(m Message) { got = m })
	c.onMessage(context.Background(), textEvent("@dr.silva:hospital.example", "!room:hs", "/buscar silva"))

	if got.Body != "/buscar silva" || got.RoomID != "!room:hs" || got.Sender != "@dr.silva:hospital.example" {
		t.Fatalf("message not delivered intact: %+v", got)
	}
}

func TestOnMessageIgnoresOwnEcho(t *testing.T) {
	c := newTestClient(t)

	called := false
	c.OnMessage(func(Message) { called = true })
	c.onMessage(context.Background(), textEvent("@censobot:hospital.example", "!room:hs", "hello"))

	if called {
		t.Fatal("bot must ignore its own messages")
	}
}

func TestOnMessageIgnoresNonText(t *testing.T) {
	c := newTestClient(t)

	called := false
	c.OnMessage(func(Message) { called = true })
	evt := textEvent("@dr.silva:hospital.example", "!room:hs", "photo")
	evt.Content.Parsed.(*event.MessageEventContent).MsgType = event.MsgImage
	c.onMessage(context.Background(), evt)

	if called {
		t.Fatal("non-text events must be ignored")
	}
}

func TestSendTextFailsFast(t *testing.T) {
	c := newTestClient(t)
	c.state.Store(StateFailed)

	if err := c.SendText(context.Background(), "!room:hs", "hi"); err != ErrUnavailable {
		t.Fatalf("failed transport must refuse sends with ErrUnavailable, got %v", err)
	}
}

func TestInitialState(t *testing.T) {
	c := newTestClient(t)
	if c.Connected() {
		t.Fatal("client must not report connected before Run")
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected initial state, got %d", c.State())
	}
}
