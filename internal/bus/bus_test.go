package bus

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"orderbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishSubscribe(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	b.Publish(domain.Message{ID: "m1", ChannelID: "c1"})

	select {
	case got := <-b.Subscribe():
		if got.ID != "m1" || got.ChannelID != "c1" {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestSendOutbound_RoutesToHandler(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	got := make(chan domain.OutboundMessage, 1)
	b.OnOutbound("discord", func(msg domain.OutboundMessage) {
		got <- msg
	})

	b.SendOutbound(domain.OutboundMessage{
		Channel: "discord",
		ChatID:  "out",
		Content: "caption",
		Attachment: &domain.Attachment{
			Name: "ORD-1.docx",
			Data: []byte{1, 2, 3},
		},
	})

	select {
	case msg := <-got:
		if msg.ChatID != "out" || msg.Attachment == nil || msg.Attachment.Name != "ORD-1.docx" {
			t.Fatalf("unexpected outbound: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("outbound never delivered")
	}
}

func TestSendOutbound_NoHandlerDoesNotPanic(t *testing.T) {
	b := New(10, testLogger())
	defer b.Close()

	b.SendOutbound(domain.OutboundMessage{Channel: "nobody", Content: "x"})
}

func TestPublishAfterClose(t *testing.T) {
	b := New(10, testLogger())
	b.Close()

	// Must not panic on a closed bus.
	b.Publish(domain.Message{ID: "late"})
}
