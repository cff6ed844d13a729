package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"orderbot/internal/bus"
	"orderbot/internal/domain"
	"orderbot/internal/receipt"
)

const (
	sourceChannel = "src"
	outputChannel = "out"
)

const orderBody = "🛒 New Order Received\n" +
	"👤 First Name: Ana\n" +
	"📧 Email: a@x.com\n" +
	"📍 Location: City\n" +
	"🛍️ Cart Items:\n" +
	"• Shirt\n" +
	"• Hat\n" +
	"💳 Payment Method: Card\n" +
	"💰 Total Price: $40\n" +
	"🆔 Order ID: ORD-1"

type stubFetcher struct {
	msg *domain.Message
	err error
}

func (f *stubFetcher) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	return f.msg, f.err
}

// startPipeline wires a real bus, renderer and classifier around the
// processor and returns the channel receiving dispatched receipts.
func startPipeline(t *testing.T, fetcher domain.MessageFetcher) (*bus.InMemoryBus, <-chan domain.OutboundMessage) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b := bus.New(10, logger)
	out := make(chan domain.OutboundMessage, 10)
	b.OnOutbound("discord", func(msg domain.OutboundMessage) {
		out <- msg
	})

	p := New(Config{
		SourceChannelID: sourceChannel,
		OutputChannelID: outputChannel,
		Bus:             b,
		Fetcher:         fetcher,
		Renderer:        receipt.NewRenderer("https://shop.example.com", logger),
		Logger:          logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)
	t.Cleanup(func() {
		cancel()
		b.Close()
	})

	return b, out
}

func waitOutbound(t *testing.T, out <-chan domain.OutboundMessage) domain.OutboundMessage {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no receipt dispatched")
		return domain.OutboundMessage{}
	}
}

func orderMessage(id, body string) domain.Message {
	return domain.Message{
		ID:        id,
		ChannelID: sourceChannel,
		Author:    domain.Author{ID: "customer"},
		Content:   body,
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	b.Publish(orderMessage("m1", orderBody))

	msg := waitOutbound(t, out)
	if msg.ChatID != outputChannel {
		t.Fatalf("dispatched to %q, want %q", msg.ChatID, outputChannel)
	}
	if want := "📦 Order sticker for Ana's Order (ORD-1)"; msg.Content != want {
		t.Fatalf("caption: got %q, want %q", msg.Content, want)
	}
	if msg.Attachment == nil {
		t.Fatal("receipt attachment missing")
	}
	if msg.Attachment.Name != "ORD-1.docx" {
		t.Fatalf("filename: got %q", msg.Attachment.Name)
	}
	if len(msg.Attachment.Data) == 0 {
		t.Fatal("receipt document is empty")
	}
}

func TestPipeline_EmbedBody(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	msg := orderMessage("m1", "")
	msg.Embeds = []domain.Embed{{Description: orderBody}}
	b.Publish(msg)

	got := waitOutbound(t, out)
	if got.Attachment == nil || got.Attachment.Name != "ORD-1.docx" {
		t.Fatalf("embed-bodied order not dispatched: %+v", got)
	}
}

// publishThenSentinel publishes a message that must be dropped, then a
// valid sentinel order, and asserts the sentinel is the first dispatch.
func publishThenSentinel(t *testing.T, b *bus.InMemoryBus, out <-chan domain.OutboundMessage, dropped domain.Message) {
	t.Helper()
	b.Publish(dropped)

	sentinel := "👤 First Name: Zed\n📧 Email: z@x.com\n🆔 Order ID: SENTINEL"
	b.Publish(orderMessage("sentinel", sentinel))

	got := waitOutbound(t, out)
	if got.Attachment == nil || got.Attachment.Name != "SENTINEL.docx" {
		t.Fatalf("expected only the sentinel to be dispatched, got %+v", got)
	}
}

func TestPipeline_IgnoresOtherChannels(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	msg := orderMessage("m1", orderBody)
	msg.ChannelID = "elsewhere"
	publishThenSentinel(t, b, out, msg)
}

func TestPipeline_IgnoresNonWebhookBots(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	msg := orderMessage("m1", orderBody)
	msg.Author.Bot = true
	publishThenSentinel(t, b, out, msg)
}

func TestPipeline_AcceptsWebhookOrders(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	msg := orderMessage("m1", orderBody)
	msg.Author.Bot = true
	msg.WebhookID = "wh-1"
	b.Publish(msg)

	got := waitOutbound(t, out)
	if got.Attachment == nil || got.Attachment.Name != "ORD-1.docx" {
		t.Fatalf("webhook order not dispatched: %+v", got)
	}
}

func TestPipeline_DropsUnclassifiedChatter(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	// Two markers only: below the classification threshold.
	msg := orderMessage("m1", "🆔 Order ID: ORD-9\n📧 Email: x@y.com\njust chatting")
	publishThenSentinel(t, b, out, msg)
}

func TestPipeline_DropsOrderWithoutID(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{})

	// Classifies (3 markers) but fails the mandatory-field invariant.
	body := "🛒 New Order Received\n👤 First Name: Ana\n📧 Email: a@x.com\n📍 Location: City"
	publishThenSentinel(t, b, out, orderMessage("m1", body))
}

func TestPipeline_RehydratesPartialMessages(t *testing.T) {
	full := orderMessage("m1", orderBody)
	b, out := startPipeline(t, &stubFetcher{msg: &full})

	partial := domain.Message{ID: "m1", ChannelID: sourceChannel, Partial: true}
	b.Publish(partial)

	got := waitOutbound(t, out)
	if got.Attachment == nil || got.Attachment.Name != "ORD-1.docx" {
		t.Fatalf("rehydrated order not dispatched: %+v", got)
	}
}

func TestPipeline_DropsPartialOnFetchFailure(t *testing.T) {
	b, out := startPipeline(t, &stubFetcher{err: errors.New("gone")})

	partial := domain.Message{ID: "m1", ChannelID: sourceChannel, Partial: true}
	publishThenSentinel(t, b, out, partial)
}

func TestPipeline_MirrorsWhenConfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b := bus.New(10, logger)
	defer b.Close()
	discordOut := make(chan domain.OutboundMessage, 1)
	mirrorOut := make(chan domain.OutboundMessage, 1)
	b.OnOutbound("discord", func(msg domain.OutboundMessage) { discordOut <- msg })
	b.OnOutbound("telegram", func(msg domain.OutboundMessage) { mirrorOut <- msg })

	p := New(Config{
		SourceChannelID: sourceChannel,
		OutputChannelID: outputChannel,
		MirrorChannel:   "telegram",
		MirrorChatID:    "-100",
		Bus:             b,
		Fetcher:         &stubFetcher{},
		Renderer:        receipt.NewRenderer("https://shop.example.com", logger),
		Logger:          logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	b.Publish(orderMessage("m1", orderBody))

	first := waitOutbound(t, discordOut)
	mirrored := waitOutbound(t, mirrorOut)
	if first.Attachment == nil || mirrored.Attachment == nil {
		t.Fatal("both dispatches must carry the receipt")
	}
	if mirrored.ChatID != "-100" {
		t.Fatalf("mirror chat: got %q", mirrored.ChatID)
	}
}
