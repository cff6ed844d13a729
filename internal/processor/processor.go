// Package processor coordinates the order pipeline: watch the source
// channel, classify, extract, render, dispatch.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderbot/internal/domain"
	"orderbot/internal/metrics"
	"orderbot/internal/order"
	"orderbot/internal/receipt"
)

const defaultConcurrency = 3

// Config holds all dependencies and identifiers for the processor.
type Config struct {
	SourceChannelID string
	OutputChannelID string
	MirrorChannel   string // optional: second outbound channel name ("telegram")
	MirrorChatID    string
	Bus             domain.MessageBus
	Fetcher         domain.MessageFetcher
	Classifier      *order.Classifier
	Renderer        *receipt.Renderer
	Metrics         *metrics.Registry
	Logger          *slog.Logger
	Concurrency     int // max parallel messages (default 3)
}

// Processor consumes inbound messages and turns order notifications into
// dispatched receipt documents. Messages are independent: a failure in
// any stage drops that one message and never stops the subscription.
type Processor struct {
	source     string
	output     string
	mirrorCh   string
	mirrorChat string
	bus        domain.MessageBus
	fetcher    domain.MessageFetcher
	classifier *order.Classifier
	renderer   *receipt.Renderer
	metrics    *metrics.Registry
	logger     *slog.Logger
	conc       int
}

func New(cfg Config) *Processor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Classifier == nil {
		cfg.Classifier = order.NewClassifier()
	}
	return &Processor{
		source:     cfg.SourceChannelID,
		output:     cfg.OutputChannelID,
		mirrorCh:   cfg.MirrorChannel,
		mirrorChat: cfg.MirrorChatID,
		bus:        cfg.Bus,
		fetcher:    cfg.Fetcher,
		classifier: cfg.Classifier,
		renderer:   cfg.Renderer,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		conc:       cfg.Concurrency,
	}
}

// Run consumes inbound messages until the context is cancelled or the
// bus closes. Bounded concurrency; dispatch order across messages is not
// guaranteed, and orders are independent so none is required.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("order processor started",
		"source_channel", p.source,
		"output_channel", p.output,
		"concurrency", p.conc,
	)

	sem := make(chan struct{}, p.conc)
	inbound := p.bus.Subscribe()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("order processor stopping")
			return
		case msg, ok := <-inbound:
			if !ok {
				p.logger.Info("inbound channel closed, order processor stopping")
				return
			}
			sem <- struct{}{}
			go func(m domain.Message) {
				defer func() { <-sem }()
				p.handle(ctx, m)
			}(msg)
		}
	}
}

// handle runs one message through the pipeline. The deferred recover is
// the last line of defense: no single malformed message may take down
// the subscription.
func (p *Processor) handle(ctx context.Context, msg domain.Message) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing message", "message_id", msg.ID, "panic", r)
		}
	}()

	if msg.ChannelID != p.source {
		return
	}
	// Bots are ignored unless the post came through a webhook: the
	// storefront delivers order notifications via webhook, which Discord
	// flags as a bot author.
	if msg.Author.Bot && msg.WebhookID == "" {
		return
	}
	if p.metrics != nil {
		p.metrics.MessagesSeen.Inc()
	}

	if msg.Partial {
		full, err := p.fetcher.FetchMessage(ctx, msg.ChannelID, msg.ID)
		if err != nil {
			p.logger.Warn("could not fetch partial message", "message_id", msg.ID, "err", err)
			if p.metrics != nil {
				p.metrics.FetchFailures.Inc()
			}
			return
		}
		msg = *full
	}

	content := msg.Text()
	if !p.classifier.IsOrder(content) {
		return
	}
	if p.metrics != nil {
		p.metrics.OrdersMatched.Inc()
	}

	rec := order.Extract(content)
	if rec == nil {
		p.logger.Warn("order message failed extraction", "message_id", msg.ID)
		if p.metrics != nil {
			p.metrics.ExtractFailures.Inc()
		}
		return
	}

	start := time.Now()
	doc, err := p.renderer.Render(rec)
	if p.metrics != nil {
		p.metrics.RenderLatencySec.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		p.logger.Error("receipt render failed", "order_id", rec.OrderID, "err", err)
		if p.metrics != nil {
			p.metrics.RenderFailures.Inc()
		}
		return
	}

	p.dispatch(rec, doc)
}

// dispatch sends the receipt to the output channel and, when configured,
// mirrors it. Send failures are logged and final: no retry, no re-queue.
func (p *Processor) dispatch(rec *domain.Order, doc []byte) {
	caption := fmt.Sprintf("📦 Order sticker for %s's Order (%s)", rec.FirstName, rec.OrderID)
	attachment := &domain.Attachment{
		Name: rec.OrderID + ".docx",
		Data: doc,
	}

	p.bus.SendOutbound(domain.OutboundMessage{
		Channel:    "discord",
		ChatID:     p.output,
		Content:    caption,
		Attachment: attachment,
	})

	if p.mirrorCh != "" && p.mirrorChat != "" {
		p.bus.SendOutbound(domain.OutboundMessage{
			Channel:    p.mirrorCh,
			ChatID:     p.mirrorChat,
			Content:    caption,
			Attachment: attachment,
		})
	}

	if p.metrics != nil {
		p.metrics.ReceiptsDispatched.Inc()
	}
	p.logger.Info("receipt dispatched", "order_id", rec.OrderID, "first_name", rec.FirstName)
}
