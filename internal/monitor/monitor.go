// Package monitor polls the storefront website and reports its health to
// the status channel.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"orderbot/internal/domain"
)

const checkTimeout = 10 * time.Second

// Result is the outcome of one health check.
type Result struct {
	Latency    time.Duration
	StatusCode int
}

// Rating maps a latency to the operator-facing tier label.
func (r Result) Rating() string {
	switch {
	case r.Latency < 500*time.Millisecond:
		return "Excellent ⚡"
	case r.Latency < time.Second:
		return "Good ✅"
	case r.Latency < 3*time.Second:
		return "Fair ⚠️"
	default:
		return "Poor 🐢"
	}
}

// Checker performs a single website health check.
type Checker struct {
	url    string
	client *http.Client
}

func NewChecker(url string) *Checker {
	return &Checker{
		url:    url,
		client: &http.Client{Timeout: checkTimeout},
	}
}

// Check GETs the website once and measures latency.
func (c *Checker) Check(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	return Result{
		Latency:    time.Since(start),
		StatusCode: resp.StatusCode,
	}, nil
}

// Config configures the periodic monitor.
type Config struct {
	WebsiteURL      string
	StatusChannelID string
	IntervalMinutes int
	Logger          *slog.Logger
}

// Monitor posts a periodic status report to the status channel.
type Monitor struct {
	checker  *Checker
	url      string
	chatID   string
	interval time.Duration
	bus      domain.MessageBus
	logger   *slog.Logger
}

func New(cfg Config, bus domain.MessageBus) *Monitor {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval < time.Minute {
		interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Monitor{
		checker:  NewChecker(cfg.WebsiteURL),
		url:      cfg.WebsiteURL,
		chatID:   cfg.StatusChannelID,
		interval: interval,
		bus:      bus,
		logger:   cfg.Logger,
	}
}

// Start begins the monitoring loop. Blocks until the context is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("website monitor started",
		"url", m.url,
		"interval", m.interval,
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("website monitor stopped")
			return
		case <-ticker.C:
			m.report(ctx)
		}
	}
}

func (m *Monitor) report(ctx context.Context) {
	res, err := m.checker.Check(ctx)

	var content string
	if err != nil {
		m.logger.Warn("website check failed", "url", m.url, "err", err)
		content = "⚠️ Website is currently down or unreachable ⚠️\n" + m.url
	} else {
		content = FormatReport(m.url, res)
	}

	m.bus.SendOutbound(domain.OutboundMessage{
		Channel: "discord",
		ChatID:  m.chatID,
		Content: content,
	})
}

// FormatReport renders a check result as the status message posted to the
// status channel and returned by the /status command.
func FormatReport(url string, res Result) string {
	return fmt.Sprintf("**Website Status**\nMonitoring: %s\nStatus: %s\nLatency: %dms\nHTTP Status: %d",
		url, res.Rating(), res.Latency.Milliseconds(), res.StatusCode)
}
