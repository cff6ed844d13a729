package domain

import "context"

// Channel is the interface for chat I/O (Discord, Telegram).
type Channel interface {
	Name() string
	Start(ctx context.Context, bus MessageBus) error
	Stop() error
	Send(ctx context.Context, chatID string, content string) error
}

// MessageFetcher re-fetches a message that arrived in partial form.
type MessageFetcher interface {
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)
}
