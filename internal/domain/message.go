package domain

import (
	"strings"
	"time"
)

// Author identifies who posted a message.
type Author struct {
	ID  string
	Bot bool
}

// EmbedField is a single name/value pair inside a rich embed.
type EmbedField struct {
	Name  string
	Value string
}

// Embed is the rich-embed body some order notifications arrive as.
type Embed struct {
	Description string
	Fields      []EmbedField
}

// Message is an inbound chat message as seen by the pipeline.
// Partial marks messages delivered without a body; they must be
// re-fetched through a MessageFetcher before processing.
type Message struct {
	ID        string
	ChannelID string
	Author    Author
	WebhookID string // non-empty when posted through a webhook
	Content   string
	Embeds    []Embed
	Partial   bool
	Timestamp time.Time
}

// Text normalizes the message body to a single blob: the first embed's
// description, else its fields joined as "name: value" lines, else the
// plain content. Returns "" when the message carries no text at all.
func (m Message) Text() string {
	if len(m.Embeds) > 0 {
		e := m.Embeds[0]
		if e.Description != "" {
			return e.Description
		}
		if len(e.Fields) > 0 {
			lines := make([]string, 0, len(e.Fields))
			for _, f := range e.Fields {
				lines = append(lines, f.Name+": "+f.Value)
			}
			return strings.Join(lines, "\n")
		}
	}
	return m.Content
}

// OutboundMessage is content dispatched to a channel, optionally with a
// file attached.
type OutboundMessage struct {
	Channel    string
	ChatID     string
	Content    string
	Attachment *Attachment
}

// Attachment is a file to deliver alongside an outbound message.
type Attachment struct {
	Name string
	Data []byte
}
