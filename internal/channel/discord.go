package channel

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"orderbot/internal/domain"
	"orderbot/internal/metrics"
	"orderbot/internal/monitor"
	"orderbot/internal/store"

	"github.com/bwmarrin/discordgo"
)

// Discord implements domain.Channel and domain.MessageFetcher for the
// Discord gateway. Inbound guild messages are published to the bus with
// their embeds intact; outbound messages may carry a file attachment.
type Discord struct {
	token      string
	guildID    string
	websiteURL string
	session    *discordgo.Session
	bus        domain.MessageBus
	snippets   *store.Store
	checker    *monitor.Checker
	metrics    *metrics.Registry
	logger     *slog.Logger
}

// DiscordConfig configures the Discord channel.
type DiscordConfig struct {
	Token      string
	GuildID    string
	WebsiteURL string           // backs the /status command; optional
	Snippets   *store.Store     // backs the /store command; optional
	Metrics    *metrics.Registry // optional
	Logger     *slog.Logger
}

// NewDiscord creates a new Discord channel handler.
func NewDiscord(cfg DiscordConfig) *Discord {
	d := &Discord{
		token:      cfg.Token,
		guildID:    cfg.GuildID,
		websiteURL: cfg.WebsiteURL,
		snippets:   cfg.Snippets,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
	if cfg.WebsiteURL != "" {
		d.checker = monitor.NewChecker(cfg.WebsiteURL)
	}
	return d
}

func (d *Discord) Name() string { return "discord" }

// Start connects to Discord using a bot token and begins listening.
func (d *Discord) Start(ctx context.Context, bus domain.MessageBus) error {
	d.bus = bus

	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	d.session = session

	// Register outbound handler.
	bus.OnOutbound("discord", func(msg domain.OutboundMessage) {
		if msg.Content == "" && msg.Attachment == nil {
			return
		}
		d.deliver(msg)
	})

	// Register message handler.
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		// Ignore bot's own messages.
		if m.Author.ID == s.State.User.ID {
			return
		}

		// If guildID is set, filter messages.
		if d.guildID != "" && m.GuildID != d.guildID {
			return
		}

		bus.Publish(fromDiscordMessage(m.Message))
	})

	session.AddHandler(d.handleInteraction)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}

	d.logger.Info("discord bot connected", "user", session.State.User.Username)

	d.registerSlashCommands()

	// Wait for context cancellation.
	<-ctx.Done()
	d.logger.Info("discord bot disconnecting")
	return session.Close()
}

func (d *Discord) Stop() error {
	// No-op: the session closes when Start's context is cancelled.
	return nil
}

func (d *Discord) Send(ctx context.Context, chatID string, content string) error {
	_, err := d.session.ChannelMessageSend(chatID, content)
	return err
}

// FetchMessage rehydrates a partial message through the REST API.
func (d *Discord) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m, err := d.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	msg := fromDiscordMessage(m)
	return &msg, nil
}

// deliver sends an outbound message, attaching a file when present.
// A failed send is final: logged, counted, never retried.
func (d *Discord) deliver(msg domain.OutboundMessage) {
	var err error
	if msg.Attachment != nil {
		_, err = d.session.ChannelFileSendWithMessage(
			msg.ChatID, msg.Content, msg.Attachment.Name, bytes.NewReader(msg.Attachment.Data))
	} else {
		_, err = d.session.ChannelMessageSend(msg.ChatID, msg.Content)
	}
	if err != nil {
		d.logger.Error("discord send failed", "channel", msg.ChatID, "err", err)
		if d.metrics != nil {
			d.metrics.DispatchFailures.Inc()
		}
	}
}

// fromDiscordMessage converts a discordgo message to the domain shape.
// Messages with no text body at all are flagged partial so the processor
// re-fetches them before classification.
func fromDiscordMessage(m *discordgo.Message) domain.Message {
	msg := domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		WebhookID: m.WebhookID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.Author = domain.Author{ID: m.Author.ID, Bot: m.Author.Bot}
	}
	for _, e := range m.Embeds {
		embed := domain.Embed{Description: e.Description}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, domain.EmbedField{Name: f.Name, Value: f.Value})
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	msg.Partial = m.Content == "" && len(m.Embeds) == 0 && len(m.Attachments) == 0
	return msg
}

func (d *Discord) registerSlashCommands() {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "status",
			Description: "Check website status and latency",
		},
		{
			Name:        "store",
			Description: "Store or retrieve text snippets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a new text snippet",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Identifier for the text",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "Text content to store",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "get",
					Description: "Get a stored text snippet",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Identifier for the text",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all stored text snippets",
				},
			},
		},
	}

	guildID := d.guildID // empty = global commands
	for _, cmd := range commands {
		_, err := d.session.ApplicationCommandCreate(d.session.State.User.ID, guildID, cmd)
		if err != nil {
			d.logger.Warn("failed to register slash command", "command", cmd.Name, "err", err)
		}
	}
}

func (d *Discord) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	switch data.Name {
	case "status":
		d.replyStatus(i)
	case "store":
		d.replyStore(i, data)
	}
}

func (d *Discord) replyStatus(i *discordgo.InteractionCreate) {
	if d.checker == nil {
		d.reply(i, "No website configured to monitor.", true)
		return
	}

	res, err := d.checker.Check(context.Background())
	if err != nil {
		d.logger.Warn("status command check failed", "err", err)
		d.reply(i, "⚠️ Website is currently down or unreachable ⚠️", false)
		return
	}
	d.reply(i, monitor.FormatReport(d.websiteURL, res), false)
}

func (d *Discord) replyStore(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	if d.snippets == nil || len(data.Options) == 0 {
		d.reply(i, "Snippet store is not available.", true)
		return
	}

	ctx := context.Background()
	sub := data.Options[0]
	opts := make(map[string]string, len(sub.Options))
	for _, o := range sub.Options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			opts[o.Name] = o.StringValue()
		}
	}

	switch sub.Name {
	case "add":
		if err := d.snippets.Set(ctx, opts["key"], opts["value"]); err != nil {
			d.logger.Error("snippet save failed", "key", opts["key"], "err", err)
			d.reply(i, "Could not store the snippet.", true)
			return
		}
		d.reply(i, fmt.Sprintf("Stored snippet **%s**.", opts["key"]), true)
	case "get":
		sn, err := d.snippets.Get(ctx, opts["key"])
		if err != nil {
			d.logger.Error("snippet lookup failed", "key", opts["key"], "err", err)
			d.reply(i, "Could not read the snippet store.", true)
			return
		}
		if sn == nil {
			d.reply(i, "No text found with that key.", true)
			return
		}
		d.reply(i, fmt.Sprintf("**%s**: %s", sn.Key, sn.Value), true)
	case "list":
		snippets, err := d.snippets.List(ctx)
		if err != nil {
			d.logger.Error("snippet list failed", "err", err)
			d.reply(i, "Could not read the snippet store.", true)
			return
		}
		if len(snippets) == 0 {
			d.reply(i, "No text snippets stored yet.", true)
			return
		}
		var sb bytes.Buffer
		for _, sn := range snippets {
			v := sn.Value
			if len(v) > 50 {
				v = v[:50] + "..."
			}
			fmt.Fprintf(&sb, "**%s**: %s\n", sn.Key, v)
		}
		d.reply(i, sb.String(), true)
	}
}

func (d *Discord) reply(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
	if ephemeral {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := d.session.InteractionRespond(i.Interaction, resp); err != nil {
		d.logger.Warn("interaction respond failed", "err", err)
	}
}
