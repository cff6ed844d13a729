package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Monitor: MonitorConfig{
			Enabled:         false,
			IntervalMinutes: 5,
		},
		Telegram: TelegramConfig{
			Enabled: false,
		},
		Store: StoreConfig{
			DBPath: "~/.orderbot/store.db",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9301",
		},
	}
}

// Template returns the config written by `orderbot init`: defaults plus
// env-var placeholders for the required identifiers, so deployments can
// keep secrets out of the file (expanded at load time).
func Template() *Config {
	cfg := Defaults()
	cfg.Discord.Token = "${DISCORD_TOKEN}"
	cfg.Orders.SourceChannelID = "${ORDER_CHANNEL_ID}"
	cfg.Orders.OutputChannelID = "${OUTPUT_CHANNEL_ID}"
	cfg.Orders.QRPayloadURL = "${WEBSITE_URL}"
	return cfg
}
