package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderbot/internal/bus"
	"orderbot/internal/channel"
	"orderbot/internal/config"
	"orderbot/internal/metrics"
	"orderbot/internal/monitor"
	"orderbot/internal/order"
	"orderbot/internal/processor"
	"orderbot/internal/receipt"
	"orderbot/internal/store"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "orderbot",
		Short: "orderbot: Discord store bot that turns order notifications into receipt documents",
		Long:  "orderbot watches a Discord channel for store order notifications, extracts the order, and posts a DOCX receipt with a QR code to the output channel.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.orderbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(gatewayCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := resolveConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			if err := config.Save(cfgPath, config.Template()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			logger.Info("set DISCORD_TOKEN, ORDER_CHANNEL_ID, OUTPUT_CHANNEL_ID and WEBSITE_URL before starting the gateway")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the orderbot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show config summary and website status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				logger.Info("config", "path", cfgPath, "loaded", false, "err", err)
				return nil
			}
			logger.Info("config", "path", cfgPath, "loaded", true)
			logger.Info("orders",
				"source_channel", cfg.Orders.SourceChannelID,
				"output_channel", cfg.Orders.OutputChannelID,
				"qr_payload", cfg.Orders.QRPayloadURL,
			)

			if cfg.Monitor.WebsiteURL == "" {
				logger.Info("website", "configured", false)
				return nil
			}
			checker := monitor.NewChecker(cfg.Monitor.WebsiteURL)
			res, err := checker.Check(cmd.Context())
			if err != nil {
				logger.Warn("website", "url", cfg.Monitor.WebsiteURL, "reachable", false, "err", err)
				return nil
			}
			logger.Info("website",
				"url", cfg.Monitor.WebsiteURL,
				"rating", res.Rating(),
				"latency_ms", res.Latency.Milliseconds(),
				"http_status", res.StatusCode,
			)
			return nil
		},
	}
}

func gatewayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Start the bot (Discord gateway + order pipeline)",
		Long:  "Connects to Discord, starts the order pipeline and optional website monitor, Telegram mirror and metrics endpoint. Press Ctrl+C to stop.",
		RunE:  runGateway,
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Message bus (closed during graceful shutdown below)
	messageBus := bus.New(100, logger)

	snippets, err := store.New(cfg.Store.DBPath, logger)
	if err != nil {
		return fmt.Errorf("snippet store: %w", err)
	}
	defer snippets.Close()

	var reg *metrics.Registry
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "err", err)
			}
		}()
	}

	classifier := order.NewClassifier()
	if cfg.Orders.MarkersFile != "" {
		classifier = order.NewClassifierFromFile(cfg.Orders.MarkersFile, logger)
	}

	discordCh := channel.NewDiscord(channel.DiscordConfig{
		Token:      cfg.Discord.Token,
		GuildID:    cfg.Discord.GuildID,
		WebsiteURL: cfg.Monitor.WebsiteURL,
		Snippets:   snippets,
		Metrics:    reg,
		Logger:     logger,
	})

	procCfg := processor.Config{
		SourceChannelID: cfg.Orders.SourceChannelID,
		OutputChannelID: cfg.Orders.OutputChannelID,
		Bus:             messageBus,
		Fetcher:         discordCh,
		Classifier:      classifier,
		Renderer:        receipt.NewRenderer(cfg.Orders.QRPayloadURL, logger),
		Metrics:         reg,
		Logger:          logger,
	}

	var telegramCh *channel.Telegram
	if cfg.Telegram.Enabled {
		telegramCh = channel.NewTelegram(channel.TelegramConfig{
			Token:  cfg.Telegram.Token,
			ChatID: cfg.Telegram.ChatID,
			Logger: logger,
		})
		go func() {
			if err := telegramCh.Start(ctx, messageBus); err != nil {
				logger.Error("telegram mirror error", "err", err)
			}
		}()
		procCfg.MirrorChannel = "telegram"
		procCfg.MirrorChatID = cfg.Telegram.ChatID
		logger.Info("telegram mirror enabled")
	}

	go processor.New(procCfg).Run(ctx)

	if cfg.Monitor.Enabled {
		mon := monitor.New(monitor.Config{
			WebsiteURL:      cfg.Monitor.WebsiteURL,
			StatusChannelID: cfg.Monitor.StatusChannelID,
			IntervalMinutes: cfg.Monitor.IntervalMinutes,
			Logger:          logger,
		}, messageBus)
		go mon.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- discordCh.Start(ctx, messageBus)
	}()

	logger.Info("gateway started. Press Ctrl+C to stop.")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("discord channel: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down gateway...")

	const shutdownTimeout = 10 * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "err", err)
		}
	}
	messageBus.Close()

	logger.Info("shutdown complete")
	return nil
}
