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

	"github.com/spf13/cobra"

	"github.com/dabini-lab/line-bot/internal/bus"
	"github.com/dabini-lab/line-bot/internal/config"
	"github.com/dabini-lab/line-bot/internal/engine"
	"github.com/dabini-lab/line-bot/internal/identity"
	"github.com/dabini-lab/line-bot/internal/line"
	"github.com/dabini-lab/line-bot/internal/mention"
	"github.com/dabini-lab/line-bot/internal/metrics"
	"github.com/dabini-lab/line-bot/internal/relay"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "linebot",
		Short: "dabini LINE relay",
		Long:  "Relays LINE webhook messages addressed to the bot to the dabini engine and sends its replies back.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ~/.linebot/config.json, falls back to environment)")

	root.AddCommand(serveCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration in order: --config flag, the default
// config file if present, then plain environment variables (the Cloud
// Run deployment style).
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		return config.Load(defaultPath)
	}
	return config.FromEnv()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engineTimeout := time.Duration(cfg.Engine.TimeoutSeconds) * time.Second

	// One credentialed client per process lifetime; failing here must
	// prevent the server from accepting traffic.
	engineClient, err := engine.NewIdentityClient(ctx, cfg.Engine.URL, engineTimeout)
	if err != nil {
		return err
	}
	bridge := engine.NewBridge(engine.BridgeConfig{
		BaseURL: cfg.Engine.URL,
		Shape:   engine.ResponseShape(cfg.Engine.ResponseShape),
		Client:  engineClient,
		Logger:  logger,
	})

	lineClient, err := line.NewClient(line.ClientConfig{
		ChannelSecret: cfg.Channel.Secret,
		ChannelToken:  cfg.Channel.AccessToken,
		HTTPClient:    engine.SharedHTTPClient(10 * time.Second),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("line client: %w", err)
	}

	relayBus := bus.New(logger)
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metrics.Register()
		metrics.Observe(relayBus)
		metricsHandler = metrics.Handler()
	}

	dispatcher := relay.NewDispatcher(relay.DispatcherConfig{
		Resolver:   mention.NewResolver(cfg.Channel.ID, cfg.Relay.WakeWord, logger),
		Identity:   identity.NewLookup(lineClient, logger),
		Engine:     bridge,
		Sender:     lineClient,
		Scope:      relay.Scope(cfg.Relay.ConversationScope),
		ChannelID:  cfg.Channel.ID,
		MaxReplies: cfg.Relay.MaxReplyMessages,
		Bus:        relayBus,
		Logger:     logger,
	})

	server := relay.NewServer(relay.ServerConfig{
		Port:       cfg.Server.Port,
		Path:       cfg.Server.Path,
		Parser:     lineClient,
		Dispatcher: dispatcher,
		Metrics:    metricsHandler,
		Logger:     logger,
	})

	logger.Info("relay starting",
		"version", version,
		"port", cfg.Server.Port,
		"engine", cfg.Engine.URL,
		"response_shape", cfg.Engine.ResponseShape,
		"conversation_scope", cfg.Relay.ConversationScope,
	)
	return server.Start(ctx)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and engine credential acquisition",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				logger.Error("config", "valid", false, "err", err)
				return err
			}
			logger.Info("config", "valid", true,
				"engine", cfg.Engine.URL,
				"response_shape", cfg.Engine.ResponseShape,
				"wake_word_set", cfg.Relay.WakeWord != "",
			)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := engine.NewIdentityClient(ctx, cfg.Engine.URL, 0); err != nil {
				logger.Error("engine credential", "ok", false, "err", err)
				return err
			}
			logger.Info("engine credential", "ok", true)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
