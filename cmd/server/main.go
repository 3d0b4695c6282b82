package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omochice/tcptalk/internal/chat"
	"github.com/omochice/tcptalk/internal/config"
	"github.com/omochice/tcptalk/internal/logging"
	"github.com/omochice/tcptalk/internal/transport"
	"github.com/omochice/tcptalk/internal/transport/tcp"
	"github.com/omochice/tcptalk/internal/transport/ws"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		listen     string
		wsListen   string
		logLevel   string
		logFormat  string
	)

	cmd := &cobra.Command{
		Use:   "tcptalk-server",
		Short: "Run the tcptalk chat server",
		Long: `tcptalk-server accepts raw TCP clients (and optionally WebSocket clients on a
second address), asks each one for a unique username and relays every line
it sends to everybody else.

Settings come from defaults, --config, a .env file, TCPTALK_* variables and
finally these flags.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cfg.ListenAddr = listen
			}
			if flags.Changed("ws-listen") {
				cfg.WSListenAddr = wsListen
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&listen, "listen", "", "TCP listen address (default 0.0.0.0:2133)")
	flags.StringVar(&wsListen, "ws-listen", "", "WebSocket listen address, empty to disable")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: console or json")
	return cmd
}

func run(ctx context.Context, cfg *config.Server, logger *zap.Logger) error {
	registry := chat.NewRegistry(logger)
	handler := chat.NewHandler(registry, logger)

	servers := []*transport.Server{
		tcp.NewServer(cfg.ListenAddr, cfg.ReadBufferSize, handler, logger),
	}
	if cfg.WSListenAddr != "" {
		servers = append(servers, ws.NewServer(cfg.WSListenAddr, cfg.ReadBufferSize, handler, logger))
	}

	for i, srv := range servers {
		if err := srv.Listen(); err != nil {
			for _, started := range servers[:i] {
				started.Stop()
			}
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(srv.Serve)
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down", zap.Int("sessions", registry.Len()))
		for _, srv := range servers {
			srv.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
