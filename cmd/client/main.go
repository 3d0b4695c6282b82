package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omochice/tcptalk/internal/client"
	"github.com/omochice/tcptalk/internal/client/tui"
	"github.com/omochice/tcptalk/internal/config"
	"github.com/omochice/tcptalk/internal/logging"
	"github.com/omochice/tcptalk/pkg/protocol"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		port       int
		transport  string
		logFile    string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "tcptalk [username] [host]",
		Short: "Chat on a tcptalk server from the terminal",
		Long: `tcptalk connects to a tcptalk server, joins under <username> and opens a
full-screen chat. Enter sends the typed line, the mouse wheel scrolls the
history, Esc or Ctrl+C quits. The username may instead come from the config
file or TCPTALK_USERNAME.`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(configPath)
			if err != nil {
				return err
			}
			if err := applyArgs(cfg, args); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("transport") {
				cfg.Transport = transport
			}
			if flags.Changed("log-file") {
				cfg.LogFile = logFile
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// The terminal belongs to the UI, so logs only go to a file.
			logger := zap.NewNop()
			if cfg.LogFile != "" {
				logger, err = logging.New(logging.Options{Level: cfg.LogLevel, Format: "json", Output: cfg.LogFile})
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.IntVarP(&port, "port", "p", protocol.DefaultPort, "server port")
	flags.StringVarP(&transport, "transport", "t", client.TransportTCP, "connection type: tcp or ws")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

// applyArgs lets positional arguments override the configured username
// and host. The username is trimmed here so the session echoes under the
// same name the server registers.
func applyArgs(cfg *config.Client, args []string) error {
	if len(args) > 0 {
		cfg.Username = args[0]
	}
	if len(args) > 1 {
		cfg.Host = args[1]
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	if cfg.Username == "" {
		return errors.New("username is required: pass it as the first argument or set TCPTALK_USERNAME")
	}
	return nil
}

func run(ctx context.Context, cfg *config.Client, logger *zap.Logger) error {
	conn, err := client.Dial(ctx, cfg.Transport, cfg.Host, cfg.Port)
	if err != nil {
		return err
	}
	defer conn.Close()

	received, err := client.Join(conn, cfg.Username)
	if err != nil {
		return fmt.Errorf("failed to join chat: %w", err)
	}
	logger.Info("Joined chat", zap.String("server", conn.RemoteAddr().String()), zap.String("username", cfg.Username))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := client.NewMultiplexer()
	ui := tui.NewProgram(ctx)
	session := client.NewChatSession(client.SessionConfig{
		Username: cfg.Username,
		Server:   conn.RemoteAddr().String(),
		Conn:     conn,
		Editor:   tui.NewEditor(),
		Renderer: ui,
		Logger:   logger,
	})
	for _, chunk := range received {
		session.Receive(chunk)
	}

	mux.Go(ctx, ui.Producer())
	mux.Go(ctx, client.Ticker(cfg.BlinkInterval))
	mux.Go(ctx, client.NetworkReader(conn, protocol.ReadBufferSize))

	runErr := session.Run(ctx, mux)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	ui.Quit()
	cancel()
	conn.Close()
	mux.Close()

	return errors.Join(runErr, mux.Wait())
}
