package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/uciwire/uciwire/pkg/bridge"
	"github.com/uciwire/uciwire/pkg/config"
)

var serveFlags struct {
	configPath string
	listen     string
	logLevel   string
	envFile    string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge service",
	Long: `Start the bridge: launch the configured engines, listen for WebSocket
clients, and expose the HTTP control surface.

Without --config the service starts with no engines; use the control surface
to configure a roster at runtime.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.configPath, "config", "c", "", "configuration file (YAML or JSON)")
	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveFlags.envFile, "env-file", ".env", "env file to load before reading configuration")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Missing .env is fine unless the user pointed at one explicitly.
	if err := godotenv.Load(serveFlags.envFile); err != nil && cmd.Flags().Changed("env-file") {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	log, err := newLogger(serveFlags.logLevel)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if serveFlags.configPath != "" {
		cfg, err = config.LoadFromFile(serveFlags.configPath)
		if err != nil {
			return err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}
	if serveFlags.listen != "" {
		cfg.Listen = serveFlags.listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	srv := bridge.NewServer(cfg, bridge.WithLogger(log))
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info("serving", "addr", srv.Addr(), "version", bridge.Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// newLogger builds a text slog logger at the given level.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, errors.New("unknown log level: " + level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
