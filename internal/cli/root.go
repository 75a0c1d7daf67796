package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/Agileeo/nft-client/internal/control"
	"github.com/Agileeo/nft-client/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "nftclient",
	Short: "NFT marketplace client",
	Long: `nftclient connects a wallet to an EVM network, lists, unlists, buys and mints
NFTs through the marketplace contracts, and reports contract state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if code := exitCode(rootCmd.Execute()); code != 0 {
		os.Exit(code)
	}
}

// exitError carries a process exit code out of a command, so deferred
// cleanup in the command runs before the process exits. Its error has
// already been reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// failed marks err as reported; the process exits with 1.
func failed(err error) error {
	return &exitError{code: 1, err: err}
}

// inputError reports a local validation error before anything touches the
// network; the process exits with 2.
func inputError(err error) error {
	fmt.Fprintln(os.Stderr, err)
	return &exitError{code: 2, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads .env and the configuration, then installs the logger.
func setup() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	switch {
	case isDebug || cfg.Logging.Level == "debug":
		slogLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		slogLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		slogLevel = slog.LevelError
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg
}

// newClient builds the client from configuration. The caller stops it.
func newClient() (*control.Client, *config.AppConfig) {
	cfg := setup()
	app, err := control.NewClient(control.Config{App: cfg})
	if err != nil {
		slog.Error("Failed to initialize client", "error", err)
		os.Exit(1)
	}
	return app, cfg
}

func stopClient(app *control.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
