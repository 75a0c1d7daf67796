package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health and metrics while watching the wallet session",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, _ := newClient()
	defer stopClient(app)

	app.Session.OnChange(func(s domain.WalletSession) {
		slog.Info("Session changed", "status", s.Status, "account", s.Account, "chain_id", s.ChainID)
	})

	ctx, cancel := signalContext()
	defer cancel()

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start client", "error", err)
		return failed(err)
	}

	if err := app.Session.Connect(ctx); err != nil {
		slog.Warn("Wallet not connected", "error", err)
	}

	slog.Info("Client serving", "config", cfgPath)
	<-ctx.Done()
	return nil
}
