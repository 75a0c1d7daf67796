package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Connect the wallet and show the current session",
	RunE:  runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	app, cfg := newClient()
	defer stopClient(app)

	ctx := context.Background()
	if err := app.Session.Connect(ctx); err != nil {
		slog.Error("Failed to connect wallet", "error", err)
		return failed(err)
	}

	s := app.Session.Session()
	required := app.RequiredChain()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATUS\tACCOUNT\tCHAIN\tREQUIRED")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d (%s)\n", s.Status, s.Account, s.ChainID, cfg.Network.ChainID, required.DisplayName)
	_ = w.Flush()

	if s.ChainID != cfg.Network.ChainID {
		slog.Warn("Wallet is on a different chain; it will be switched before the next transaction",
			"chain_id", s.ChainID, "required", cfg.Network.ChainID)
	}
	return nil
}
