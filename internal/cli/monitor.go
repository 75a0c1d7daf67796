package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Agileeo/nft-client/internal/control"
)

var watchFlag bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show NFT contract name, symbol, supply and owner",
	RunE:  runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&watchFlag, "watch", false, "refresh until interrupted")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	app, cfg := newClient()
	defer stopClient(app)

	ctx, cancel := signalContext()
	defer cancel()

	if !watchFlag {
		if err := printSnapshot(ctx, app); err != nil {
			return failed(err)
		}
		return nil
	}

	ticker := time.NewTicker(cfg.Monitoring.Interval)
	defer ticker.Stop()
	for {
		_ = printSnapshot(ctx, app)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printSnapshot(ctx context.Context, app *control.Client) error {
	info, err := app.Monitor.Fetch(ctx)
	if err != nil {
		slog.Error("Failed to fetch contract info", "error", err)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ADDRESS\tNAME\tSYMBOL\tTOTAL SUPPLY\tOWNER")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", info.Address, info.Name, info.Symbol, info.TotalSupply, info.Owner)
	return w.Flush()
}
