package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Agileeo/nft-client/internal/contract"
	"github.com/Agileeo/nft-client/internal/normalize"
)

var saleCmd = &cobra.Command{
	Use:   "sale <tokenId>",
	Short: "Show the marketplace listing for a token",
	Args:  cobra.ExactArgs(1),
	RunE:  runSale,
}

func init() {
	rootCmd.AddCommand(saleCmd)
}

func runSale(cmd *cobra.Command, args []string) error {
	tokenID, err := normalize.TokenID(args[0])
	if err != nil {
		return inputError(err)
	}

	app, _ := newClient()
	defer stopClient(app)

	sale, err := app.Sale(context.Background(), tokenID)
	if err != nil {
		slog.Error("Failed to read sale", "token_id", tokenID, "error", err)
		return failed(err)
	}

	if contract.ZeroSeller(sale) {
		fmt.Printf("Token %s is not listed\n", tokenID)
		return nil
	}

	decimals := app.RequiredChain().NativeDecimals
	price := decimal.NewFromBigInt(sale.Price, -int32(decimals))
	start := "immediately"
	if sale.StartTime.Sign() > 0 {
		start = time.Unix(sale.StartTime.Int64(), 0).UTC().Format(time.RFC3339)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TOKEN\tSELLER\tPRICE\tSTART\tACTIVE")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%t\n",
		tokenID, sale.Seller, price.String(), app.RequiredChain().Symbol, start, sale.Active)
	return w.Flush()
}
