package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/Agileeo/nft-client/internal/core/domain"
	"github.com/Agileeo/nft-client/internal/metadata"
	"github.com/Agileeo/nft-client/internal/normalize"
)

var (
	tokenFlag    string
	priceFlag    string
	startFlag    string
	metadataFlag string
	nameFlag     string
	descFlag     string
	imageFlag    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a token for sale on the marketplace",
	RunE:  runList,
}

var unlistCmd = &cobra.Command{
	Use:   "unlist",
	Short: "Remove a token listing",
	RunE:  runUnlist,
}

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy a listed token at its listed price",
	RunE:  runBuy,
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a token with the given metadata",
	RunE:  runMint,
}

func init() {
	for _, c := range []*cobra.Command{listCmd, unlistCmd, buyCmd} {
		c.Flags().StringVar(&tokenFlag, "token", "", "token id")
		_ = c.MarkFlagRequired("token")
	}
	listCmd.Flags().StringVar(&priceFlag, "price", "", "price in native currency units (e.g. 0.5)")
	listCmd.Flags().StringVar(&startFlag, "start", "", "sale start time (RFC3339 or 2006-01-02T15:04); empty starts now")
	_ = listCmd.MarkFlagRequired("price")

	mintCmd.Flags().StringVar(&tokenFlag, "token", "", "token id; empty lets the contract assign one")
	mintCmd.Flags().StringVar(&metadataFlag, "metadata", "", "path to a metadata JSON document")
	mintCmd.Flags().StringVar(&nameFlag, "name", "", "token name")
	mintCmd.Flags().StringVar(&descFlag, "description", "", "token description")
	mintCmd.Flags().StringVar(&imageFlag, "image", "", "token image URI")

	rootCmd.AddCommand(listCmd, unlistCmd, buyCmd, mintCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	tokenID, err := normalize.TokenID(tokenFlag)
	if err != nil {
		return inputError(err)
	}
	start, err := normalize.Timestamp(startFlag)
	if err != nil {
		return inputError(err)
	}

	app, _ := newClient()
	defer stopClient(app)

	price, err := normalize.Amount(priceFlag, app.RequiredChain().NativeDecimals)
	if err != nil {
		return inputError(err)
	}

	return execute(app, domain.TransactionRequest{
		Kind:      domain.TxKindList,
		TokenID:   tokenID,
		Price:     price,
		StartTime: start,
	})
}

func runUnlist(cmd *cobra.Command, args []string) error {
	tokenID, err := normalize.TokenID(tokenFlag)
	if err != nil {
		return inputError(err)
	}
	app, _ := newClient()
	defer stopClient(app)

	return execute(app, domain.TransactionRequest{Kind: domain.TxKindUnlist, TokenID: tokenID})
}

func runBuy(cmd *cobra.Command, args []string) error {
	tokenID, err := normalize.TokenID(tokenFlag)
	if err != nil {
		return inputError(err)
	}
	app, _ := newClient()
	defer stopClient(app)

	return execute(app, domain.TransactionRequest{Kind: domain.TxKindBuy, TokenID: tokenID})
}

func runMint(cmd *cobra.Command, args []string) error {
	var tokenID *big.Int
	if tokenFlag != "" {
		id, err := normalize.TokenID(tokenFlag)
		if err != nil {
			return inputError(err)
		}
		tokenID = id
	}

	md := &domain.MintMetadata{Name: nameFlag, Description: descFlag, Image: imageFlag}
	if metadataFlag != "" {
		data, err := os.ReadFile(metadataFlag)
		if err != nil {
			return inputError(fmt.Errorf("read metadata: %w", err))
		}
		if md, err = metadata.Parse(data); err != nil {
			return inputError(err)
		}
	}

	app, _ := newClient()
	defer stopClient(app)

	ctx, cancel := signalContext()
	defer cancel()

	out, uri, err := app.Mint(ctx, md, tokenID)
	if uri != "" {
		slog.Info("Metadata uploaded", "token_uri", uri)
	}
	return report(os.Stdout, out, err)
}

type executor interface {
	Execute(ctx context.Context, req domain.TransactionRequest) (domain.TransactionOutcome, error)
}

func execute(app executor, req domain.TransactionRequest) error {
	ctx, cancel := signalContext()
	defer cancel()

	out, err := app.Execute(ctx, req)
	return report(os.Stdout, out, err)
}

// report prints the outcome as JSON. A failed transaction yields a reported
// exitError so the caller's cleanup still runs.
func report(w io.Writer, out domain.TransactionOutcome, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)

	if err != nil {
		slog.Error("Transaction did not complete", "error_kind", domain.KindOf(err), "error", err)
		return failed(err)
	}
	return nil
}
