package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the networks a wallet can be switched to",
	Run:   runNetworks,
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func runNetworks(cmd *cobra.Command, args []string) {
	app, cfg := newClient()
	defer stopClient(app)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CHAIN\tNAME\tSYMBOL\tRPC\tREQUIRED")
	for _, n := range app.Networks() {
		required := ""
		if n.ChainID == cfg.Network.ChainID {
			required = "*"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			n.ChainID, n.DisplayName, n.Symbol, strings.Join(n.RPCEndpoints, ","), required)
	}
	_ = w.Flush()
}
