// Command wishctl exercises the scraper, invoice renderer and webhook signer
// from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wishctl",
		Short:         "wishctl - wishlist2cart operator tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(scrapeCmd())
	root.AddCommand(invoiceCmd())
	root.AddCommand(signCmd())
	return root
}
