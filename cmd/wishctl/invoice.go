package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/invoice"
	"github.com/spf13/cobra"
)

func invoiceCmd() *cobra.Command {
	var (
		output string
		brand  string
		logo   string
	)

	cmd := &cobra.Command{
		Use:   "invoice [order.json]",
		Short: "Render an order file to an invoice PDF",
		Long: `Render an order to PDF exactly as /send-invoice would attach it.
The input is an order as stored by the API (see GET /orders/:id).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var order domain.Order
			if err := json.Unmarshal(raw, &order); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			pdf, err := invoice.NewRenderer(brand, logo).Render(order)
			if err != nil {
				return err
			}
			if output == "" {
				output = "invoice-" + order.ID + ".pdf"
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(pdf))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default invoice-<id>.pdf)")
	cmd.Flags().StringVar(&brand, "brand", "Wishlist2Cart", "Brand printed in the header")
	cmd.Flags().StringVar(&logo, "logo", "", "Optional PNG/JPEG logo")
	return cmd
}
