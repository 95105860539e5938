package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/infra"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/scraper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func scrapeCmd() *cobra.Command {
	var (
		timeout time.Duration
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Extract title, price and image from a product page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := scraper.NewExtractor(infra.NewPageClient(timeout), scraper.DefaultRegistry(), zap.NewNop())
			meta, err := ext.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			}
			fmt.Fprintf(out, "Title:    %s\n", meta.Title)
			fmt.Fprintf(out, "Price:    %s\n", meta.Price.StringFixed(2))
			fmt.Fprintf(out, "Image:    %s\n", meta.Image)
			fmt.Fprintf(out, "Platform: %s\n", meta.Platform)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 12*time.Second, "Fetch timeout")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}
