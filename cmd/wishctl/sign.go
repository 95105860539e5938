package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign [body.json]",
		Short: "Print the webhook signature header for a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("RAZORPAY_WEBHOOK_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or RAZORPAY_WEBHOOK_SECRET is required")
			}
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", payment.SignatureHeader, payment.Sign(secret, body))
			return nil
		},
	}

	cmd.Flags().StringVarP(&secret, "secret", "s", "", "Webhook secret")
	return cmd
}
