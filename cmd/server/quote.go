package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrilink/marketplace/internal/platform/config"
	"github.com/agrilink/marketplace/modules/orders"
)

func newQuoteCommand(configPath *string) *cobra.Command {
	var fulfillment string

	cmd := &cobra.Command{
		Use:   "quote PRODUCT_ID=QTY...",
		Short: "Price a cart from the command line",
		Long: "Quote prices the given products against the configured catalog and\n" +
			"checkout policies, and prints the quote as JSON.",
		Example: "  agrilink quote --fulfillment delivery 0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0=3",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parseCartArgs(args)
			if err != nil {
				return err
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			cfg.Log.Level = "warn"
			logger, flush, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			quote, err := a.orders.Quote(cmd.Context(), items, fulfillment)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(quote)
		},
	}
	cmd.Flags().StringVarP(&fulfillment, "fulfillment", "f", "pickup", "pickup or delivery")
	return cmd
}

// parseCartArgs reads PRODUCT_ID=QTY pairs. A bare id means one unit.
func parseCartArgs(args []string) ([]orders.CartItem, error) {
	items := make([]orders.CartItem, 0, len(args))
	for _, arg := range args {
		id, qty, found := strings.Cut(arg, "=")
		quantity := 1
		if found {
			n, err := strconv.Atoi(qty)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity in %q", arg)
			}
			quantity = n
		}
		items = append(items, orders.CartItem{ProductID: strings.TrimSpace(id), Quantity: quantity})
	}
	return items, nil
}
