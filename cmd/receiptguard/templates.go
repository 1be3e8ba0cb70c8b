package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wunderfauks/receiptguard/internal/merchant"
)

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in merchant templates",
		Run: func(_ *cobra.Command, _ []string) {
			for _, t := range merchant.Catalog() {
				country := t.Country
				if country == "" {
					country = "any"
				}
				fmt.Printf("%-20s %s\n", t.ID, t.DisplayName)
				fmt.Printf("  country: %-4s currency: %-4s tax rate: %.0f%%\n",
					country, t.Currency, t.TaxRate*100)
				fmt.Printf("  keywords: %v\n", t.Keywords)
				fmt.Printf("  required patterns: %d, receipt-id patterns: %d\n\n",
					len(t.RequiredPatterns), len(t.ReceiptIDPatterns))
			}
		},
	}
}
