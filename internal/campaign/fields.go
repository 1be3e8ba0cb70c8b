// Package campaign evaluates declarative reward rules against a receipt
// context and produces point-award suggestions for human approval. The
// evaluator never writes points; its only output is a suggestion payload.
package campaign

import (
	"strings"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// resolveField resolves a dot-path into the receipt context.
//
// Supported paths:
//
//	receipt.store_name
//	receipt.purchase_date
//	receipt.total
//	receipt.currency
//	receipt.items.<prop>  -> list of that property across all items
//
// Unknown paths resolve to nil, which evaluates as a non-match.
func resolveField(ctx model.ReceiptContext, field string) any {
	parts := strings.Split(field, ".")
	if len(parts) < 2 || parts[0] != "receipt" {
		return nil
	}

	if parts[1] == "items" {
		if len(parts) < 3 {
			return nil
		}
		return itemProperty(ctx.Items, parts[2])
	}

	switch parts[1] {
	case "store_name":
		return ctx.StoreName
	case "purchase_date":
		return ctx.PurchaseDate
	case "total":
		return ctx.Total
	case "currency":
		return ctx.Currency
	default:
		return nil
	}
}

func itemProperty(items []model.ReceiptItem, prop string) []any {
	values := make([]any, 0, len(items))
	for _, item := range items {
		switch prop {
		case "name":
			values = append(values, item.Name)
		case "price":
			values = append(values, item.Price)
		case "quantity":
			values = append(values, item.Quantity)
		default:
			values = append(values, "")
		}
	}
	return values
}
