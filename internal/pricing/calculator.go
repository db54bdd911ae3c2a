// Package pricing derives line subtotals and totals from catalog prices at
// the moment of use. Nothing here is cached or persisted.
package pricing

import (
	"github.com/shopspring/decimal"

	cartdomain "github.com/bagelworks/storefront/internal/cart/domain"
	catalogdomain "github.com/bagelworks/storefront/internal/catalog/domain"
)

type Line struct {
	Product  catalogdomain.Product `json:"product"`
	Quantity int                   `json:"quantity"`
	Subtotal decimal.Decimal       `json:"subtotal"`
}

// Price joins cart entries against a catalog snapshot. Entries whose
// product no longer exists are skipped and excluded from the total; a cart
// may hold references that outlive the product.
func Price(entries []cartdomain.Entry, products map[int64]catalogdomain.Product) ([]Line, decimal.Decimal) {
	lines := make([]Line, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok {
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		lines = append(lines, Line{Product: p, Quantity: e.Quantity, Subtotal: subtotal})
		total = total.Add(subtotal)
	}
	return lines, total
}
