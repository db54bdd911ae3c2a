package domain

import "github.com/shopspring/decimal"

// Product is owned by the catalog and read-only everywhere else.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}
