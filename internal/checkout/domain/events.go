package domain

import "github.com/shopspring/decimal"

const EventOrderPlaced = "OrderPlaced"

type OrderPlaced struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []PricedLine    `json:"items"`
}
