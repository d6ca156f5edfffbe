package models

import "github.com/shopspring/decimal"

// Product is a consumable sold at the counter. Tables keep their own copy of
// every product added, so catalog edits never rewrite an open bill.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
