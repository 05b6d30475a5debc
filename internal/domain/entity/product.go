package entity

import "github.com/shopspring/decimal"

// Product producto del catálogo. Stock nunca baja de cero.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Stock      int64           `json:"stock"`
	SellPrice  decimal.Decimal `json:"sell_price"`
	Cost       decimal.Decimal `json:"cost"`
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
}

// ProductFromRecord decodifica una fila normalizada.
func ProductFromRecord(r Record) *Product {
	if r == nil {
		return nil
	}
	return &Product{
		ID:         r.ID(),
		Name:       r.String(ColName),
		Stock:      r.Int(ColStock),
		SellPrice:  r.Money(ColSellPrice),
		Cost:       r.Money(ColCost),
		CategoryID: r.String(ColCategoryID),
		Category:   r.String(ColCategory),
	}
}
