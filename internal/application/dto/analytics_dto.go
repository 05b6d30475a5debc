package dto

import "github.com/shopspring/decimal"

// SalesSummary ventas de un rango de fechas.
type SalesSummary struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	BranchID     *int64          `json:"branch_id,omitempty"`
	Transactions int             `json:"transactions"`
	Units        int64           `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Margin       decimal.Decimal `json:"margin"`
	TopProducts  []TopProduct    `json:"top_products"`
}

// TopProduct producto más vendido por ingreso.
type TopProduct struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DashboardSummary resumen del día y del mes en curso.
type DashboardSummary struct {
	Today     *SalesSummary `json:"today"`
	Month     *SalesSummary `json:"month"`
	DateLabel string        `json:"date_label"`
}
