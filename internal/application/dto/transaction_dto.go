package dto

import "github.com/jhoicas/supermercado-api/internal/domain/entity"

// CreateTransactionRequest venta completa: cabecera más líneas (details).
// Los campos de la cabecera se validan contra el esquema de la entidad, no aquí.
type CreateTransactionRequest struct {
	BranchID          *int64          `json:"branch_id"`
	CustomerID        *int64          `json:"customer_id"`
	DateOfTransaction string          `json:"date_of_transaction"`
	TimeOfTransaction string          `json:"time_of_transaction"`
	TotalAmount       any             `json:"total_amount"`
	Details           []entity.Fields `json:"details"`
}

// Header mapa de campos de la cabecera; omite los ausentes para que el validador los reporte.
func (r *CreateTransactionRequest) Header() entity.Fields {
	h := entity.Fields{}
	if r.BranchID != nil {
		h[entity.ColBranchID] = *r.BranchID
	}
	if r.CustomerID != nil {
		h[entity.ColCustomerID] = *r.CustomerID
	}
	if r.DateOfTransaction != "" {
		h[entity.ColDateOfTransaction] = r.DateOfTransaction
	}
	if r.TimeOfTransaction != "" {
		h[entity.ColTimeOfTransaction] = r.TimeOfTransaction
	}
	if r.TotalAmount != nil {
		h[entity.ColTotalAmount] = r.TotalAmount
	}
	return h
}
