package entity

import "github.com/shopspring/decimal"

// Transaction cabecera de una venta. Sus líneas se crean junto con ella en una sola unidad de trabajo.
type Transaction struct {
	ID                int64           `json:"id"`
	BranchID          *int64          `json:"branch_id"`
	CustomerID        *int64          `json:"customer_id"`
	DateOfTransaction Date            `json:"date_of_transaction"`
	TimeOfTransaction TimeOfDay       `json:"time_of_transaction"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// TransactionLine detalle de venta: producto, cantidad y precio unitario al momento de vender.
type TransactionLine struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
}

// Subtotal cantidad por precio.
func (l TransactionLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// TransactionWithLines cabecera más sus líneas, tal como quedó confirmada.
type TransactionWithLines struct {
	Transaction
	Details []TransactionLine `json:"details"`
}

// LinesTotal suma de subtotales.
func (t *TransactionWithLines) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Details {
		total = total.Add(l.Subtotal())
	}
	return total
}

func TransactionFromRecord(r Record) *Transaction {
	if r == nil {
		return nil
	}
	tod, _ := r[ColTimeOfTransaction].(TimeOfDay)
	return &Transaction{
		ID:                r.ID(),
		BranchID:          r.IntPtr(ColBranchID),
		CustomerID:        r.IntPtr(ColCustomerID),
		DateOfTransaction: r.Date(ColDateOfTransaction),
		TimeOfTransaction: tod,
		TotalAmount:       r.Money(ColTotalAmount),
	}
}

func TransactionLineFromRecord(r Record) TransactionLine {
	return TransactionLine{
		ID:            r.ID(),
		TransactionID: r.Int(ColTransactionID),
		ProductID:     r.Int(ColProductID),
		Quantity:      r.Int(ColQuantity),
		Price:         r.Money(ColPrice),
	}
}
