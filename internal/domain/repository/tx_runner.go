package repository

import "context"

// TxRunner unidad de trabajo: fn corre sobre una sola conexión y transacción.
// Las llamadas anidadas con el ctx recibido se unen a la misma transacción.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}
