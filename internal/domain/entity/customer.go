package entity

// Customer cliente del supermercado (vista tipada de una fila de customers).
type Customer struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Age          int64  `json:"age"`
	Email        string `json:"email"`
	Membership   bool   `json:"membership"`
	PasswordHash string `json:"-"`
}

// CustomerFromRecord decodifica una fila normalizada.
func CustomerFromRecord(r Record) *Customer {
	if r == nil {
		return nil
	}
	return &Customer{
		ID:           r.ID(),
		Name:         r.String(ColName),
		Age:          r.Int(ColAge),
		Email:        r.String(ColEmail),
		Membership:   r.Bool(ColMembership),
		PasswordHash: r.String(ColPassword),
	}
}
