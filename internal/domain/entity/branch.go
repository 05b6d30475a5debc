package entity

// Branch sucursal.
type Branch struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Size       int64  `json:"size"`
	TotalStock int64  `json:"total_stock"`
}

func BranchFromRecord(r Record) *Branch {
	if r == nil {
		return nil
	}
	return &Branch{
		ID:         r.ID(),
		Name:       r.String(ColName),
		Location:   r.String(ColLocation),
		Size:       r.Int(ColSize),
		TotalStock: r.Int(ColTotalStock),
	}
}
