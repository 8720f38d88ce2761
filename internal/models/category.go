package models

// Category is a tenant-owned classification label.
type Category struct {
	ID       string          `json:"id" yaml:"id"`
	TenantID string          `json:"tenantId" yaml:"-"`
	Name     string          `json:"name" yaml:"name"`
	Type     TransactionType `json:"type" yaml:"type"`
	IsActive bool            `json:"isActive" yaml:"active"`
}

// ActiveOnly filters out inactive categories, keeping order.
func ActiveOnly(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}
