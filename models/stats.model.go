package models

// Stats is the admin dashboard summary.
type Stats struct {
	TotalProducts  int64            `json:"total_products"`
	TotalAdmins    int64            `json:"total_admins"`
	TotalUsers     int64            `json:"total_users"`
	TotalOrders    int64            `json:"total_orders"`
	InventoryValue float64          `json:"inventory_value"`
	Revenue        float64          `json:"revenue"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
}

// PageCount returns the number of pages needed for total items.
func PageCount(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
