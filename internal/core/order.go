package core

import "time"

// Order is one storefront order.
type Order struct {
	ID        string      `json:"id"`
	Customer  string      `json:"customer"`
	Items     int         `json:"items"`
	Total     Money       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// OrderTotals is the roll-up shown above the orders table.
type OrderTotals struct {
	TotalRevenue Money               `json:"totalRevenue"`
	TotalOrders  int                 `json:"totalOrders"`
	TotalItems   int                 `json:"totalItems"`
	StatusCounts map[OrderStatus]int `json:"statusCounts"`
}
