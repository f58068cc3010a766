package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CustomerOrder is the denormalized per-order mirror embedded on a customer.
// Every write path that touches an order's settlements rewrites this copy;
// there is no transactional guarantee keeping it consistent with the orders
// table.
type CustomerOrder struct {
	OrderID       string            `json:"order_id"`
	Settlements   []OrderSettlement `json:"settlements"`
	IsWeeklyOrder bool              `json:"is_weekly_order"`
	CreatedAt     string            `json:"created_at"`
}

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID            string          `bun:"id,pk" json:"id"`
	Name          string          `bun:"name,notnull" json:"name"`
	Contact       string          `bun:"contact,notnull" json:"contact"`
	Location      string          `bun:"location,nullzero" json:"location,omitempty"`
	Allergies     string          `bun:"allergies,nullzero" json:"allergies,omitempty"`
	IsBlacklisted bool            `bun:"is_blacklisted" json:"is_blacklisted"`
	IsWeeklyOrder bool            `bun:"is_weekly_order" json:"is_weekly_order"`
	Orders        []CustomerOrder `bun:"orders,type:jsonb" json:"orders"`
	CreatedAt     time.Time       `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero" json:"updated_at"`
}

// TotalOrders is derived from the embedded mirror, not stored.
func (c *Customer) TotalOrders() int {
	return len(c.Orders)
}
