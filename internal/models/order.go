package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Location is one of the two fixed pickup spots.
type Location = string

const (
	LocationKingsPark    Location = "Kings Park"
	LocationEasternCreek Location = "Eastern Creek"
)

const (
	PaymentCash         = "cash"
	PaymentBankTransfer = "bank_transfer"
)

// OrderSettlement records that a delivery is scheduled for a date and whether
// payment for that date has been confirmed. The settlements list on an order
// doubles as the list of ordered dates.
type OrderSettlement struct {
	Date      string `json:"date"`
	IsSettled bool   `json:"is_settled"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            string            `bun:"id,pk" json:"id"`
	CustomerID    string            `bun:"customer_id" json:"customer_id,omitempty"`
	CustomerName  string            `bun:"customer_name,notnull" json:"customer_name"`
	Contact       string            `bun:"contact,notnull" json:"contact"`
	Location      Location          `bun:"location,notnull" json:"location"`
	PaymentMethod string            `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	Allergies     string            `bun:"allergies,nullzero" json:"allergies,omitempty"`
	Settlements   []OrderSettlement `bun:"settlements,type:jsonb" json:"settlements"`
	IsWeeklyOrder bool              `bun:"is_weekly_order" json:"is_weekly_order"`
	CreatedAt     time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time         `bun:"updated_at,nullzero" json:"updated_at"`
}

// HasDate reports whether the order has a settlement entry for the date.
func (o *Order) HasDate(date string) bool {
	for _, s := range o.Settlements {
		if s.Date == date {
			return true
		}
	}
	return false
}

// OrderForm is the order submission payload from the storefront form.
type OrderForm struct {
	Name          string   `json:"name"`
	Contact       string   `json:"contact"`
	Location      Location `json:"location"`
	OrderDates    []string `json:"orderDates"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Allergies     string   `json:"allergies,omitempty"`
	IsWeeklyOrder bool     `json:"is_weekly_order,omitempty"`
}

// OrderFilters narrows order list queries. Contact is an exact match applied
// in the query; the created-date range and location are post-filtered in
// memory to keep the store free of composite indexes.
type OrderFilters struct {
	StartDate string
	EndDate   string
	Location  string
	Contact   string
}
