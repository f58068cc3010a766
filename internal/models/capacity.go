package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MaxDailyCapacity is the fixed per-day order quota.
const MaxDailyCapacity = 30

// DailyCapacity is a derived view: current_order_count is recomputed on demand
// by scanning order settlement lists, never read from storage. IsClosed has UI
// but no backing storage and always reads false.
type DailyCapacity struct {
	Date              string `json:"date"`
	MaxCapa           int    `json:"max_capa"`
	CurrentOrderCount int    `json:"current_order_count"`
	Remaining         int    `json:"remaining"`
	IsClosed          bool   `json:"is_closed"`
}

// DefaultCapacity is what capacity reads degrade to when the store is not
// configured or a scan fails.
func DefaultCapacity(date string) DailyCapacity {
	return DailyCapacity{
		Date:      date,
		MaxCapa:   MaxDailyCapacity,
		Remaining: MaxDailyCapacity,
	}
}

// DailyCapacityRow is the vestigial stored entity superseded by on-the-fly
// computation. It exists only so the reset-capacity maintenance job has
// something to clear.
type DailyCapacityRow struct {
	bun.BaseModel `bun:"table:daily_capacity"`

	Date              string    `bun:"date,pk" json:"date"`
	MaxCapa           int       `bun:"max_capa" json:"max_capa"`
	CurrentOrderCount int       `bun:"current_order_count" json:"current_order_count"`
	IsClosed          bool      `bun:"is_closed" json:"is_closed"`
	CreatedAt         time.Time `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}
