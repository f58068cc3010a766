package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notice struct {
	bun.BaseModel `bun:"table:notices"`

	ID        string    `bun:"id,pk" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Content   string    `bun:"content,notnull" json:"content"`
	IsActive  bool      `bun:"is_active" json:"isActive"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
