package db

import (
	"context"
	"database/sql"
	"errors"

	"lunchbox-orders/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// LatestActive returns the newest active notice, or nil when none exists.
func (d *DB) LatestActive(ctx context.Context) (*models.Notice, error) {
	notice := new(models.Notice)
	err := d.Bun.NewSelect().
		Model(notice).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return notice, nil
}

func (d *DB) CreateNotice(ctx context.Context, notice models.Notice) error {
	_, err := d.Bun.NewInsert().Model(&notice).Exec(ctx)
	return err
}
