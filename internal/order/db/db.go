package db

import (
	"context"
	"database/sql"
	"time"

	"lunchbox-orders/internal/models"

	"github.com/uptrace/bun"
)

// batchSize caps how many orders a single transaction rewrites. Mirrors the
// 500-document batch limit the jobs were originally written against.
const batchSize = 500

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

func (d *DB) CreateOrder(ctx context.Context, order models.Order) error {
	_, err := d.Bun.NewInsert().Model(&order).Exec(ctx)
	return err
}

func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders applies the contact filter in the query and leaves date range
// and location filtering to the service.
func (d *DB) ListOrders(ctx context.Context, contact string) ([]models.Order, error) {
	var orders []models.Order
	q := d.Bun.NewSelect().Model(&orders)
	if contact != "" {
		q = q.Where("contact = ?", contact)
	}
	err := q.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// AllOrders fetches every order. Capacity is derived by scanning these and
// counting settlement dates.
func (d *DB) AllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().Model(&orders).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// WeeklyOrders fetches all recurring orders.
func (d *DB) WeeklyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("is_weekly_order = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateSettlements rewrites an order's settlement list.
func (d *DB) UpdateSettlements(ctx context.Context, id string, settlements []models.OrderSettlement) error {
	order := models.Order{ID: id, Settlements: settlements, UpdatedAt: time.Now()}
	res, err := d.Bun.NewUpdate().
		Model(&order).
		Column("settlements", "updated_at").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SettlementUpdate pairs an order with its rewritten settlement list for
// batched maintenance writes.
type SettlementUpdate struct {
	OrderID     string
	Settlements []models.OrderSettlement
}

// UpdateSettlementsBatch rewrites settlement lists in chunked transactions.
// Each chunk commits atomically; a failure leaves earlier chunks committed,
// so callers are expected to be idempotent and simply rerun.
func (d *DB) UpdateSettlementsBatch(ctx context.Context, updates []SettlementUpdate) error {
	for start := 0; start < len(updates); start += batchSize {
		end := start + batchSize
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			now := time.Now()
			for _, u := range chunk {
				order := models.Order{ID: u.OrderID, Settlements: u.Settlements, UpdatedAt: now}
				if _, err := tx.NewUpdate().
					Model(&order).
					Column("settlements", "updated_at").
					Where("id = ?", u.OrderID).
					Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteOrder hard-deletes the order row. The denormalized customer mirror is
// deliberately left untouched.
func (d *DB) DeleteOrder(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Order)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ---------------- CAPACITY (vestigial table) ----------------

// ClearDailyCapacity empties the superseded daily_capacity table in chunks
// and returns how many rows were removed.
func (d *DB) ClearDailyCapacity(ctx context.Context) (int, error) {
	deleted := 0
	for {
		var dateKeys []string
		err := d.Bun.NewSelect().
			Model((*models.DailyCapacityRow)(nil)).
			Column("date").
			Limit(batchSize).
			Scan(ctx, &dateKeys)
		if err != nil {
			return deleted, err
		}
		if len(dateKeys) == 0 {
			return deleted, nil
		}

		res, err := d.Bun.NewDelete().
			Model((*models.DailyCapacityRow)(nil)).
			Where("date IN (?)", bun.In(dateKeys)).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}
}
