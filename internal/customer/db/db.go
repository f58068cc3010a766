package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lunchbox-orders/internal/models"

	"github.com/uptrace/bun"
)

const batchSize = 500

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomerByContact looks a customer up by the contact business key.
// Returns nil without error when no customer matches; uniqueness is not
// enforced at storage level, the first match wins.
func (d *DB) GetCustomerByContact(ctx context.Context, contact string) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("contact = ?", contact).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (d *DB) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := d.Bun.NewSelect().
		Model(&customers).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (d *DB) CreateCustomer(ctx context.Context, customer models.Customer) error {
	_, err := d.Bun.NewInsert().Model(&customer).Exec(ctx)
	return err
}

// UpdateCustomer rewrites the contact-form fields and the order mirror on an
// existing customer.
func (d *DB) UpdateCustomer(ctx context.Context, customer models.Customer) error {
	customer.UpdatedAt = time.Now()
	res, err := d.Bun.NewUpdate().
		Model(&customer).
		Column("name", "location", "allergies", "is_weekly_order", "orders", "updated_at").
		Where("id = ?", customer.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (d *DB) SetBlacklist(ctx context.Context, id string, blacklisted bool) error {
	customer := models.Customer{ID: id, IsBlacklisted: blacklisted, UpdatedAt: time.Now()}
	res, err := d.Bun.NewUpdate().
		Model(&customer).
		Column("is_blacklisted", "updated_at").
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

// UpdateOrdersMirror rewrites the denormalized per-order copy on a customer.
// This is the second leg of the order/customer dual write and carries no
// transactional tie to the orders table.
func (d *DB) UpdateOrdersMirror(ctx context.Context, id string, orders []models.CustomerOrder) error {
	customer := models.Customer{ID: id, Orders: orders, UpdatedAt: time.Now()}
	_, err := d.Bun.NewUpdate().
		Model(&customer).
		Column("orders", "updated_at").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// MirrorUpdate pairs a customer with a rewritten order mirror for batched
// maintenance writes.
type MirrorUpdate struct {
	CustomerID string
	Orders     []models.CustomerOrder
}

// UpdateOrdersMirrorBatch applies mirror rewrites in chunked transactions.
func (d *DB) UpdateOrdersMirrorBatch(ctx context.Context, updates []MirrorUpdate) error {
	for start := 0; start < len(updates); start += batchSize {
		end := start + batchSize
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			now := time.Now()
			for _, u := range chunk {
				customer := models.Customer{ID: u.CustomerID, Orders: u.Orders, UpdatedAt: now}
				if _, err := tx.NewUpdate().
					Model(&customer).
					Column("orders", "updated_at").
					Where("id = ?", u.CustomerID).
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

// AllCustomers fetches every customer, for mirror maintenance jobs.
func (d *DB) AllCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := d.Bun.NewSelect().Model(&customers).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return customers, nil
}
