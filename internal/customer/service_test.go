package customer_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"lunchbox-orders/internal/customer"
	"lunchbox-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	customers map[string]*models.Customer
}

func newFakeDB(customers ...models.Customer) *fakeDB {
	db := &fakeDB{customers: make(map[string]*models.Customer)}
	for i := range customers {
		c := customers[i]
		db.customers[c.ID] = &c
	}
	return db
}

func (f *fakeDB) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	c, exists := f.customers[id]
	if !exists {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (f *fakeDB) GetCustomerByContact(ctx context.Context, contact string) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.Contact == contact {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range f.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeDB) SetBlacklist(ctx context.Context, id string, blacklisted bool) error {
	c, exists := f.customers[id]
	if !exists {
		return sql.ErrNoRows
	}
	c.IsBlacklisted = blacklisted
	return nil
}

func TestByContactAbsentReturnsNil(t *testing.T) {
	svc := customer.NewService(newFakeDB())

	got, err := svc.ByContact(context.Background(), "0400000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetBlacklistReturnsUpdatedCustomer(t *testing.T) {
	svc := customer.NewService(newFakeDB(models.Customer{ID: "cust-1", Contact: "0400111222"}))

	got, err := svc.SetBlacklist(context.Background(), "cust-1", true)
	require.NoError(t, err)
	assert.True(t, got.IsBlacklisted)

	got, err = svc.SetBlacklist(context.Background(), "cust-1", false)
	require.NoError(t, err)
	assert.False(t, got.IsBlacklisted)
}

func TestSetBlacklistNotFound(t *testing.T) {
	svc := customer.NewService(newFakeDB())

	_, err := svc.SetBlacklist(context.Background(), "missing", true)
	assert.True(t, errors.Is(err, customer.ErrCustomerNotFound))
}
