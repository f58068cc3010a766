package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lunchbox-orders/internal/models"
)

var ErrCustomerNotFound = errors.New("고객을 찾을 수 없습니다.")

type DBLayer interface {
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByContact(ctx context.Context, contact string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	SetBlacklist(ctx context.Context, id string, blacklisted bool) error
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.DB.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// ByContact returns nil (not an error) when no customer matches, so the
// my-orders lookup can render an empty state.
func (s *Service) ByContact(ctx context.Context, contact string) (*models.Customer, error) {
	return s.DB.GetCustomerByContact(ctx, contact)
}

// SetBlacklist toggles the blacklist flag and returns the updated customer.
func (s *Service) SetBlacklist(ctx context.Context, id string, blacklisted bool) (*models.Customer, error) {
	if err := s.DB.SetBlacklist(ctx, id, blacklisted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update blacklist: %w", err)
	}
	return s.DB.GetCustomerByID(ctx, id)
}
