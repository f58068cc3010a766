package settlement

import (
	"context"
	"fmt"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	orderdb "lunchbox-orders/internal/order/db"
)

// DBLayer is the slice of the order store the settlement service needs.
type DBLayer interface {
	AllOrders(ctx context.Context) ([]models.Order, error)
	UpdateSettlementsBatch(ctx context.Context, updates []orderdb.SettlementUpdate) error
}

type Service struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewService(db DBLayer, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// StatsByDate reports how many orders carry the given delivery date and how
// many of those entries have been settled, broken down by pickup location.
func (s *Service) StatsByDate(ctx context.Context, date string) (*models.SettlementStats, error) {
	orders, err := s.DB.AllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	stats := &models.SettlementStats{
		Date:              date,
		LocationBreakdown: map[string]int{},
	}

	for _, order := range orders {
		for _, entry := range order.Settlements {
			if entry.Date != date {
				continue
			}
			stats.TotalOrders++
			if entry.IsSettled {
				stats.SettledOrders++
			} else {
				stats.UnsettledOrders++
			}
			if order.Location != "" {
				stats.LocationBreakdown[order.Location]++
			}
			break
		}
	}

	return stats, nil
}

// SettleAllByDate flips every unsettled entry for the date across all orders.
// Updates run in chunked batches; already settled entries are left as-is.
// Returns the number of orders touched.
func (s *Service) SettleAllByDate(ctx context.Context, date string) (int, error) {
	orders, err := s.DB.AllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("load orders: %w", err)
	}

	var updates []orderdb.SettlementUpdate
	for _, order := range orders {
		changed := false
		settlements := make([]models.OrderSettlement, len(order.Settlements))
		copy(settlements, order.Settlements)
		for i := range settlements {
			if settlements[i].Date == date && !settlements[i].IsSettled {
				settlements[i].IsSettled = true
				changed = true
			}
		}
		if changed {
			updates = append(updates, orderdb.SettlementUpdate{
				OrderID:     order.ID,
				Settlements: settlements,
			})
		}
	}

	if len(updates) == 0 {
		return 0, nil
	}

	if err := s.DB.UpdateSettlementsBatch(ctx, updates); err != nil {
		return 0, fmt.Errorf("batch settle: %w", err)
	}

	s.Logger.Info("SETTLEMENT", fmt.Sprintf("settled %d orders for %s", len(updates), date))
	return len(updates), nil
}
