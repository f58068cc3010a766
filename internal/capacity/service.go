package capacity

import (
	"context"
	"fmt"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
)

// OrderScanner supplies the orders whose settlement lists are counted.
type OrderScanner interface {
	AllOrders(ctx context.Context) ([]models.Order, error)
}

// Service derives per-date capacity by scanning order settlement lists.
// There is no counter and no locking: two concurrent submissions can both
// observe remaining > 0 and jointly exceed the quota. Sequential callers
// are the only ones the quota is enforced against.
type Service struct {
	DB     OrderScanner
	Cache  *Cache
	Logger *logger.Logger
}

func NewService(db OrderScanner, cache *Cache, log *logger.Logger) *Service {
	return &Service{DB: db, Cache: cache, Logger: log}
}

// Capacities returns one snapshot per requested date, in input order. With no
// configured store every date reads as fully available rather than failing.
func (s *Service) Capacities(ctx context.Context, dateKeys []string) ([]models.DailyCapacity, error) {
	out := make([]models.DailyCapacity, len(dateKeys))

	if s.DB == nil {
		for i, d := range dateKeys {
			out[i] = models.DefaultCapacity(d)
		}
		return out, nil
	}

	missing := make([]string, 0, len(dateKeys))
	missingIdx := make(map[string][]int, len(dateKeys))
	for i, d := range dateKeys {
		if s.Cache != nil {
			if snap, ok := s.Cache.Get(ctx, d); ok {
				out[i] = snap
				continue
			}
		}
		if len(missingIdx[d]) == 0 {
			missing = append(missing, d)
		}
		missingIdx[d] = append(missingIdx[d], i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	counts, err := s.countOrders(ctx, missing)
	if err != nil {
		return nil, err
	}

	for _, d := range missing {
		snap := models.DailyCapacity{
			Date:              d,
			MaxCapa:           models.MaxDailyCapacity,
			CurrentOrderCount: counts[d],
			Remaining:         models.MaxDailyCapacity - counts[d],
		}
		if s.Cache != nil {
			s.Cache.Set(ctx, snap)
		}
		for _, i := range missingIdx[d] {
			out[i] = snap
		}
	}
	return out, nil
}

// Invalidate drops cached snapshots after an order write changes the counts.
func (s *Service) Invalidate(ctx context.Context, dateKeys []string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, dateKeys); err != nil && s.Logger != nil {
		s.Logger.Warn("CAPACITY", fmt.Sprintf("failed to invalidate cache: %v", err))
	}
}

func (s *Service) countOrders(ctx context.Context, dateKeys []string) (map[string]int, error) {
	orders, err := s.DB.AllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	wanted := make(map[string]struct{}, len(dateKeys))
	for _, d := range dateKeys {
		wanted[d] = struct{}{}
	}

	counts := make(map[string]int, len(dateKeys))
	for _, order := range orders {
		for _, s := range order.Settlements {
			if _, ok := wanted[s.Date]; ok {
				counts[s.Date]++
			}
		}
	}
	return counts, nil
}
