package admin

import (
	"context"
	"fmt"
	"time"

	"lunchbox-orders/internal/dates"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
)

// OrderLister is the slice of the order store the dashboard needs.
type OrderLister interface {
	AllOrders(ctx context.Context) ([]models.Order, error)
}

type Service struct {
	DB     OrderLister
	Logger *logger.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewService(db OrderLister, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log, now: time.Now}
}

var weekdayOrder = []string{"월", "화", "수", "목", "금"}

// WeeklySummary aggregates this week's orders for the admin dashboard.
// The week runs Monday through Sunday and orders are bucketed by their
// creation time.
func (s *Service) WeeklySummary(ctx context.Context) (*models.WeeklySummary, error) {
	orders, err := s.DB.AllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	now := s.now()
	weekStart := dates.ThisMonday(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	today := dates.Format(now)

	byDay := map[string]int{}
	for _, day := range weekdayOrder {
		byDay[day] = 0
	}
	summary := &models.WeeklySummary{}

	for _, order := range orders {
		if order.CreatedAt.Before(weekStart) || !order.CreatedAt.Before(weekEnd) {
			continue
		}
		summary.TotalOrders++

		for _, entry := range order.Settlements {
			day := dates.DayOfWeekFromDate(entry.Date)
			if _, tracked := byDay[day]; tracked {
				byDay[day]++
			}
		}

		if order.HasDate(today) {
			summary.TodayDelivery.Total++
			switch order.Location {
			case models.LocationKingsPark:
				summary.TodayDelivery.KingsPark++
			case models.LocationEasternCreek:
				summary.TodayDelivery.EasternCreek++
			}
		}
	}

	// One lunchbox per order per week for now; the dashboard applies pricing.
	summary.ExpectedRevenue = summary.TotalOrders

	summary.OrdersByDay = make([]models.DayCount, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		summary.OrdersByDay = append(summary.OrdersByDay, models.DayCount{Day: day, Count: byDay[day]})
	}

	return summary, nil
}
