package admin

import (
	"context"
	"testing"
	"time"

	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	orders []models.Order
}

func (s *fakeOrderStore) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders, nil
}

func TestWeeklySummary(t *testing.T) {
	// Wednesday 2024-06-05; this week runs Monday 2024-06-03 through Sunday
	// 2024-06-09.
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.Local)

	store := &fakeOrderStore{orders: []models.Order{
		{
			ID:        "in-week-1",
			Location:  models.LocationKingsPark,
			CreatedAt: time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local),
			Settlements: []models.OrderSettlement{
				{Date: "2024-06-03"},
				{Date: "2024-06-05"},
			},
		},
		{
			ID:        "in-week-2",
			Location:  models.LocationEasternCreek,
			CreatedAt: time.Date(2024, 6, 4, 9, 0, 0, 0, time.Local),
			Settlements: []models.OrderSettlement{
				{Date: "2024-06-05"},
			},
		},
		{
			ID:        "last-week",
			Location:  models.LocationKingsPark,
			CreatedAt: time.Date(2024, 5, 28, 9, 0, 0, 0, time.Local),
			Settlements: []models.OrderSettlement{
				{Date: "2024-06-05"},
			},
		},
	}}

	svc := NewService(store, &logger.Logger{})
	svc.now = func() time.Time { return now }

	summary, err := svc.WeeklySummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 2, summary.ExpectedRevenue)

	require.Len(t, summary.OrdersByDay, 5)
	assert.Equal(t, models.DayCount{Day: "월", Count: 1}, summary.OrdersByDay[0])
	assert.Equal(t, models.DayCount{Day: "수", Count: 2}, summary.OrdersByDay[2])
	assert.Equal(t, models.DayCount{Day: "금", Count: 0}, summary.OrdersByDay[4])

	// Both in-week orders deliver today; the older order is excluded even
	// though it shares the date.
	assert.Equal(t, 2, summary.TodayDelivery.Total)
	assert.Equal(t, 1, summary.TodayDelivery.KingsPark)
	assert.Equal(t, 1, summary.TodayDelivery.EasternCreek)
}

func TestWeeklySummaryEmpty(t *testing.T) {
	svc := NewService(&fakeOrderStore{}, &logger.Logger{})

	summary, err := svc.WeeklySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalOrders)
	require.Len(t, summary.OrdersByDay, 5)
	for _, dc := range summary.OrdersByDay {
		assert.Equal(t, 0, dc.Count)
	}
}
