package maintenance

import (
	"context"
	"testing"
	"time"

	customerdb "lunchbox-orders/internal/customer/db"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	orderdb "lunchbox-orders/internal/order/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	orders       map[string]*models.Order
	capacityRows int
}

func newFakeOrderStore(orders ...models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[string]*models.Order)}
	for i := range orders {
		o := orders[i]
		s.orders[o.ID] = &o
	}
	return s
}

func (s *fakeOrderStore) AllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOrderStore) WeeklyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.IsWeeklyOrder {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateSettlementsBatch(ctx context.Context, updates []orderdb.SettlementUpdate) error {
	for _, u := range updates {
		if o, exists := s.orders[u.OrderID]; exists {
			o.Settlements = u.Settlements
		}
	}
	return nil
}

func (s *fakeOrderStore) ClearDailyCapacity(ctx context.Context) (int, error) {
	n := s.capacityRows
	s.capacityRows = 0
	return n, nil
}

type fakeCustomerStore struct {
	customers map[string]*models.Customer
}

func newFakeCustomerStore(customers ...models.Customer) *fakeCustomerStore {
	s := &fakeCustomerStore{customers: make(map[string]*models.Customer)}
	for i := range customers {
		c := customers[i]
		s.customers[c.ID] = &c
	}
	return s
}

func (s *fakeCustomerStore) AllCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range s.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCustomerStore) UpdateOrdersMirrorBatch(ctx context.Context, updates []customerdb.MirrorUpdate) error {
	for _, u := range updates {
		if c, exists := s.customers[u.CustomerID]; exists {
			c.Orders = u.Orders
		}
	}
	return nil
}

func newTestService(orders *fakeOrderStore, customers *fakeCustomerStore, now time.Time) *Service {
	svc := NewService(orders, customers, &logger.Logger{})
	svc.now = func() time.Time { return now }
	return svc
}

func settlements(dates ...string) []models.OrderSettlement {
	out := make([]models.OrderSettlement, len(dates))
	for i, d := range dates {
		out[i] = models.OrderSettlement{Date: d}
	}
	return out
}

func TestFixSundayDates(t *testing.T) {
	// 2024-06-02 is a Sunday; the Friday two days prior is 2024-05-31.
	orders := newFakeOrderStore(models.Order{
		ID:          "order-1",
		Settlements: settlements("2024-06-02", "2024-06-05"),
	})
	customers := newFakeCustomerStore(models.Customer{
		ID: "cust-1",
		Orders: []models.CustomerOrder{{
			OrderID:     "order-1",
			Settlements: settlements("2024-06-02", "2024-06-05"),
		}},
	})
	svc := newTestService(orders, customers, time.Date(2024, 6, 5, 10, 0, 0, 0, time.Local))

	result, err := svc.FixSundayDates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.OrdersFixed)
	assert.Equal(t, 1, result.CustomersFixed)
	assert.Equal(t, 2, result.TotalFixed)
	assert.Equal(t, "일요일 날짜를 금요일로 수정 완료", result.Message)

	assert.Equal(t, "2024-05-31", orders.orders["order-1"].Settlements[0].Date)
	assert.Equal(t, "2024-06-05", orders.orders["order-1"].Settlements[1].Date)
	assert.Equal(t, "2024-05-31", customers.customers["cust-1"].Orders[0].Settlements[0].Date)

	// Second run finds nothing left to fix.
	result, err = svc.FixSundayDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalFixed)
}

func TestTrimWeeklyOrders(t *testing.T) {
	// Wednesday 2024-06-05: window is Monday 2024-06-03 through Friday
	// 2024-06-21.
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.Local)

	orders := newFakeOrderStore(
		models.Order{
			ID:            "weekly-1",
			IsWeeklyOrder: true,
			Settlements:   settlements("2024-05-27", "2024-06-24", "2024-06-10", "2024-06-03"),
		},
		models.Order{
			ID:          "oneoff-1",
			Settlements: settlements("2024-05-27"),
		},
	)
	customers := newFakeCustomerStore(models.Customer{
		ID: "cust-1",
		Orders: []models.CustomerOrder{{
			OrderID:       "weekly-1",
			IsWeeklyOrder: true,
			Settlements:   settlements("2024-05-27", "2024-06-03"),
		}},
	})
	svc := newTestService(orders, customers, now)

	result, err := svc.TrimWeeklyOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.OrdersUpdated)
	assert.Equal(t, 1, result.CustomerOrdersUpdated)

	trimmed := orders.orders["weekly-1"].Settlements
	require.Len(t, trimmed, 2)
	assert.Equal(t, "2024-06-03", trimmed[0].Date)
	assert.Equal(t, "2024-06-10", trimmed[1].Date)

	// One-off orders are untouched even when their dates are stale.
	assert.Equal(t, "2024-05-27", orders.orders["oneoff-1"].Settlements[0].Date)

	mirror := customers.customers["cust-1"].Orders[0].Settlements
	require.Len(t, mirror, 1)
	assert.Equal(t, "2024-06-03", mirror[0].Date)
}

func TestExtendWeeklyOrders(t *testing.T) {
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.Local)

	orders := newFakeOrderStore(models.Order{
		ID:            "weekly-1",
		IsWeeklyOrder: true,
		Settlements: []models.OrderSettlement{
			{Date: "2024-06-03", IsSettled: true},
			{Date: "2024-06-05"},
		},
	})
	customers := newFakeCustomerStore(models.Customer{
		ID: "cust-1",
		Orders: []models.CustomerOrder{{
			OrderID:       "weekly-1",
			IsWeeklyOrder: true,
			Settlements:   settlements("2024-06-03", "2024-06-05"),
		}},
	})
	svc := newTestService(orders, customers, now)

	result, err := svc.ExtendWeeklyOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.OrdersUpdated)
	assert.Equal(t, 2, result.DatesAdded)

	extended := orders.orders["weekly-1"].Settlements
	require.Len(t, extended, 4)
	assert.Equal(t, "2024-06-10", extended[2].Date)
	assert.False(t, extended[2].IsSettled)
	assert.Equal(t, "2024-06-12", extended[3].Date)

	mirror := customers.customers["cust-1"].Orders[0].Settlements
	assert.Len(t, mirror, 4)

	// Rerunning adds nothing: next week's dates are already present.
	result, err = svc.ExtendWeeklyOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.DatesAdded)
}

func TestExtendWeeklyOrdersSkipsWeekendDates(t *testing.T) {
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.Local)

	// 2024-06-02 is a Sunday left behind by the old weekly expansion bug.
	orders := newFakeOrderStore(models.Order{
		ID:            "weekly-1",
		IsWeeklyOrder: true,
		Settlements: []models.OrderSettlement{
			{Date: "2024-06-02"},
			{Date: "2024-06-03"},
		},
	})
	svc := newTestService(orders, newFakeCustomerStore(), now)

	result, err := svc.ExtendWeeklyOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.DatesAdded)

	extended := orders.orders["weekly-1"].Settlements
	require.Len(t, extended, 3)
	assert.Equal(t, "2024-06-10", extended[2].Date)
	for _, entry := range extended {
		assert.NotEqual(t, "2024-06-16", entry.Date)
	}
}

func TestResetCapacity(t *testing.T) {
	orders := newFakeOrderStore()
	orders.capacityRows = 3
	svc := newTestService(orders, newFakeCustomerStore(), time.Now())

	result, err := svc.ResetCapacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.DeletedCount)
	assert.Contains(t, result.Message, "3개")

	result, err = svc.ResetCapacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.DeletedCount)
	assert.Equal(t, "daily_capacity 테이블이 이미 비어있습니다.", result.Message)
}
