package maintenance

import (
	"context"
	"fmt"
	"sort"
	"time"

	customerdb "lunchbox-orders/internal/customer/db"
	"lunchbox-orders/internal/dates"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"
	orderdb "lunchbox-orders/internal/order/db"
)

// OrderStore is the slice of the order store the jobs need.
type OrderStore interface {
	AllOrders(ctx context.Context) ([]models.Order, error)
	WeeklyOrders(ctx context.Context) ([]models.Order, error)
	UpdateSettlementsBatch(ctx context.Context, updates []orderdb.SettlementUpdate) error
	ClearDailyCapacity(ctx context.Context) (int, error)
}

// CustomerStore is the slice of the customer store the jobs need.
type CustomerStore interface {
	AllCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateOrdersMirrorBatch(ctx context.Context, updates []customerdb.MirrorUpdate) error
}

// Service runs one-shot administrative repair jobs. Every job is idempotent:
// running it twice leaves the data unchanged the second time.
type Service struct {
	Orders    OrderStore
	Customers CustomerStore
	Logger    *logger.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewService(orders OrderStore, customers CustomerStore, log *logger.Logger) *Service {
	return &Service{Orders: orders, Customers: customers, Logger: log, now: time.Now}
}

// FixResult reports how many settlement entries FixSundayDates rewrote.
type FixResult struct {
	Message        string `json:"message"`
	OrdersFixed    int    `json:"ordersFixed"`
	CustomersFixed int    `json:"customersFixed"`
	TotalFixed     int    `json:"totalFixed"`
}

// FixSundayDates rewrites every settlement date landing on a Sunday to the
// Friday two days prior, in orders and in the customer order mirrors. Weekly
// expansion used to roll weekend selections onto Sunday; this repairs the
// leftovers.
func (s *Service) FixSundayDates(ctx context.Context) (*FixResult, error) {
	result := &FixResult{Message: "일요일 날짜를 금요일로 수정 완료"}

	orders, err := s.Orders.AllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	var orderUpdates []orderdb.SettlementUpdate
	for _, order := range orders {
		fixed, n := fixSundaySettlements(order.Settlements)
		if n == 0 {
			continue
		}
		result.OrdersFixed += n
		orderUpdates = append(orderUpdates, orderdb.SettlementUpdate{
			OrderID:     order.ID,
			Settlements: fixed,
		})
	}
	if err := s.Orders.UpdateSettlementsBatch(ctx, orderUpdates); err != nil {
		return nil, fmt.Errorf("update orders: %w", err)
	}

	customers, err := s.Customers.AllCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	var mirrorUpdates []customerdb.MirrorUpdate
	for _, customer := range customers {
		changed := false
		mirror := make([]models.CustomerOrder, len(customer.Orders))
		copy(mirror, customer.Orders)
		for i := range mirror {
			fixed, n := fixSundaySettlements(mirror[i].Settlements)
			if n == 0 {
				continue
			}
			mirror[i].Settlements = fixed
			result.CustomersFixed += n
			changed = true
		}
		if changed {
			mirrorUpdates = append(mirrorUpdates, customerdb.MirrorUpdate{
				CustomerID: customer.ID,
				Orders:     mirror,
			})
		}
	}
	if err := s.Customers.UpdateOrdersMirrorBatch(ctx, mirrorUpdates); err != nil {
		return nil, fmt.Errorf("update customers: %w", err)
	}

	result.TotalFixed = result.OrdersFixed + result.CustomersFixed
	s.Logger.LogJob("fix-sunday-dates", fmt.Sprintf("fixed %d order entries, %d mirror entries", result.OrdersFixed, result.CustomersFixed))
	return result, nil
}

func fixSundaySettlements(settlements []models.OrderSettlement) ([]models.OrderSettlement, int) {
	fixed := make([]models.OrderSettlement, len(settlements))
	copy(fixed, settlements)
	count := 0
	for i := range fixed {
		t, err := dates.Parse(fixed[i].Date)
		if err != nil {
			continue
		}
		if t.Weekday() == time.Sunday {
			fixed[i].Date = dates.Format(t.AddDate(0, 0, -2))
			count++
		}
	}
	return fixed, count
}

// TrimResult reports how many orders and mirror entries TrimWeeklyOrders
// rewrote.
type TrimResult struct {
	Message               string `json:"message"`
	OrdersUpdated         int    `json:"ordersUpdated"`
	CustomerOrdersUpdated int    `json:"customerOrdersUpdated"`
	TotalUpdated          int    `json:"totalUpdated"`
}

// trimWindow is [this Monday, Friday of the week after next], both inclusive.
func (s *Service) trimWindow() (time.Time, time.Time) {
	nextMonday := dates.NextMonday(s.now())
	start := nextMonday.AddDate(0, 0, -7)
	end := nextMonday.AddDate(0, 0, 11)
	return start, end
}

// TrimWeeklyOrders drops settlement dates outside the current three-week
// window from every recurring order, keeping the remainder sorted. Mirrors
// are rewritten the same way.
func (s *Service) TrimWeeklyOrders(ctx context.Context) (*TrimResult, error) {
	result := &TrimResult{Message: "기존 정기 주문을 이번 주 + 다음 주 + 다다음 주 날짜만 남기고 나머지 삭제 완료"}
	windowStart, windowEnd := s.trimWindow()

	orders, err := s.Orders.WeeklyOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weekly orders: %w", err)
	}

	var orderUpdates []orderdb.SettlementUpdate
	for _, order := range orders {
		if len(order.Settlements) == 0 {
			continue
		}
		kept := trimSettlements(order.Settlements, windowStart, windowEnd)
		if len(kept) == len(order.Settlements) {
			continue
		}
		result.OrdersUpdated++
		orderUpdates = append(orderUpdates, orderdb.SettlementUpdate{
			OrderID:     order.ID,
			Settlements: kept,
		})
	}
	if err := s.Orders.UpdateSettlementsBatch(ctx, orderUpdates); err != nil {
		return nil, fmt.Errorf("update orders: %w", err)
	}

	customers, err := s.Customers.AllCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	var mirrorUpdates []customerdb.MirrorUpdate
	for _, customer := range customers {
		changed := false
		mirror := make([]models.CustomerOrder, len(customer.Orders))
		copy(mirror, customer.Orders)
		for i := range mirror {
			if !mirror[i].IsWeeklyOrder || len(mirror[i].Settlements) == 0 {
				continue
			}
			kept := trimSettlements(mirror[i].Settlements, windowStart, windowEnd)
			if len(kept) == len(mirror[i].Settlements) {
				continue
			}
			mirror[i].Settlements = kept
			result.CustomerOrdersUpdated++
			changed = true
		}
		if changed {
			mirrorUpdates = append(mirrorUpdates, customerdb.MirrorUpdate{
				CustomerID: customer.ID,
				Orders:     mirror,
			})
		}
	}
	if err := s.Customers.UpdateOrdersMirrorBatch(ctx, mirrorUpdates); err != nil {
		return nil, fmt.Errorf("update customers: %w", err)
	}

	result.TotalUpdated = result.OrdersUpdated + result.CustomerOrdersUpdated
	s.Logger.LogJob("trim-weekly-orders", fmt.Sprintf("trimmed %d orders, %d mirror entries", result.OrdersUpdated, result.CustomerOrdersUpdated))
	return result, nil
}

func trimSettlements(settlements []models.OrderSettlement, start, end time.Time) []models.OrderSettlement {
	kept := make([]models.OrderSettlement, 0, len(settlements))
	for _, entry := range settlements {
		t, err := dates.Parse(entry.Date)
		if err != nil {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		kept = append(kept, entry)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	return kept
}

// ExtendResult reports how many recurring orders ExtendWeeklyOrders topped
// up.
type ExtendResult struct {
	Message       string `json:"message"`
	OrdersUpdated int    `json:"ordersUpdated"`
	DatesAdded    int    `json:"datesAdded"`
}

// ExtendWeeklyOrders appends next week's occurrence of each Monday-to-Friday
// weekday a recurring order uses, as unsettled entries, capped at the trim
// window.
// Dates already present are not duplicated, so the job can run on a schedule.
func (s *Service) ExtendWeeklyOrders(ctx context.Context) (*ExtendResult, error) {
	result := &ExtendResult{Message: "정기 주문에 다음 주 날짜 추가 완료"}
	_, windowEnd := s.trimWindow()
	nextMonday := dates.NextMonday(s.now())

	orders, err := s.Orders.WeeklyOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weekly orders: %w", err)
	}

	var orderUpdates []orderdb.SettlementUpdate
	added := map[string][]models.OrderSettlement{}
	for _, order := range orders {
		if len(order.Settlements) == 0 {
			continue
		}

		// Weekend entries are corrupt leftovers for FixSundayDates to repair,
		// not a delivery pattern to carry forward.
		weekdays := map[time.Weekday]struct{}{}
		for _, entry := range order.Settlements {
			t, err := dates.Parse(entry.Date)
			if err != nil {
				continue
			}
			if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
				weekdays[wd] = struct{}{}
			}
		}

		settlements := make([]models.OrderSettlement, len(order.Settlements))
		copy(settlements, order.Settlements)
		changed := false
		for wd := range weekdays {
			next := nextMonday.AddDate(0, 0, (int(wd)+6)%7)
			if next.After(windowEnd) {
				continue
			}
			date := dates.Format(next)
			if hasDate(settlements, date) {
				continue
			}
			settlements = append(settlements, models.OrderSettlement{Date: date})
			result.DatesAdded++
			changed = true
		}
		if !changed {
			continue
		}

		sort.Slice(settlements, func(i, j int) bool { return settlements[i].Date < settlements[j].Date })
		result.OrdersUpdated++
		orderUpdates = append(orderUpdates, orderdb.SettlementUpdate{
			OrderID:     order.ID,
			Settlements: settlements,
		})
		added[order.ID] = settlements
	}
	if err := s.Orders.UpdateSettlementsBatch(ctx, orderUpdates); err != nil {
		return nil, fmt.Errorf("update orders: %w", err)
	}

	if err := s.rewriteMirrors(ctx, added); err != nil {
		return nil, err
	}

	s.Logger.LogJob("extend-weekly-orders", fmt.Sprintf("added %d dates across %d orders", result.DatesAdded, result.OrdersUpdated))
	return result, nil
}

func hasDate(settlements []models.OrderSettlement, date string) bool {
	for _, entry := range settlements {
		if entry.Date == date {
			return true
		}
	}
	return false
}

// rewriteMirrors replaces mirror settlement lists for the given orders.
func (s *Service) rewriteMirrors(ctx context.Context, byOrderID map[string][]models.OrderSettlement) error {
	if len(byOrderID) == 0 {
		return nil
	}

	customers, err := s.Customers.AllCustomers(ctx)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}

	var mirrorUpdates []customerdb.MirrorUpdate
	for _, customer := range customers {
		changed := false
		mirror := make([]models.CustomerOrder, len(customer.Orders))
		copy(mirror, customer.Orders)
		for i := range mirror {
			settlements, ok := byOrderID[mirror[i].OrderID]
			if !ok {
				continue
			}
			mirror[i].Settlements = settlements
			changed = true
		}
		if changed {
			mirrorUpdates = append(mirrorUpdates, customerdb.MirrorUpdate{
				CustomerID: customer.ID,
				Orders:     mirror,
			})
		}
	}
	if err := s.Customers.UpdateOrdersMirrorBatch(ctx, mirrorUpdates); err != nil {
		return fmt.Errorf("update customers: %w", err)
	}
	return nil
}

// ResetResult reports how many vestigial capacity rows ResetCapacity removed.
type ResetResult struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

// ResetCapacity empties the daily_capacity table. Quotas are derived from
// order settlement lists, so rows there are stale leftovers.
func (s *Service) ResetCapacity(ctx context.Context) (*ResetResult, error) {
	deleted, err := s.Orders.ClearDailyCapacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear daily_capacity: %w", err)
	}

	result := &ResetResult{DeletedCount: deleted}
	if deleted == 0 {
		result.Message = "daily_capacity 테이블이 이미 비어있습니다."
	} else {
		result.Message = fmt.Sprintf("daily_capacity 테이블에서 %d개의 행을 삭제했습니다.", deleted)
	}

	s.Logger.LogJob("reset-capacity", fmt.Sprintf("deleted %d rows", deleted))
	return result, nil
}
