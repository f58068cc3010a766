package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lunchbox-orders/internal/dates"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/models"

	"github.com/google/uuid"
)

// ErrOrderNotFound carries the storefront's display message.
var ErrOrderNotFound = errors.New("주문을 찾을 수 없습니다.")

// ValidationError marks failures the storefront should show as-is with a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// weeklyWeeksAhead is how many extra weeks a recurring order is seeded with
// at creation time. Maintenance jobs top further weeks up later.
const weeklyWeeksAhead = 1

type DBLayer interface {
	CreateOrder(ctx context.Context, order models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, contact string) ([]models.Order, error)
	UpdateSettlements(ctx context.Context, id string, settlements []models.OrderSettlement) error
	DeleteOrder(ctx context.Context, id string) error
}

type CustomerStore interface {
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByContact(ctx context.Context, contact string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer models.Customer) error
	UpdateCustomer(ctx context.Context, customer models.Customer) error
	UpdateOrdersMirror(ctx context.Context, id string, orders []models.CustomerOrder) error
}

type CapacityChecker interface {
	Capacities(ctx context.Context, dateKeys []string) ([]models.DailyCapacity, error)
	Invalidate(ctx context.Context, dateKeys []string)
}

type EventPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderCancelled(order models.Order) error
	PublishOrderSettled(order models.Order) error
}

type OrderService struct {
	DB        DBLayer
	Customers CustomerStore
	Capacity  CapacityChecker
	Events    EventPublisher // nil when Kafka is disabled
	Logger    *logger.Logger
}

func NewOrderService(db DBLayer, customers CustomerStore, capacity CapacityChecker, events EventPublisher, log *logger.Logger) *OrderService {
	return &OrderService{DB: db, Customers: customers, Capacity: capacity, Events: events, Logger: log}
}

// Create validates the form, enforces the daily quota, upserts the customer
// by contact and inserts the order with one unsettled settlement per date.
//
// Capacity enforcement is check-then-act over a derived count: sequential
// submissions never push a date past the quota, concurrent ones can.
func (s *OrderService) Create(ctx context.Context, form models.OrderForm) (*models.Order, error) {
	form.Contact = stripDigits(form.Contact)

	if err := validateForm(form); err != nil {
		return nil, err
	}

	orderDates := uniqueSorted(form.OrderDates)
	if form.IsWeeklyOrder {
		orderDates = dates.WeeklyRecurringDates(orderDates, weeklyWeeksAhead)
	}

	orderDates, err := s.enforceCapacity(ctx, orderDates, form.IsWeeklyOrder)
	if err != nil {
		return nil, err
	}

	customerID, err := s.upsertCustomer(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	settlements := make([]models.OrderSettlement, len(orderDates))
	for i, d := range orderDates {
		settlements[i] = models.OrderSettlement{Date: d}
	}

	now := time.Now()
	newOrder := models.Order{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		CustomerName:  form.Name,
		Contact:       form.Contact,
		Location:      form.Location,
		PaymentMethod: form.PaymentMethod,
		Allergies:     form.Allergies,
		Settlements:   settlements,
		IsWeeklyOrder: form.IsWeeklyOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.DB.CreateOrder(ctx, newOrder); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Second, unguarded write: append the denormalized copy to the customer.
	// A failure here leaves the two records divergent until a maintenance
	// job reconciles them.
	s.appendCustomerMirror(ctx, customerID, newOrder)

	if s.Events != nil {
		if err := s.Events.PublishOrderCreated(newOrder); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish order created: %v", err))
		}
	}
	s.Capacity.Invalidate(ctx, orderDates)

	s.Logger.LogOrder("CREATE", newOrder.ID, fmt.Sprintf("%d dates for %s", len(orderDates), form.Contact))
	return &newOrder, nil
}

// List fetches orders with the contact filter applied in the query and the
// created-date range and location applied in memory. Rows missing required
// fields are skipped with a warning instead of failing the whole query.
func (s *OrderService) List(ctx context.Context, filters models.OrderFilters) ([]models.Order, error) {
	orders, err := s.DB.ListOrders(ctx, filters.Contact)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.CustomerName == "" || o.Contact == "" || o.Location == "" {
			s.Logger.Warn("ORDER", fmt.Sprintf("order %s is missing required fields, skipping", o.ID))
			continue
		}
		if filters.StartDate != "" {
			if start, err := dates.Parse(filters.StartDate); err == nil && o.CreatedAt.Before(start) {
				continue
			}
		}
		if filters.EndDate != "" {
			if end, err := dates.Parse(filters.EndDate); err == nil && o.CreatedAt.After(end.AddDate(0, 0, 1)) {
				continue
			}
		}
		if filters.Location != "" && o.Location != filters.Location {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.DB.GetOrderByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// SettleDate marks the settlement entry for the date as settled, inserting
// one when the date is absent. Settling twice is a no-op.
func (s *OrderService) SettleDate(ctx context.Context, orderID, date string) (*models.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range o.Settlements {
		if o.Settlements[i].Date == date {
			o.Settlements[i].IsSettled = true
			found = true
			break
		}
	}
	if !found {
		o.Settlements = append(o.Settlements, models.OrderSettlement{Date: date, IsSettled: true})
	}

	if err := s.DB.UpdateSettlements(ctx, orderID, o.Settlements); err != nil {
		return nil, fmt.Errorf("failed to settle date: %w", err)
	}
	o.UpdatedAt = time.Now()

	if s.Events != nil {
		if err := s.Events.PublishOrderSettled(*o); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish order settled: %v", err))
		}
	}
	s.Logger.LogOrder("SETTLE", orderID, date)
	return o, nil
}

// CancelDate removes the settlement entry for the date, or every entry
// sharing the date's weekday when cancelAllWeekly is set on a recurring
// order. The customer mirror is rewritten as a second, unguarded write.
func (s *OrderService) CancelDate(ctx context.Context, orderID, date string, cancelAllWeekly bool) ([]models.OrderSettlement, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	byWeekday := cancelAllWeekly && o.IsWeeklyOrder
	kept, removed := filterSettlements(o.Settlements, date, byWeekday)

	if err := s.DB.UpdateSettlements(ctx, orderID, kept); err != nil {
		return nil, fmt.Errorf("failed to cancel date: %w", err)
	}

	if o.CustomerID != "" {
		s.rewriteCustomerMirror(ctx, o.CustomerID, orderID, date, byWeekday)
	}

	if s.Events != nil {
		o.Settlements = kept
		if err := s.Events.PublishOrderCancelled(*o); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish order cancelled: %v", err))
		}
	}
	s.Capacity.Invalidate(ctx, removed)

	s.Logger.LogOrder("CANCEL", orderID, fmt.Sprintf("%d dates removed", len(removed)))
	return kept, nil
}

// Delete hard-deletes the order. The customer mirror is not cleaned up.
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.DB.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	removed := make([]string, len(o.Settlements))
	for i, st := range o.Settlements {
		removed[i] = st.Date
	}
	s.Capacity.Invalidate(ctx, removed)

	s.Logger.LogOrder("DELETE", orderID, "order deleted")
	return nil
}

// ---------------- helpers ----------------

func validateForm(form models.OrderForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return validationf("이름을 입력해주세요.")
	}
	if form.Contact == "" {
		return validationf("연락처를 입력해주세요.")
	}
	if form.Location != models.LocationKingsPark && form.Location != models.LocationEasternCreek {
		return validationf("수령 장소를 선택해주세요.")
	}
	if len(form.OrderDates) == 0 {
		return validationf("주문 날짜를 선택해주세요.")
	}
	if form.PaymentMethod != models.PaymentCash && form.PaymentMethod != models.PaymentBankTransfer {
		return validationf("결제 수단을 선택해주세요.")
	}
	for _, d := range form.OrderDates {
		if _, err := dates.Parse(d); err != nil {
			return validationf("잘못된 날짜 형식입니다: %s", d)
		}
	}
	return nil
}

// enforceCapacity recomputes remaining capacity for the requested dates.
// Non-recurring orders abort on any full date; recurring orders silently
// drop full dates and abort only when nothing survives.
func (s *OrderService) enforceCapacity(ctx context.Context, orderDates []string, weekly bool) ([]string, error) {
	caps, err := s.Capacity.Capacities(ctx, orderDates)
	if err != nil {
		return nil, fmt.Errorf("failed to check capacity: %w", err)
	}

	full := make(map[string]struct{})
	for _, c := range caps {
		if c.CurrentOrderCount >= c.MaxCapa {
			if !weekly {
				return nil, validationf("%s 날짜는 재고가 부족합니다. (%d/%d)", c.Date, c.CurrentOrderCount, c.MaxCapa)
			}
			full[c.Date] = struct{}{}
		}
	}

	if len(full) == 0 {
		return orderDates, nil
	}

	kept := orderDates[:0]
	for _, d := range orderDates {
		if _, dropped := full[d]; !dropped {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return nil, validationf("선택하신 요일들이 모두 재고가 부족합니다.")
	}
	return kept, nil
}

// upsertCustomer finds a customer by exact contact match and refreshes the
// form fields, or inserts a new one.
func (s *OrderService) upsertCustomer(ctx context.Context, form models.OrderForm) (string, error) {
	existing, err := s.Customers.GetCustomerByContact(ctx, form.Contact)
	if err != nil {
		return "", err
	}

	if existing != nil {
		existing.Name = form.Name
		existing.Location = form.Location
		existing.Allergies = form.Allergies
		existing.IsWeeklyOrder = form.IsWeeklyOrder
		if err := s.Customers.UpdateCustomer(ctx, *existing); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	now := time.Now()
	customer := models.Customer{
		ID:            uuid.NewString(),
		Name:          form.Name,
		Contact:       form.Contact,
		Location:      form.Location,
		Allergies:     form.Allergies,
		IsWeeklyOrder: form.IsWeeklyOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Customers.CreateCustomer(ctx, customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (s *OrderService) appendCustomerMirror(ctx context.Context, customerID string, o models.Order) {
	customer, err := s.Customers.GetCustomerByID(ctx, customerID)
	if err != nil {
		s.Logger.Warn("CUSTOMER", fmt.Sprintf("mirror append skipped for %s: %v", customerID, err))
		return
	}

	mirror := append(customer.Orders, models.CustomerOrder{
		OrderID:       o.ID,
		Settlements:   o.Settlements,
		IsWeeklyOrder: o.IsWeeklyOrder,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	})
	if err := s.Customers.UpdateOrdersMirror(ctx, customerID, mirror); err != nil {
		s.Logger.Warn("CUSTOMER", fmt.Sprintf("mirror append failed for %s: %v", customerID, err))
	}
}

func (s *OrderService) rewriteCustomerMirror(ctx context.Context, customerID, orderID, date string, byWeekday bool) {
	customer, err := s.Customers.GetCustomerByID(ctx, customerID)
	if err != nil {
		s.Logger.Warn("CUSTOMER", fmt.Sprintf("mirror rewrite skipped for %s: %v", customerID, err))
		return
	}

	changed := false
	for i, co := range customer.Orders {
		if co.OrderID != orderID {
			continue
		}
		kept, _ := filterSettlements(co.Settlements, date, byWeekday && co.IsWeeklyOrder)
		customer.Orders[i].Settlements = kept
		changed = true
	}
	if !changed {
		return
	}
	if err := s.Customers.UpdateOrdersMirror(ctx, customerID, customer.Orders); err != nil {
		s.Logger.Warn("CUSTOMER", fmt.Sprintf("mirror rewrite failed for %s: %v", customerID, err))
	}
}

// filterSettlements drops the entry matching date, or every entry sharing
// its weekday, and returns the kept entries plus the removed dates.
func filterSettlements(settlements []models.OrderSettlement, date string, byWeekday bool) ([]models.OrderSettlement, []string) {
	targetDay := dates.DayOfWeekFromDate(date)

	kept := make([]models.OrderSettlement, 0, len(settlements))
	var removed []string
	for _, st := range settlements {
		drop := st.Date == date
		if byWeekday && targetDay != "" {
			drop = dates.DayOfWeekFromDate(st.Date) == targetDay
		}
		if drop {
			removed = append(removed, st.Date)
			continue
		}
		kept = append(kept, st)
	}
	return kept, removed
}

func stripDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func uniqueSorted(in []string) []string {
	return dates.WeeklyRecurringDates(in, 0)
}
