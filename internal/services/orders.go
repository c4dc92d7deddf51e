package services

import (
	"context"
	"fmt"
	"time"

	"duka/internal/amqp"
	"duka/internal/core"
	"duka/internal/log"
	"duka/internal/metrics"
	"duka/internal/ports"
	"duka/internal/state"
)

// DefaultOrderCount is how many demo orders a fresh order book is seeded with.
const DefaultOrderCount = 50

// OrderStore is the state container of the order book.
type OrderStore = state.Store[state.Orders, state.OrderAction]

// OrderQuery selects and pages through orders. Zero values mean no filter.
type OrderQuery struct {
	Status string
	Period core.Granularity
	From   time.Time
	To     time.Time
	Cursor string
	Limit  int
}

// OrderService serves the order book and announces status changes.
type OrderService struct {
	store     *OrderStore
	publisher ports.EventPublisher
	logger    *log.StructuredLogger
	now       func() time.Time
}

// NewOrderService wires the service. A nil publisher disables events.
func NewOrderService(store *OrderStore, publisher ports.EventPublisher, logger *log.Logger) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentOrders)),
		now:       time.Now,
	}
}

// OpenOrderStore opens the order book persisted in kv, seeding n generated
// orders on first use.
func OpenOrderStore(ctx context.Context, kv ports.KVStore, seed uint64, n int) (*OrderStore, error) {
	return state.Open(ctx, state.Options[state.Orders, state.OrderAction]{
		Reducer:   state.ReduceOrders,
		Persister: state.NewKVPersister[state.Orders](kv, state.OrdersKey),
		Clone:     state.CloneOrders,
		Seed: func() state.Orders {
			return state.Orders{Orders: core.GenerateOrders(n, metrics.NewRand(seed), time.Now())}
		},
	})
}

// List filters the order book and returns one page.
func (s *OrderService) List(ctx context.Context, q OrderQuery) (Page[core.Order], error) {
	orders := s.store.State().Orders

	status, err := parseStatusFilter(q.Status)
	if err != nil {
		return Page[core.Order]{}, err
	}
	orders = FilterOrders(orders, status)

	if q.Period != "" {
		if orders, err = FilterOrdersByPeriod(orders, q.Period, s.now()); err != nil {
			return Page[core.Order]{}, err
		}
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		if orders, err = FilterOrdersByDate(orders, q.From, q.To); err != nil {
			return Page[core.Order]{}, err
		}
	}
	return Paginate(orders, q.Cursor, q.Limit)
}

// Get returns one order.
func (s *OrderService) Get(_ context.Context, id string) (core.Order, error) {
	o, ok := s.store.State().FindOrder(id)
	if !ok {
		return core.Order{}, fmt.Errorf("order %s: %w", id, core.ErrNotFound)
	}
	return o, nil
}

// Totals rolls up the whole order book.
func (s *OrderService) Totals(_ context.Context) core.OrderTotals {
	return OrderTotals(s.store.State().Orders)
}

// UpdateStatus moves an order to a new status and publishes the change.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status core.OrderStatus) (core.Order, error) {
	before, after, err := s.store.Dispatch(ctx, state.UpdateOrderStatus{ID: id, Status: status})
	if err != nil {
		return core.Order{}, fmt.Errorf("update order status: %w", err)
	}
	prev, _ := before.FindOrder(id)
	updated, _ := after.FindOrder(id)

	s.logger.LogStatusChanged(ctx, amqp.KindOrder, id, string(prev.Status), string(updated.Status))
	publish(ctx, s.publisher, s.logger, amqp.KindOrder, id, string(prev.Status), string(updated.Status))
	return updated, nil
}

func parseStatusFilter(s string) (core.OrderStatus, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	return core.ParseOrderStatus(s)
}

// FilterOrders keeps the orders with status. An empty status keeps all.
func FilterOrders(orders []core.Order, status core.OrderStatus) []core.Order {
	if status == "" {
		return append([]core.Order(nil), orders...)
	}
	out := make([]core.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// FilterOrdersByDate keeps orders created within [from, to]. A zero bound
// is open.
func FilterOrdersByDate(orders []core.Order, from, to time.Time) ([]core.Order, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", core.ErrInvalidDateRange,
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	out := make([]core.Order, 0, len(orders))
	for _, o := range orders {
		if !from.IsZero() && o.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && o.CreatedAt.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// FilterOrdersByPeriod keeps orders created in the day, week, month or year
// containing now.
func FilterOrdersByPeriod(orders []core.Order, g core.Granularity, now time.Time) ([]core.Order, error) {
	m, ok := GetPeriodMatcher(g)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownGranularity, g)
	}
	out := make([]core.Order, 0, len(orders))
	for _, o := range orders {
		if m.Matches(o.CreatedAt, now) {
			out = append(out, o)
		}
	}
	return out, nil
}

// OrderTotals sums revenue and items and counts orders per status.
func OrderTotals(orders []core.Order) core.OrderTotals {
	t := core.OrderTotals{StatusCounts: make(map[core.OrderStatus]int, len(core.OrderStatuses()))}
	for _, o := range orders {
		t.TotalRevenue = t.TotalRevenue.Add(o.Total)
		t.TotalOrders++
		t.TotalItems += o.Items
		t.StatusCounts[o.Status]++
	}
	return t
}
