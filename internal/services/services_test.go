package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duka/internal/core"
	"duka/internal/kv/memory"
	"duka/internal/log"
)

type event struct{ kind, id, from, to string }

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (p *fakePublisher) PublishStatusChanged(_ context.Context, kind, id, from, to string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event{kind, id, from, to})
	return nil
}

func mkOrder(id string, status core.OrderStatus, cents int64, items int, created time.Time) core.Order {
	return core.Order{ID: id, Customer: "a@example.com", Items: items, Total: core.Money{Cents: cents}, Status: status, CreatedAt: created}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	p, err := Paginate(items, "", 0)
	require.NoError(t, err)
	assert.Len(t, p.Items, DefaultPageSize)
	assert.True(t, p.HasMore)
	assert.Equal(t, "20", p.NextCursor)
	assert.Equal(t, 45, p.Total)

	p, err = Paginate(items, p.NextCursor, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Items[0])
	assert.Equal(t, "40", p.NextCursor)

	p, err = Paginate(items, p.NextCursor, 20)
	require.NoError(t, err)
	assert.Len(t, p.Items, 5)
	assert.False(t, p.HasMore)
	assert.Empty(t, p.NextCursor)

	p, err = Paginate(items, "999", 10)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)

	big := make([]int, 500)
	p, err = Paginate(big, "", 1000)
	require.NoError(t, err)
	assert.Len(t, p.Items, MaxPageSize)

	for _, bad := range []string{"abc", "-1"} {
		_, err = Paginate(items, bad, 10)
		assert.ErrorIs(t, err, core.ErrInvalidCursor)
	}
}

func TestFilterOrders(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	orders := []core.Order{
		mkOrder("ORD-1", core.OrderShipped, 1000, 1, now),
		mkOrder("ORD-2", core.OrderCancelled, 2000, 2, now),
		mkOrder("ORD-3", core.OrderShipped, 3000, 3, now),
	}
	assert.Len(t, FilterOrders(orders, ""), 3)
	shipped := FilterOrders(orders, core.OrderShipped)
	require.Len(t, shipped, 2)
	assert.Equal(t, "ORD-3", shipped[1].ID)
}

func TestFilterOrdersByDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	orders := []core.Order{
		mkOrder("A", core.OrderShipped, 1, 1, day(1)),
		mkOrder("B", core.OrderShipped, 1, 1, day(10)),
		mkOrder("C", core.OrderShipped, 1, 1, day(20)),
	}

	got, err := FilterOrdersByDate(orders, day(1), day(10))
	require.NoError(t, err)
	assert.Len(t, got, 2, "both bounds are inclusive")

	got, err = FilterOrdersByDate(orders, day(5), time.Time{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = FilterOrdersByDate(orders, day(10), day(1))
	assert.ErrorIs(t, err, core.ErrInvalidDateRange)
}

func TestFilterOrdersByPeriod(t *testing.T) {
	// Wednesday; its week runs Sunday Jan 11 to Saturday Jan 17.
	now := time.Date(2026, 1, 14, 15, 0, 0, 0, time.UTC)
	at := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }
	orders := []core.Order{
		mkOrder("today", core.OrderShipped, 1, 1, at(1, 14)),
		mkOrder("sunday", core.OrderShipped, 1, 1, at(1, 11)),
		mkOrder("saturday-before", core.OrderShipped, 1, 1, at(1, 10)),
		mkOrder("march", core.OrderShipped, 1, 1, at(3, 1)),
		mkOrder("last-year", core.OrderShipped, 1, 1, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		g    core.Granularity
		want []string
	}{
		{core.Daily, []string{"today"}},
		{core.Weekly, []string{"today", "sunday"}},
		{core.Monthly, []string{"today", "sunday", "saturday-before"}},
		{core.Yearly, []string{"today", "sunday", "saturday-before", "march"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.g), func(t *testing.T) {
			got, err := FilterOrdersByPeriod(orders, tt.g, now)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, o := range got {
				ids[i] = o.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := FilterOrdersByPeriod(orders, "hourly", now)
	assert.ErrorIs(t, err, core.ErrUnknownGranularity)
}

func TestOrderTotals(t *testing.T) {
	now := time.Now()
	totals := OrderTotals([]core.Order{
		mkOrder("A", core.OrderShipped, 1050, 2, now),
		mkOrder("B", core.OrderDelivered, 2000, 3, now),
		mkOrder("C", core.OrderShipped, 450, 1, now),
	})
	assert.Equal(t, int64(3500), totals.TotalRevenue.Cents)
	assert.Equal(t, 3, totals.TotalOrders)
	assert.Equal(t, 6, totals.TotalItems)
	assert.Equal(t, 2, totals.StatusCounts[core.OrderShipped])
	assert.Equal(t, 1, totals.StatusCounts[core.OrderDelivered])

	empty := OrderTotals(nil)
	assert.Zero(t, empty.TotalOrders)
	assert.NotNil(t, empty.StatusCounts)
}

func newOrderService(t *testing.T, pub *fakePublisher) (*OrderService, *memory.Store) {
	t.Helper()
	kv := memory.New(nil)
	store, err := OpenOrderStore(context.Background(), kv, 42, 50)
	require.NoError(t, err)
	var svc *OrderService
	if pub == nil {
		svc = NewOrderService(store, nil, log.Discard())
	} else {
		svc = NewOrderService(store, pub, log.Discard())
	}
	return svc, kv
}

func TestOrderServiceSeedIsPersisted(t *testing.T) {
	ctx := context.Background()
	svc, kv := newOrderService(t, nil)

	raw, found, err := kv.Get(ctx, "orders")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEmpty(t, raw)

	reopened, err := OpenOrderStore(ctx, kv, 999, 10)
	require.NoError(t, err)
	assert.Len(t, reopened.State().Orders, 50, "stored orders win over a new seed")
	assert.Equal(t, 50, svc.Totals(ctx).TotalOrders)
}

func TestOrderServiceList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(t, nil)

	page, err := svc.List(ctx, OrderQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, "ORD-1001", page.Items[0].ID)
	assert.True(t, page.HasMore)

	all, err := svc.List(ctx, OrderQuery{Status: "all", Limit: 100})
	require.NoError(t, err)
	count := 0
	for _, st := range core.OrderStatuses() {
		p, err := svc.List(ctx, OrderQuery{Status: string(st), Limit: 100})
		require.NoError(t, err)
		for _, o := range p.Items {
			assert.Equal(t, st, o.Status)
		}
		count += p.Total
	}
	assert.Equal(t, all.Total, count)

	_, err = svc.List(ctx, OrderQuery{Status: "Lost"})
	assert.ErrorIs(t, err, core.ErrUnknownStatus)
}

func TestOrderServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc, kv := newOrderService(t, pub)

	before, err := svc.Get(ctx, "ORD-1001")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, "ORD-1001", core.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, core.OrderCancelled, updated.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event{"order", "ORD-1001", string(before.Status), "Cancelled"}, pub.events[0])

	reopened, err := OpenOrderStore(ctx, kv, 42, 50)
	require.NoError(t, err)
	o, _ := reopened.State().FindOrder("ORD-1001")
	assert.Equal(t, core.OrderCancelled, o.Status)

	_, err = svc.UpdateStatus(ctx, "ORD-9999", core.OrderShipped)
	assert.True(t, core.IsNotFound(err))
	assert.Len(t, pub.events, 1)
}

func TestOrderServicePublishFailureDoesNotFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, _ := newOrderService(t, pub)
	_, err := svc.UpdateStatus(context.Background(), "ORD-1002", core.OrderDelivered)
	assert.NoError(t, err)
}

func newTicketService(t *testing.T, pub *fakePublisher) *TicketService {
	t.Helper()
	store, err := OpenTicketStore(context.Background(), memory.New(nil))
	require.NoError(t, err)
	svc := NewTicketService(store, pub, log.Discard())
	n := 0
	svc.newID = func() string { n++; return "id-" + strconv.Itoa(n) }
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestTicketServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService(t, &fakePublisher{})

	tk, err := svc.Create(ctx, CreateTicketRequest{
		Title:       "  Broken checkout ",
		Description: "Card declined",
		User:        "ops@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", tk.ID)
	assert.Equal(t, "Broken checkout", tk.Subject)
	assert.Equal(t, core.PriorityLow, tk.Priority)
	assert.Equal(t, core.TicketOpen, tk.Status)

	list := svc.List(ctx)
	require.Len(t, list, 5)
	assert.Equal(t, "id-1", list[0].ID, "new tickets come first")

	tk, err = svc.Create(ctx, CreateTicketRequest{Title: "x", Description: "y", User: "u", Priority: "urgent"})
	require.NoError(t, err)
	assert.Equal(t, core.PriorityUrgent, tk.Priority)
}

func TestTicketServiceCreateValidation(t *testing.T) {
	svc := newTicketService(t, nil)
	tests := []struct {
		name string
		req  CreateTicketRequest
	}{
		{"missing title", CreateTicketRequest{Description: "d", User: "u"}},
		{"missing description", CreateTicketRequest{Title: "t", User: "u"}},
		{"missing user", CreateTicketRequest{Title: "t", Description: "d"}},
		{"bad priority", CreateTicketRequest{Title: "t", Description: "d", User: "u", Priority: "Critical"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), "validation failed")
		})
	}
}

func TestTicketServiceStatusAndComments(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTicketService(t, pub)

	tk, err := svc.UpdateStatus(ctx, "TCK-1001", core.TicketResolved)
	require.NoError(t, err)
	assert.Equal(t, core.TicketResolved, tk.Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, event{"ticket", "TCK-1001", "Open", "Resolved"}, pub.events[0])

	c, err := svc.AddComment(ctx, "TCK-1001", AddCommentRequest{Text: " Looking into it "})
	require.NoError(t, err)
	assert.Equal(t, DefaultCommentAuthor, c.Author)
	assert.Equal(t, "Looking into it", c.Text)

	got, err := svc.Get(ctx, "TCK-1001")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)

	_, err = svc.AddComment(ctx, "TCK-0000", AddCommentRequest{Text: "hi"})
	assert.True(t, core.IsNotFound(err))

	_, err = svc.AddComment(ctx, "TCK-1001", AddCommentRequest{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTicketStats(t *testing.T) {
	stats := TicketStats(core.SeedTickets())
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[core.TicketOpen])
	assert.Equal(t, 1, stats.ByStatus[core.TicketPending])
	assert.Equal(t, 0, stats.ByStatus[core.TicketResolved])
	assert.Equal(t, 1, stats.ByPriority[core.PriorityUrgent])
	assert.Equal(t, []core.DayCount{
		{Date: "2026-01-10", Count: 1},
		{Date: "2026-01-12", Count: 1},
		{Date: "2026-01-14", Count: 1},
		{Date: "2026-01-15", Count: 1},
	}, stats.OverTime)

	empty := TicketStats(nil)
	assert.Empty(t, empty.OverTime)
	assert.Len(t, empty.ByStatus, 5)
}

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	svc := NewDashboardService(memory.New(nil), 42, log.Discard())

	s, err := svc.Summary(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.Seed)
	require.Len(t, s.Reports, 4)
	assert.Equal(t, int64(709000), s.Reports[core.Yearly].Totals.Income)
	assert.Len(t, s.Reports[core.Daily].View, 7)

	seed := uint64(42)
	daily, err := svc.Report(ctx, core.Daily, &seed)
	require.NoError(t, err)
	assert.Equal(t, s.Reports[core.Daily], daily, "summary matches the single report for the same seed")

	d, err := svc.Delta(ctx, core.FieldIncome, core.Monthly, nil)
	require.NoError(t, err)
	assert.True(t, d.Defined)
	assert.InDelta(t, 4.5, d.Percent, 1e-9)

	d, err = svc.Delta(ctx, core.FieldIncome, core.Yearly, nil)
	require.NoError(t, err)
	assert.False(t, d.Defined)

	chart, err := svc.IncomeChart(ctx)
	require.NoError(t, err)
	require.Len(t, chart, 12)
	assert.Equal(t, int64(709000), chart[11].CumulativeTotal)

	ytd, err := svc.YearToDate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(97000), ytd)

	_, err = svc.MonthComparison(ctx, 13)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	a, err := svc.Live(ctx, &seed)
	require.NoError(t, err)
	b, err := svc.Live(ctx, &seed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

type brokenReader struct{}

func (brokenReader) ReadDataset(context.Context) ([]core.MonthlyRecord, error) {
	return core.IncomeFixture()[:11], nil
}

func TestDashboardServiceInvalidDataset(t *testing.T) {
	svc := NewDashboardService(brokenReader{}, 1, log.Discard())
	_, err := svc.Summary(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
	_, err = svc.Live(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
}
