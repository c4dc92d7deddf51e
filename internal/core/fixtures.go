package core

import (
	"fmt"
	"math/rand/v2"
	"time"
)

var incomeFixture = [MonthsPerYear]MonthlyRecord{
	{Period: "Jan", Income: 45000, Expenses: 32000, Profit: 13000, Orders: 120, NewCustomers: 35, Refunds: 4},
	{Period: "Feb", Income: 52000, Expenses: 30000, Profit: 22000, Orders: 135, NewCustomers: 42, Refunds: 3},
	{Period: "Mar", Income: 48000, Expenses: 31000, Profit: 17000, Orders: 128, NewCustomers: 38, Refunds: 5},
	{Period: "Apr", Income: 60000, Expenses: 35000, Profit: 25000, Orders: 150, NewCustomers: 50, Refunds: 6},
	{Period: "May", Income: 58000, Expenses: 34000, Profit: 24000, Orders: 142, NewCustomers: 48, Refunds: 4},
	{Period: "Jun", Income: 62000, Expenses: 36000, Profit: 26000, Orders: 155, NewCustomers: 52, Refunds: 5},
	{Period: "Jul", Income: 64000, Expenses: 37000, Profit: 27000, Orders: 160, NewCustomers: 55, Refunds: 3},
	{Period: "Aug", Income: 59000, Expenses: 33000, Profit: 26000, Orders: 148, NewCustomers: 47, Refunds: 6},
	{Period: "Sep", Income: 61000, Expenses: 34000, Profit: 27000, Orders: 152, NewCustomers: 50, Refunds: 4},
	{Period: "Oct", Income: 63000, Expenses: 35000, Profit: 28000, Orders: 158, NewCustomers: 53, Refunds: 3},
	{Period: "Nov", Income: 67000, Expenses: 37000, Profit: 30000, Orders: 165, NewCustomers: 60, Refunds: 5},
	{Period: "Dec", Income: 70000, Expenses: 39000, Profit: 31000, Orders: 172, NewCustomers: 62, Refunds: 6},
}

// IncomeFixture returns a fresh copy of the canonical 12-month dataset.
func IncomeFixture() []MonthlyRecord {
	out := make([]MonthlyRecord, MonthsPerYear)
	for i, r := range incomeFixture {
		r.Position = i
		out[i] = r
	}
	return out
}

// SeedTickets returns the tickets the support desk starts with.
func SeedTickets() []Ticket {
	day := func(d int) time.Time { return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC) }
	return []Ticket{
		{ID: "TCK-1001", Subject: "Payment not going through", Category: "Payments", Priority: PriorityHigh, Status: TicketOpen,
			Message: "My card keeps failing during checkout.", CreatedAt: day(15), CreatedBy: "john@example.com", Comments: []Comment{}},
		{ID: "TCK-1002", Subject: "Product image missing", Category: "Products", Priority: PriorityMedium, Status: TicketPending,
			Message: "Images are not showing on product page.", CreatedAt: day(14), CreatedBy: "sarah@example.com", Comments: []Comment{}},
		{ID: "TCK-1003", Subject: "Account locked", Category: "Account", Priority: PriorityUrgent, Status: TicketClosed,
			Message: "I can't log in anymore.", CreatedAt: day(12), CreatedBy: "mike@example.com", Comments: []Comment{}},
		{ID: "TCK-1004", Subject: "Refund request", Category: "Payments", Priority: PriorityLow, Status: TicketOpen,
			Message: "I would like to request a refund for my last order.", CreatedAt: day(10), CreatedBy: "lisa@example.com", Comments: []Comment{}},
	}
}

var orderCustomers = []string{
	"john@example.com",
	"sarah@example.com",
	"mike@example.com",
	"lisa@example.com",
	"jane@example.com",
	"alex@example.com",
	"remmy@gmail.com",
}

// GenerateOrders builds n demo orders, ORD-1001 onwards, dated within the two
// years before now. The rng makes the output reproducible.
func GenerateOrders(n int, rng *rand.Rand, now time.Time) []Order {
	statuses := OrderStatuses()
	const twoYears = 2 * 365 * 24 * time.Hour
	today := now.UTC().Truncate(24 * time.Hour)

	orders := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		// 20.00 to 519.99
		cents := 2000 + rng.Int64N(50000)
		created := today.Add(-time.Duration(rng.Int64N(int64(twoYears)))).Truncate(24 * time.Hour)
		orders = append(orders, Order{
			ID:        fmt.Sprintf("ORD-%d", 1000+i+1),
			Customer:  orderCustomers[rng.IntN(len(orderCustomers))],
			Items:     rng.IntN(6) + 1,
			Total:     Money{Cents: cents},
			Status:    statuses[rng.IntN(len(statuses))],
			CreatedAt: created,
		})
	}
	return orders
}
