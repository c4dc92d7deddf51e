package services

import (
	"time"

	"duka/internal/core"
)

// PeriodMatcher decides whether an order date falls in the period that
// contains now. One matcher exists per granularity.
type PeriodMatcher interface {
	Matches(created, now time.Time) bool
}

// DayMatcher matches the same calendar day.
type DayMatcher struct{}

func (DayMatcher) Matches(created, now time.Time) bool {
	cy, cm, cd := created.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return cy == ny && cm == nm && cd == nd
}

// WeekMatcher matches the Sunday-to-Saturday week containing now.
type WeekMatcher struct{}

func (WeekMatcher) Matches(created, now time.Time) bool {
	y, m, d := now.Date()
	start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 7)
	return !created.Before(start) && created.Before(end)
}

// MonthMatcher matches the same month of the same year.
type MonthMatcher struct{}

func (MonthMatcher) Matches(created, now time.Time) bool {
	c := created.In(now.Location())
	return c.Year() == now.Year() && c.Month() == now.Month()
}

// YearMatcher matches the same year.
type YearMatcher struct{}

func (YearMatcher) Matches(created, now time.Time) bool {
	return created.In(now.Location()).Year() == now.Year()
}

var periodMatchers = map[core.Granularity]PeriodMatcher{
	core.Daily:   DayMatcher{},
	core.Weekly:  WeekMatcher{},
	core.Monthly: MonthMatcher{},
	core.Yearly:  YearMatcher{},
}

// GetPeriodMatcher returns the matcher for g.
func GetPeriodMatcher(g core.Granularity) (PeriodMatcher, bool) {
	m, ok := periodMatchers[g]
	return m, ok
}
