// Package calendar counts working days, skipping configured weekend days and bank holidays.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// WorkingDayCalendar is the collaborator used for turnaround arithmetic.
type WorkingDayCalendar interface {
	AddWorkingDays(date time.Time, n int) time.Time
	IsWorkingDay(date time.Time) bool
}

type Calendar struct {
	weekend  map[time.Weekday]struct{}
	holidays map[string]struct{}
}

type Option func(*Calendar)

// WithWeekendDays replaces the default Saturday/Sunday weekend. Passing no days yields a
// seven-day working week.
func WithWeekendDays(days ...time.Weekday) Option {
	return func(c *Calendar) {
		c.weekend = make(map[time.Weekday]struct{}, len(days))
		for _, d := range days {
			c.weekend[d] = struct{}{}
		}
	}
}

// WithHolidays marks the given dates as non-working.
func WithHolidays(dates ...time.Time) Option {
	return func(c *Calendar) {
		for _, d := range dates {
			c.holidays[d.Format(time.DateOnly)] = struct{}{}
		}
	}
}

func New(opts ...Option) *Calendar {
	c := &Calendar{
		weekend: map[time.Weekday]struct{}{
			time.Saturday: {},
			time.Sunday:   {},
		},
		holidays: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseHolidays reads a comma separated list of YYYY-MM-DD dates.
func ParseHolidays(raw string) ([]time.Time, error) {
	var out []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, part)
		if err != nil {
			return nil, fmt.Errorf("invalid bank holiday %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseWeekdays reads a comma separated list of weekday names, e.g. "saturday,sunday".
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday,
	}
	var out []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d, ok := names[part]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *Calendar) IsWorkingDay(date time.Time) bool {
	if _, weekend := c.weekend[date.Weekday()]; weekend {
		return false
	}
	_, holiday := c.holidays[date.Format(time.DateOnly)]
	return !holiday
}

// AddWorkingDays returns the n-th working day after date. n <= 0 returns date unchanged.
func (c *Calendar) AddWorkingDays(date time.Time, n int) time.Time {
	current := Day(date)
	if len(c.weekend) >= 7 {
		return current
	}
	for added := 0; added < n; {
		current = current.AddDate(0, 0, 1)
		if c.IsWorkingDay(current) {
			added++
		}
	}
	return current
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date is a convenience constructor for a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
