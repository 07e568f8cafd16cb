// Package calendar lays out a workshop's schedule as a month grid and picks
// the time slots for a chosen day.
package calendar

import (
	"fmt"
	"time"

	"github.com/basho-studio/storefront/internal/catalog"
)

const (
	// Cells is the fixed grid size: six weeks of seven days.
	Cells = 42

	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Day is one grid cell. Filler cells from the neighbouring months carry only
// their day number.
type Day struct {
	Number    int    `json:"day"`
	InMonth   bool   `json:"inMonth"`
	Available bool   `json:"available"`
	Date      string `json:"date,omitempty"`
}

// Month is a displayed calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth reads a YYYY-MM value.
func ParseMonth(value string) (Month, error) {
	t, err := time.Parse(MonthLayout, value)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (expected YYYY-MM)", value)
	}
	return MonthOf(t), nil
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Next() Month {
	return MonthOf(m.first().AddDate(0, 1, 0))
}

func (m Month) Prev() Month {
	return MonthOf(m.first().AddDate(0, -1, 0))
}

// Days is the number of days in the month.
func (m Month) Days() int {
	return m.first().AddDate(0, 1, -1).Day()
}

func (m Month) String() string {
	return m.first().Format(MonthLayout)
}

func (m Month) Grid(schedule []catalog.ScheduleSlot) []Day {
	return Grid(m.Year, m.Month, schedule)
}

// Grid builds the 42-cell grid for the month, weeks starting on Sunday. A
// current-month day is available when the schedule holds a bookable slot on
// that date. Filler cells are never available.
func Grid(year int, month time.Month, schedule []catalog.ScheduleSlot) []Day {
	m := Month{Year: year, Month: month}
	open := bookableDates(schedule)

	days := make([]Day, 0, Cells)

	lead := int(m.first().Weekday())
	prevDays := m.Prev().Days()
	for i := lead; i > 0; i-- {
		days = append(days, Day{Number: prevDays - i + 1})
	}

	for d := 1; d <= m.Days(); d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		_, available := open[date]
		days = append(days, Day{Number: d, InMonth: true, Available: available, Date: date})
	}

	for d := 1; len(days) < Cells; d++ {
		days = append(days, Day{Number: d})
	}
	return days
}

// TimeSlotsForDate returns the bookable slots on date in schedule order.
func TimeSlotsForDate(schedule []catalog.ScheduleSlot, date string) []catalog.ScheduleSlot {
	slots := make([]catalog.ScheduleSlot, 0, len(schedule))
	for _, s := range schedule {
		if s.Date == date && s.Bookable() {
			slots = append(slots, s)
		}
	}
	return slots
}

// IsAvailableDate reports whether date has at least one bookable slot.
func IsAvailableDate(schedule []catalog.ScheduleSlot, date string) bool {
	for _, s := range schedule {
		if s.Date == date && s.Bookable() {
			return true
		}
	}
	return false
}

// FindSlot looks a slot up by id regardless of availability.
func FindSlot(schedule []catalog.ScheduleSlot, id catalog.ID) (catalog.ScheduleSlot, bool) {
	for _, s := range schedule {
		if s.ID == id {
			return s, true
		}
	}
	return catalog.ScheduleSlot{}, false
}

// ParseDate validates a YYYY-MM-DD value.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func bookableDates(schedule []catalog.ScheduleSlot) map[string]struct{} {
	dates := make(map[string]struct{}, len(schedule))
	for _, s := range schedule {
		if s.Bookable() {
			dates[s.Date] = struct{}{}
		}
	}
	return dates
}
