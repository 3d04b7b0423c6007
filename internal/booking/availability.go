package booking

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Availability is the set of weekdays a doctor operates on, using indices
// 0=Monday .. 6=Sunday. It gates new requests only and never retroactively
// invalidates existing appointments.
type Availability []int

// weekdayIndex converts a time.Weekday (Sunday=0) to the Monday-based index.
func weekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// Contains checks if the given Monday-based weekday index belongs to the set.
func (a Availability) Contains(day int) bool {
	for _, v := range a {
		if v == day {
			return true
		}
	}
	return false
}

// IsAvailableOn checks if the doctor operates on the weekday of the given date.
func (a Availability) IsAvailableOn(date time.Time) bool {
	return a.Contains(weekdayIndex(date))
}

// NextAvailable scans forward day by day, starting one day after the given
// date, and returns the first date the doctor operates on. It returns nil if
// the horizon is exhausted.
func (a Availability) NextAvailable(from time.Time, horizonDays int) *time.Time {
	for i := 1; i <= horizonDays; i++ {
		candidate := from.AddDate(0, 0, i)
		if a.IsAvailableOn(candidate) {
			return &candidate
		}
	}
	return nil
}

// Scan hydrates the availability set from its comma-separated column value.
func (a *Availability) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*a = Availability{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported availability column type %T", value)
	}
	if raw == "" {
		*a = Availability{}
		return nil
	}
	parts := strings.Split(raw, ",")
	days := make(Availability, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid availability day %q: %w", part, err)
		}
		if day < 0 || day > 6 {
			return fmt.Errorf("availability day %d out of range", day)
		}
		days = append(days, day)
	}
	sort.Ints(days)
	*a = days
	return nil
}

// Value serializes the availability set as a comma-separated string.
func (a Availability) Value() (driver.Value, error) {
	parts := make([]string, 0, len(a))
	for _, day := range a {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("availability day %d out of range", day)
		}
		parts = append(parts, strconv.Itoa(day))
	}
	return strings.Join(parts, ","), nil
}
