// Package model provides value objects for API parameter validation.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CalendarName represents a calendar name value object.
type CalendarName struct {
	value string
}

// NewCalendarName creates a new calendar name value object.
// An empty name falls back to "untitled".
func NewCalendarName(name string) (*CalendarName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return &CalendarName{value: "untitled"}, nil
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("calendar name must be at most 100 characters")
	}
	return &CalendarName{value: name}, nil
}

// String returns the calendar name string.
func (n *CalendarName) String() string {
	return n.value
}

// CalendarID represents a calendar ID value object.
type CalendarID struct {
	value uuid.UUID
}

// NewCalendarID creates a new calendar ID value object.
func NewCalendarID(idStr string) (*CalendarID, error) {
	if idStr == "" {
		return nil, fmt.Errorf("calendar ID is required")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format")
	}

	return &CalendarID{value: id}, nil
}

// UUID returns the UUID value.
func (c *CalendarID) UUID() uuid.UUID {
	return c.value
}

// DateRange represents a UTC date range value object.
type DateRange struct {
	from time.Time
	to   time.Time
}

// NewDateRange creates a new date range value object.
// Missing bounds default to the latest week plus 51 weeks ending at now,
// which stays within the one-year span GitHub accepts.
func NewDateRange(fromStr, toStr string, now time.Time) (*DateRange, error) {
	defaultFrom, defaultTo := getDefaultDateRange(now)

	fromTime := defaultFrom
	if fromStr != "" {
		t, err := parseDateTime(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid from parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
		fromTime = t
	}

	toTime := defaultTo
	if toStr != "" {
		t, err := parseDateTime(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid to parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
		toTime = t
	}

	fromTime = normalizeToBeginOfDay(fromTime)
	toTime = normalizeToEndOfDay(toTime)
	if fromTime.After(toTime) {
		return nil, fmt.Errorf("from must not be after to")
	}

	return &DateRange{from: fromTime, to: toTime}, nil
}

// From returns the start date.
func (d *DateRange) From() time.Time {
	return d.from
}

// To returns the end date.
func (d *DateRange) To() time.Time {
	return d.to
}

// getDefaultDateRange calculates the default date range for the latest week + 51 weeks.
func getDefaultDateRange(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	weekday := int(now.Weekday())
	latestWeekStart := now.AddDate(0, 0, -weekday)
	defaultFrom := latestWeekStart.AddDate(0, 0, -51*7)
	return defaultFrom, now
}

// normalizeToBeginOfDay normalizes time to beginning of the UTC day (00:00:00).
func normalizeToBeginOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeToEndOfDay normalizes time to end of the UTC day (23:59:59).
func normalizeToEndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// parseDateTime parses date string with flexible format support.
func parseDateTime(dateStr string) (time.Time, error) {
	// Try RFC3339 format first (with time)
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t, nil
	}

	// Try date-only format (YYYY-MM-DD)
	if t, err := time.Parse(DayKeyLayout, dateStr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date")
}

// Pagination represents pagination parameters value object.
type Pagination struct {
	limit  int
	offset int
}

// NewPagination creates a new pagination value object.
func NewPagination(limitStr, offsetStr string) (*Pagination, error) {
	limit := 100 // Default value
	offset := 0  // Default value

	// Process limit parameter
	if limitStr != "" {
		parsedLimit, err := parseInt(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit parameter: must be a positive integer")
		}
		if parsedLimit <= 0 {
			return nil, fmt.Errorf("limit must be greater than 0")
		}
		if parsedLimit > 1000 { // Set upper limit
			parsedLimit = 1000
		}
		limit = parsedLimit
	}

	// Process offset parameter
	if offsetStr != "" {
		parsedOffset, err := parseInt(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
		if parsedOffset < 0 {
			return nil, fmt.Errorf("offset must be non-negative")
		}
		offset = parsedOffset
	}

	return &Pagination{limit: limit, offset: offset}, nil
}

// Limit returns the limit value.
func (p *Pagination) Limit() int {
	return p.limit
}

// Offset returns the offset value.
func (p *Pagination) Offset() int {
	return p.offset
}

// parseInt converts a string to an integer and handles errors.
func parseInt(s string) (int, error) {
	var value int
	var err error
	if _, err = fmt.Sscanf(s, "%d", &value); err != nil {
		return 0, err
	}
	return value, nil
}
