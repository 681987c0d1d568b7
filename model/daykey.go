// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"fmt"
	"time"
)

// DayKeyLayout is the canonical layout of a DayKey.
const DayKeyLayout = "2006-01-02"

// DayKey identifies one UTC calendar day as "YYYY-MM-DD".
// For years 0000-9999 lexical order equals chronological order.
type DayKey string

// EncodeDayKey converts Unix epoch seconds to the UTC day containing them.
func EncodeDayKey(epochSeconds int64) DayKey {
	return DayKeyOf(time.Unix(epochSeconds, 0))
}

// DayKeyOf returns the UTC day of t.
func DayKeyOf(t time.Time) DayKey {
	return DayKey(t.UTC().Format(DayKeyLayout))
}

// Today returns the UTC day of now.
func Today(now time.Time) DayKey {
	return DayKeyOf(now)
}

// ParseDayKey validates s and returns it as a DayKey.
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(DayKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day key %q. Use YYYY-MM-DD format", s)
	}
	// 非ゼロ埋めなどの表記ゆれを拒否
	if t.Format(DayKeyLayout) != s {
		return "", fmt.Errorf("invalid day key %q. Use YYYY-MM-DD format", s)
	}
	return DayKey(s), nil
}

// Time returns midnight UTC of the day.
func (k DayKey) Time() (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyLayout, string(k), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", string(k), err)
	}
	return t, nil
}

// Decode splits the key into its date fields.
func (k DayKey) Decode() (year int, month time.Month, day int, err error) {
	t, err := k.Time()
	if err != nil {
		return 0, 0, 0, err
	}
	year, month, day = t.Date()
	return year, month, day, nil
}

// Year returns the year of the key, or 0 when the key is malformed.
func (k DayKey) Year() int {
	y, _, _, err := k.Decode()
	if err != nil {
		return 0
	}
	return y
}

func (k DayKey) String() string {
	return string(k)
}
