package model

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDayKey(t *testing.T) {
	tests := []struct {
		name  string
		epoch int64
		want  DayKey
	}{
		{name: "epoch", epoch: 0, want: "1970-01-01"},
		{name: "2021-01-01 midnight", epoch: 1609459200, want: "2021-01-01"},
		{name: "last second of 2020", epoch: 1609459199, want: "2020-12-31"},
		{name: "2021-01-02", epoch: 1609545600, want: "2021-01-02"},
		{name: "leap day", epoch: 1709164800, want: "2024-02-29"},
		{name: "before epoch", epoch: -1, want: "1969-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeDayKey(tt.epoch); got != tt.want {
				t.Errorf("EncodeDayKey(%d) = %s, want %s", tt.epoch, got, tt.want)
			}
		})
	}
}

// ローカルタイムゾーンに依存しないことを確認
func TestEncodeDayKey_IgnoresLocalZone(t *testing.T) {
	orig := time.Local
	t.Cleanup(func() { time.Local = orig })

	time.Local = time.FixedZone("UTC-10", -10*60*60)
	if got := EncodeDayKey(1609459200); got != "2021-01-01" {
		t.Errorf("Expected 2021-01-01 regardless of local zone, got %s", got)
	}
}

func TestDayKeyRoundTrip(t *testing.T) {
	for epoch := int64(1577836800); epoch < 1577836800+3*366*86400; epoch += 86400/3 + 7 {
		key := EncodeDayKey(epoch)
		y, m, d, err := key.Decode()
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", key, err)
		}
		wy, wm, wd := time.Unix(epoch, 0).UTC().Date()
		if y != wy || m != wm || d != wd {
			t.Fatalf("epoch %d: decoded %d-%d-%d, want %d-%d-%d", epoch, y, m, d, wy, wm, wd)
		}
	}
}

func TestParseDayKey(t *testing.T) {
	if _, err := ParseDayKey("2021-01-01"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, s := range []string{"", "2021-1-1", "2021-02-30", "20210101", "2021-01-01T00:00:00Z"} {
		if _, err := ParseDayKey(s); err == nil {
			t.Errorf("Expected error for %q", s)
		}
	}
}

func TestToday(t *testing.T) {
	// JSTの深夜0時過ぎはUTCではまだ前日
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 1, 1, 3, 0, 0, 0, jst)
	if got := Today(now); got != "2024-12-31" {
		t.Errorf("Expected 2024-12-31, got %s", got)
	}
}

func TestDayKeyYear(t *testing.T) {
	if got := DayKey("2021-06-30").Year(); got != 2021 {
		t.Errorf("Expected 2021, got %d", got)
	}
	if got := DayKey("garbage").Year(); got != 0 {
		t.Errorf("Expected 0 for malformed key, got %d", got)
	}
}

func TestErrors(t *testing.T) {
	cause := errors.New("boom")
	err := NewMalformedInputError("123", "count is not a number", cause)
	if !IsMalformedInput(err) {
		t.Error("Expected IsMalformedInput to be true")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to unwrap to its cause")
	}
	if got := err.Error(); got != `malformed input at "123": count is not a number: boom` {
		t.Errorf("unexpected message: %s", got)
	}

	cfgErr := NewInvalidConfigurationError("buckets", "must be at least 2")
	if !IsInvalidConfiguration(cfgErr) {
		t.Error("Expected IsInvalidConfiguration to be true")
	}
	if IsMalformedInput(cfgErr) {
		t.Error("configuration error must not be reported as malformed input")
	}
}
