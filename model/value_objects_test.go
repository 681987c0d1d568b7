package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestNewPagination tests the NewPagination function
func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		limitStr       string
		offsetStr      string
		expectError    bool
		expectedLimit  int
		expectedOffset int
		description    string
	}{
		{
			name:           "Valid limit and offset",
			limitStr:       "50",
			offsetStr:      "10",
			expectedLimit:  50,
			expectedOffset: 10,
			description:    "正常なlimitとoffsetで成功すること",
		},
		{
			name:          "Default limit with empty strings",
			expectedLimit: 100,
			description:   "空文字列の場合、デフォルトのlimit=100が設定されること",
		},
		{
			name:          "Limit exceeds maximum",
			limitStr:      "2000",
			expectedLimit: 1000,
			description:   "limitが1000を超える場合、1000に制限されること",
		},
		{
			name:        "Invalid limit (non-numeric)",
			limitStr:    "abc",
			expectError: true,
			description: "limitが数値でない場合、エラーになること",
		},
		{
			name:        "Invalid limit (zero)",
			limitStr:    "0",
			expectError: true,
			description: "limitが0の場合、エラーになること",
		},
		{
			name:        "Invalid offset (negative)",
			offsetStr:   "-1",
			expectError: true,
			description: "offsetが負の数の場合、エラーになること",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pagination, err := NewPagination(tt.limitStr, tt.offsetStr)

			if tt.expectError {
				if err == nil {
					t.Errorf("%s: expected error but got nil", tt.description)
				}
				return
			}

			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.description, err)
				return
			}

			if pagination.Limit() != tt.expectedLimit {
				t.Errorf("%s: expected limit %d, got %d", tt.description, tt.expectedLimit, pagination.Limit())
			}
			if pagination.Offset() != tt.expectedOffset {
				t.Errorf("%s: expected offset %d, got %d", tt.description, tt.expectedOffset, pagination.Offset())
			}
		})
	}
}

func TestNewCalendarID(t *testing.T) {
	id := uuid.New()

	got, err := NewCalendarID(id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UUID() != id {
		t.Errorf("Expected %s, got %s", id, got.UUID())
	}

	if _, err := NewCalendarID(""); err == nil {
		t.Error("Expected error for empty ID")
	}
	if _, err := NewCalendarID("not-a-uuid"); err == nil {
		t.Error("Expected error for invalid UUID")
	}
}

func TestNewCalendarName(t *testing.T) {
	name, err := NewCalendarName("  leetcode  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.String() != "leetcode" {
		t.Errorf("Expected trimmed name, got %q", name.String())
	}

	// 空の場合はuntitledになる
	name, err = NewCalendarName("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.String() != "untitled" {
		t.Errorf("Expected untitled, got %q", name.String())
	}
}

func TestNewDateRange(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC) // 水曜日

	t.Run("defaults", func(t *testing.T) {
		dr, err := NewDateRange("", "", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 直近の日曜日(2025-06-15)から51週前
		wantFrom := time.Date(2024, 6, 23, 0, 0, 0, 0, time.UTC)
		if !dr.From().Equal(wantFrom) {
			t.Errorf("Expected from %v, got %v", wantFrom, dr.From())
		}
		wantTo := time.Date(2025, 6, 18, 23, 59, 59, 0, time.UTC)
		if !dr.To().Equal(wantTo) {
			t.Errorf("Expected to %v, got %v", wantTo, dr.To())
		}
	})

	t.Run("explicit", func(t *testing.T) {
		dr, err := NewDateRange("2025-01-01", "2025-03-01T10:00:00Z", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := DayKeyOf(dr.From()); got != "2025-01-01" {
			t.Errorf("Expected from 2025-01-01, got %s", got)
		}
		if got := DayKeyOf(dr.To()); got != "2025-03-01" {
			t.Errorf("Expected to 2025-03-01, got %s", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := NewDateRange("2025/01/01", "", now); err == nil {
			t.Error("Expected error for invalid from")
		}
		if _, err := NewDateRange("2025-03-01", "2025-01-01", now); err == nil {
			t.Error("Expected error for reversed range")
		}
	})
}
