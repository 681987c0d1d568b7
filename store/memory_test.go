package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
)

func newTestCalendar(t *testing.T, payload string) *heatmap.Calendar {
	t.Helper()
	opts := heatmap.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC) }
	cal, err := heatmap.NewCalendar([]byte(payload), opts)
	if err != nil {
		t.Fatalf("Failed to create calendar: %v", err)
	}
	return cal
}

func createTestEntry(t *testing.T, s *MemoryStore, name string) *model.Calendar {
	t.Helper()
	meta, err := model.NewCalendar(name, "")
	if err != nil {
		t.Fatalf("Failed to create calendar model: %v", err)
	}
	if err := s.CreateCalendar(context.Background(), meta, newTestCalendar(t, `{"submissionCalendar": "{\"1609459200\":3}"}`)); err != nil {
		t.Fatalf("Failed to create calendar: %v", err)
	}
	return meta
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	meta := createTestEntry(t, s, "leetcode")

	got, err := s.GetCalendar(ctx, meta.ID)
	if err != nil {
		t.Fatalf("Failed to get calendar: %v", err)
	}
	if got.Meta.ID != meta.ID || got.Meta.Name != "leetcode" {
		t.Errorf("unexpected metadata: %+v", got.Meta)
	}
	if got.Calendar.Table().Count("2021-01-01") != 3 {
		t.Errorf("unexpected table: %+v", got.Calendar.Table())
	}

	// 同じIDでの登録はエラー
	if err := s.CreateCalendar(ctx, meta, got.Calendar); err == nil {
		t.Error("Expected error for duplicate id")
	}

	// 返されたメタデータを変更してもストアには影響しない
	got.Meta.Name = "changed"
	again, _ := s.GetCalendar(ctx, meta.ID)
	if again.Meta.Name != "leetcode" {
		t.Errorf("store metadata was modified through returned entry: %s", again.Meta.Name)
	}
}

func TestMemoryStore_CreateInvalid(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.CreateCalendar(ctx, &model.Calendar{Name: "x"}, newTestCalendar(t, "")); err == nil {
		t.Error("Expected validation error for missing id")
	}
	meta, _ := model.NewCalendar("x", "")
	if err := s.CreateCalendar(ctx, meta, nil); err == nil {
		t.Error("Expected error for nil calendar")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	if _, err := s.GetCalendar(ctx, id); !errors.Is(err, model.ErrCalendarNotFound) {
		t.Errorf("GetCalendar: expected ErrCalendarNotFound, got %v", err)
	}
	if _, err := s.ImportCalendar(ctx, id, []byte(`{}`)); !errors.Is(err, model.ErrCalendarNotFound) {
		t.Errorf("ImportCalendar: expected ErrCalendarNotFound, got %v", err)
	}
	if err := s.DeleteCalendar(ctx, id); !errors.Is(err, model.ErrCalendarNotFound) {
		t.Errorf("DeleteCalendar: expected ErrCalendarNotFound, got %v", err)
	}
}

func TestMemoryStore_ImportCalendar(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	meta := createTestEntry(t, s, "import")

	later := meta.UpdatedAt.Add(time.Hour)
	s.now = func() time.Time { return later }

	tests := []struct {
		name        string
		payload     string
		wantChanged bool
		wantErr     bool
		wantCount   int
		wantTouched bool
	}{
		{name: "empty payload is a no-op", payload: "", wantCount: 3},
		{name: "malformed payload keeps table", payload: `{"submissionCalendar": "{\"1609459200\":-1}"}`, wantErr: true, wantCount: 3},
		{name: "re-import replaces table", payload: `{"submissionCalendar": "{\"1609459200\":8}"}`, wantChanged: true, wantCount: 8, wantTouched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := s.ImportCalendar(ctx, meta.ID, []byte(tt.payload))
			if tt.wantErr {
				if !model.IsMalformedInput(err) {
					t.Errorf("Expected MalformedInputError, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("Expected changed=%v, got %v", tt.wantChanged, changed)
			}

			got, err := s.GetCalendar(ctx, meta.ID)
			if err != nil {
				t.Fatalf("Failed to get calendar: %v", err)
			}
			if c := got.Calendar.Table().Count("2021-01-01"); c != tt.wantCount {
				t.Errorf("Expected count %d, got %d", tt.wantCount, c)
			}
			if touched := got.Meta.UpdatedAt.Equal(later); touched != tt.wantTouched {
				t.Errorf("Expected touched=%v, updated_at=%v", tt.wantTouched, got.Meta.UpdatedAt)
			}
		})
	}
}

func TestMemoryStore_ListAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"a", "b", "c", "d"} {
		ids = append(ids, createTestEntry(t, s, name).ID)
	}

	tests := []struct {
		name   string
		limit  string
		offset string
		want   []string
	}{
		{name: "all", want: []string{"a", "b", "c", "d"}},
		{name: "limit", limit: "2", want: []string{"a", "b"}},
		{name: "offset", limit: "2", offset: "3", want: []string{"d"}},
		{name: "beyond", offset: "10", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := model.NewPagination(tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("Failed to create pagination: %v", err)
			}
			got, err := s.ListCalendars(ctx, p)
			if err != nil {
				t.Fatalf("Failed to list calendars: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d calendars, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("Expected %s at %d, got %s", tt.want[i], i, got[i].Name)
				}
			}
		})
	}

	if err := s.DeleteCalendar(ctx, ids[1]); err != nil {
		t.Fatalf("Failed to delete calendar: %v", err)
	}
	got, err := s.ListCalendars(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to list calendars: %v", err)
	}
	if len(got) != 3 || got[0].Name != "a" || got[1].Name != "c" || got[2].Name != "d" {
		t.Errorf("unexpected calendars after delete: %v", got)
	}
	if _, err := s.GetCalendar(ctx, ids[1]); !errors.Is(err, model.ErrCalendarNotFound) {
		t.Errorf("Expected deleted calendar to be gone, got %v", err)
	}
}
