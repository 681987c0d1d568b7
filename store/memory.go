package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
)

// MemoryStore はプロセスのメモリ上にカレンダーを保持するStoreの実装です。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
	order   []uuid.UUID // 作成順
	now     func() time.Time
}

// NewMemoryStore は新しいMemoryStoreを作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[uuid.UUID]*Entry),
		now:     time.Now,
	}
}

// CreateCalendar は新しいカレンダーを登録します。
func (s *MemoryStore) CreateCalendar(ctx context.Context, meta *model.Calendar, cal *heatmap.Calendar) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	if cal == nil {
		return fmt.Errorf("calendar is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[meta.ID]; exists {
		return fmt.Errorf("calendar already exists: %s", meta.ID)
	}
	s.entries[meta.ID] = &Entry{Meta: *meta, Calendar: cal}
	s.order = append(s.order, meta.ID)
	return nil
}

// GetCalendar は指定されたIDのカレンダーを取得します。
// 返されるメタデータはコピーです。
func (s *MemoryStore) GetCalendar(ctx context.Context, id uuid.UUID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, model.ErrCalendarNotFound
	}
	return &Entry{Meta: e.Meta, Calendar: e.Calendar}, nil
}

// ListCalendars は作成順にカレンダーのメタデータを取得します。
func (s *MemoryStore) ListCalendars(ctx context.Context, pagination *model.Pagination) ([]*model.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offset, limit := 0, len(s.order)
	if pagination != nil {
		offset, limit = pagination.Offset(), pagination.Limit()
	}
	if offset >= len(s.order) {
		return []*model.Calendar{}, nil
	}
	end := min(offset+limit, len(s.order))

	calendars := make([]*model.Calendar, 0, end-offset)
	for _, id := range s.order[offset:end] {
		meta := s.entries[id].Meta
		calendars = append(calendars, &meta)
	}
	return calendars, nil
}

// ImportCalendar は指定されたカレンダーにペイロードを再インポートします。
// 空のペイロードは何もせずfalseを返します。
func (s *MemoryStore) ImportCalendar(ctx context.Context, id uuid.UUID, payload []byte) (bool, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return false, model.ErrCalendarNotFound
	}

	// Calendar自体がテーブルを原子的に差し替えるため、ロック外でインポートする
	changed, err := e.Calendar.Import(payload)
	if err != nil || !changed {
		return changed, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[id]; ok {
		cur.Meta.Touch(s.now())
	}
	return true, nil
}

// DeleteCalendar は指定されたIDのカレンダーを削除します。
func (s *MemoryStore) DeleteCalendar(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return model.ErrCalendarNotFound
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close はストアを閉じます。保持しているカレンダーは破棄されます。
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[uuid.UUID]*Entry)
	s.order = nil
	return nil
}
