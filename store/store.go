// Package store は、カレンダーの保持と入力ソースからの読み込み機能を提供します。
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
)

// Entry はストアに保持されるカレンダー1件分です。
type Entry struct {
	Meta     model.Calendar
	Calendar *heatmap.Calendar
}

// Store はカレンダーの保存と取得を行うインターフェースです。
type Store interface {
	// CreateCalendar は新しいカレンダーを登録します。
	CreateCalendar(ctx context.Context, meta *model.Calendar, cal *heatmap.Calendar) error
	// GetCalendar は指定されたIDのカレンダーを取得します。
	GetCalendar(ctx context.Context, id uuid.UUID) (*Entry, error)
	// ListCalendars は作成順にカレンダーのメタデータを取得します。
	ListCalendars(ctx context.Context, pagination *model.Pagination) ([]*model.Calendar, error)
	// ImportCalendar は指定されたカレンダーにペイロードを再インポートします。
	ImportCalendar(ctx context.Context, id uuid.UUID, payload []byte) (bool, error)
	// DeleteCalendar は指定されたIDのカレンダーを削除します。
	DeleteCalendar(ctx context.Context, id uuid.UUID) error
	// Close はストアを閉じます。
	Close() error
}

// Source は提出カレンダーのペイロードを読み込む入力元です。
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}
