package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
)

// DefaultSQLiteQuery は (エポック秒, 件数) の行を返すデフォルトのクエリです。
const DefaultSQLiteQuery = `SELECT ts, SUM(count) FROM submissions GROUP BY ts`

// SQLiteSource はSQLiteデータベースから提出件数を読み込むSourceです。
// データベースは読み取り専用で開きます。
type SQLiteSource struct {
	Path  string // データベースファイルのパス
	Query string // 空の場合はDefaultSQLiteQuery
}

// Load はクエリ結果をエンコード済みのペイロードとして返します。
func (s *SQLiteSource) Load(ctx context.Context) ([]byte, error) {
	counts, err := s.LoadCounts(ctx)
	if err != nil {
		return nil, err
	}
	return heatmap.EncodePayload(counts)
}

// LoadCounts はクエリ結果をエポック秒ごとの件数として返します。
// 同じエポック秒が複数行ある場合は合算します。
func (s *SQLiteSource) LoadCounts(ctx context.Context) (map[int64]int, error) {
	// 存在しないファイルをmode=roで開くと分かりにくいエラーになるため事前に確認
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", s.Path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	defer conn.Close()

	query := s.Query
	if query == "" {
		query = DefaultSQLiteQuery
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	if len(cols) != 2 {
		return nil, model.NewInvalidConfigurationError("query", fmt.Sprintf("must return 2 columns (epoch seconds, count), got %d", len(cols)))
	}

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			ts    int64
			count sql.NullInt64
		)
		if err := rows.Scan(&ts, &count); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		if count.Int64 < 0 {
			return nil, model.NewMalformedInputError(fmt.Sprint(ts), "count must not be negative", nil)
		}
		counts[ts] += int(count.Int64)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission rows: %w", err)
	}
	return counts, nil
}
