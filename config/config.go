// Package config はアプリケーション設定を管理します。
package config

import (
	"os"
	"strings"

	"github.com/stsysd/bathtiles/model"
)

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	// HTTPサーバーのポート
	Port string

	// API認証キー
	APIKey string

	// 描画スタイルのYAMLファイル（任意）
	StyleFile string

	// Kafkaブローカーのアドレス。空の場合はインジェストを起動しない
	KafkaBrokers []string

	// 再インポートメッセージを受け取るトピック
	KafkaTopic string

	// コンシューマーグループID
	KafkaGroup string
}

// NewConfig は環境変数から設定を読み込み、Configインスタンスを生成します。
func NewConfig() (*Config, error) {
	// ポートの設定
	port := os.Getenv("BATHTILES_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	// API認証キーの設定
	apiKey := os.Getenv("BATHTILES_API_KEY")
	if apiKey == "" {
		// デフォルトキーは設定しない
		return nil, model.NewInvalidConfigurationError("BATHTILES_API_KEY", "is not set")
	}

	topic := os.Getenv("BATHTILES_KAFKA_TOPIC")
	if topic == "" {
		topic = "submission-calendars"
	}
	group := os.Getenv("BATHTILES_KAFKA_GROUP")
	if group == "" {
		group = "bathtiles"
	}

	return &Config{
		Port:         port,
		APIKey:       apiKey,
		StyleFile:    os.Getenv("BATHTILES_STYLE_FILE"),
		KafkaBrokers: splitList(os.Getenv("BATHTILES_KAFKA_BROKERS")),
		KafkaTopic:   topic,
		KafkaGroup:   group,
	}, nil
}

// IngestEnabled はKafkaインジェストが設定されているかを返します。
func (c *Config) IngestEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// splitList はカンマ区切りの文字列を空要素を除いて分割します。
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
