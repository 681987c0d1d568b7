// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Calendar はサーバー上で保持される提出カレンダーのメタデータです。
type Calendar struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`        // 表示名
	Description string    `json:"description"` // カレンダーの説明
	CreatedAt   time.Time `json:"created_at"`  // 作成日時
	UpdatedAt   time.Time `json:"updated_at"`  // 最終インポート日時
}

// NewCalendar は新しいCalendarインスタンスを作成します。
func NewCalendar(name, description string) (*Calendar, error) {
	now := time.Now()
	c := &Calendar{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Touch は更新日時を現在時刻にします。
func (c *Calendar) Touch(now time.Time) {
	c.UpdatedAt = now
}

// Validate はカレンダーのデータバリデーションを行います。
func (c *Calendar) Validate() error {
	if c.ID == uuid.Nil {
		return errors.New("id is required")
	}
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	if c.UpdatedAt.IsZero() {
		return errors.New("updated_at is required")
	}
	return nil
}
