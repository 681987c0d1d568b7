// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"fmt"
)

// センチネルエラー - カレンダーが見つからない場合
var ErrCalendarNotFound = errors.New("calendar not found")

// MalformedInputError は入力ペイロードを期待する形に解釈できない場合のエラーです。
type MalformedInputError struct {
	Key    string // 問題のあるタイムスタンプキー（外側の構造の場合は空）
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := "malformed input"
	if e.Key != "" {
		msg += fmt.Sprintf(" at %q", e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// NewMalformedInputError はMalformedInputErrorを生成するヘルパー関数
func NewMalformedInputError(key, reason string, err error) error {
	return &MalformedInputError{Key: key, Reason: reason, Err: err}
}

// IsMalformedInput はerrがMalformedInputErrorを含むかを判定します。
func IsMalformedInput(err error) bool {
	var e *MalformedInputError
	return errors.As(err, &e)
}

// InvalidConfigurationError は描画・集計設定が不正な場合のエラーです。
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// NewInvalidConfigurationError はInvalidConfigurationErrorを生成するヘルパー関数
func NewInvalidConfigurationError(field, reason string) error {
	return &InvalidConfigurationError{Field: field, Reason: reason}
}

// IsInvalidConfiguration はerrがInvalidConfigurationErrorを含むかを判定します。
func IsInvalidConfiguration(err error) bool {
	var e *InvalidConfigurationError
	return errors.As(err, &e)
}
