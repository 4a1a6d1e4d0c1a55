package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, calendar, location, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeInvalidEventID     = "INVALID_EVENT_ID"
	ErrCodeInvalidEventData   = "INVALID_EVENT_DATA"
	ErrCodeMissingCoordinates = "MISSING_COORDINATES"
	ErrCodeLocationNotFound   = "LOCATION_NOT_FOUND"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
)

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %s", eventID),
		Category: "calendar",
		Action:   "イベントIDを確認してください。",
	}
}

// NewInvalidEventIDError は不正なイベントID形式のエラーを生成する。
func NewInvalidEventIDError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEventID,
		Message:  fmt.Sprintf("イベントIDの形式が不正です: %s", eventID),
		Category: "validation",
		Action:   "イベントIDを確認してください。",
	}
}

// NewInvalidEventDataError はイベントデータ不備のエラーを生成する。
func NewInvalidEventDataError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEventData,
		Message:  fmt.Sprintf("イベントデータが不正です: %s", reason),
		Category: "validation",
		Action:   "タイトルと開始日を入力してください。",
	}
}

// NewMissingCoordinatesError は座標未指定エラーを生成する。
func NewMissingCoordinatesError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingCoordinates,
		Message:  "緯度・経度が指定されていません。",
		Category: "validation",
		Action:   "latとlonのクエリパラメータを指定してください。",
	}
}

// NewLocationNotFoundError は地名未検出エラーを生成する。
func NewLocationNotFoundError(location string) *APIError {
	return &APIError{
		Code:     ErrCodeLocationNotFound,
		Message:  fmt.Sprintf("指定された地点が見つかりません: %s", location),
		Category: "location",
		Action:   "地名の綴りを確認してください。",
	}
}

// NewStoreUnavailableError はストア障害エラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データストアへのアクセスに失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
