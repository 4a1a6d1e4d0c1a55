// Package model はドメインモデルを定義する。
package model

import "time"

// DateLayout はイベント日付のISO-8601形式。
const DateLayout = "2006-01-02"

// TimeLayout はイベント時刻のISO-8601形式。
const TimeLayout = "15:04"

// Priority はイベントの優先度を表す。
type Priority string

const (
	// PriorityLow は低優先度。
	PriorityLow Priority = "low"
	// PriorityMedium は中優先度（デフォルト）。
	PriorityMedium Priority = "medium"
	// PriorityHigh は高優先度。
	PriorityHigh Priority = "high"
)

// IsValid は優先度が定義済みの値かを返す。
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// CalendarEvent はカレンダーイベントのドキュメントを表す。
// 日付・時刻はストア上でISO-8601文字列として保持されるため、
// ここでも文字列のまま保持し、解釈はフォーマッタが行う。
// AllDayがtrueの場合、StartTime/EndTimeは空でなければならない
// （ストアではなくフォーマッタと保存ハンドラーが強制する）。
type CalendarEvent struct {
	ID          string   `json:"-"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"start_date"`
	StartTime   string   `json:"start_time,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	AllDay      bool     `json:"all_day"`
	Location    string   `json:"location,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Reminder    bool     `json:"reminder"`
}

// EffectivePriority はデフォルト適用後の優先度を返す。
func (e *CalendarEvent) EffectivePriority() Priority {
	if e.Priority.IsValid() {
		return e.Priority
	}
	return PriorityMedium
}

// ParseStartDate はStartDateをtime.Timeに解釈する。
func (e *CalendarEvent) ParseStartDate() (time.Time, error) {
	return time.Parse(DateLayout, e.StartDate)
}

// DisplayEvent は表示用に整形されたカレンダーイベントを表す。
// TimeLabelは時刻なしイベントの場合nilになる。
type DisplayEvent struct {
	ID          string
	Title       string
	DateLabel   string
	TimeLabel   *string
	Description string
	IsToday     bool
	IsPast      bool
	Location    string
	Priority    Priority
	Reminder    bool
	DaysUntil   int
	AllDay      bool
}
