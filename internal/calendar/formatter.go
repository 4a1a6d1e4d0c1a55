// Package calendar はカレンダーイベントの表示整形を提供する。
// ストアから読み出した生のイベントを、表示ウィンドウの適用・日付ラベル化・
// 時刻の12時間表記化・表示順の決定まで行った表示用リストに変換する。
package calendar

import (
	"log/slog"
	"sort"
	"time"

	"github.com/hitoshi/mirrordash/internal/model"
)

// 表示ウィンドウ: [今日-1日, 今日+30日]。範囲外のイベントは一覧から落とす。
const (
	windowPastDays   = 1
	windowFutureDays = 30
)

// allDayLabel は終日イベントの時刻ラベル。
const allDayLabel = "All day"

// clockLayouts はストア上の時刻文字列として許容するレイアウト。
// 解釈できない時刻は「時刻なし」として扱い、一覧全体は失敗させない。
var clockLayouts = []string{"15:04", "15:04:05"}

// 同一日付内の表示順ランク。終日が先頭、時刻付きが続き、
// 終日でないのに時刻を持たないイベントは末尾に置く。
const (
	rankAllDay = iota
	rankTimed
	rankNoTime
)

// Formatter はイベントの表示整形を行う。
// nowは注入可能にしてテストで日付を固定できるようにする。
type Formatter struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewFormatter はFormatterを生成する。
func NewFormatter(logger *slog.Logger) *Formatter {
	return &Formatter{
		logger: logger,
		now:    time.Now,
	}
}

// WithClock は現在時刻の取得関数を差し替えたFormatterを返す（テスト用）。
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	return &Formatter{logger: f.logger, now: now}
}

// sortableEvent は表示イベントとその整列キーを束ねる。
type sortableEvent struct {
	display model.DisplayEvent
	date    time.Time
	rank    int
	minutes int
}

// FormatUpcoming は生のイベント列を表示用リストに変換する。
//
// 整列は (開始日, ランク, 時刻の分) の全順序で行う。ランクは
// 終日=0 < 時刻付き=1 < 時刻なし=2 で、同一日付では終日イベントが
// どの時刻付きイベントよりも先に並ぶ。
// 開始日や時刻が解釈できないイベントは個別に処理され、他のイベントの
// 整形を妨げない。
func (f *Formatter) FormatUpcoming(events []*model.CalendarEvent) []model.DisplayEvent {
	today := dateOnly(f.now())

	sortable := make([]sortableEvent, 0, len(events))
	for _, event := range events {
		startDate, err := event.ParseStartDate()
		if err != nil {
			f.logger.Warn("開始日を解釈できないイベントを読み飛ばします",
				slog.String("event_id", event.ID),
				slog.String("start_date", event.StartDate),
			)
			continue
		}
		startDate = dateOnly(startDate)

		daysUntil := daysBetween(today, startDate)
		if daysUntil < -windowPastDays || daysUntil > windowFutureDays {
			continue
		}

		rank := rankNoTime
		minutes := 0
		var timeLabel *string

		if event.AllDay {
			rank = rankAllDay
			label := allDayLabel
			timeLabel = &label
		} else if event.StartTime != "" {
			if clock, err := parseClock(event.StartTime); err == nil {
				rank = rankTimed
				minutes = clock.Hour()*60 + clock.Minute()
				label := clock.Format("03:04 PM")
				timeLabel = &label
			} else {
				// 不正な時刻文字列は「時刻なし」として扱う
				f.logger.Warn("時刻を解釈できないため時刻なしとして表示します",
					slog.String("event_id", event.ID),
					slog.String("start_time", event.StartTime),
				)
			}
		}

		sortable = append(sortable, sortableEvent{
			display: model.DisplayEvent{
				ID:          event.ID,
				Title:       event.Title,
				DateLabel:   dateLabel(startDate, today),
				TimeLabel:   timeLabel,
				Description: event.Description,
				IsToday:     daysUntil == 0,
				IsPast:      daysUntil < 0,
				Location:    event.Location,
				Priority:    event.EffectivePriority(),
				Reminder:    event.Reminder,
				DaysUntil:   daysUntil,
				AllDay:      event.AllDay,
			},
			date:    startDate,
			rank:    rank,
			minutes: minutes,
		})
	}

	sort.SliceStable(sortable, func(i, j int) bool {
		a, b := sortable[i], sortable[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.minutes < b.minutes
	})

	displays := make([]model.DisplayEvent, len(sortable))
	for i, s := range sortable {
		displays[i] = s.display
	}
	return displays
}

// dateLabel は開始日を表示ラベルに変換する。
func dateLabel(startDate, today time.Time) string {
	switch daysBetween(today, startDate) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return startDate.Format("January 02")
	}
}

// parseClock は時刻文字列を許容レイアウトで順に解釈する。
func parseClock(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range clockLayouts {
		clock, err := time.Parse(layout, value)
		if err == nil {
			return clock, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// dateOnly は時刻成分を落として日付のみにする。
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween はfromからtoまでの日数を返す（負になりうる）。
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
