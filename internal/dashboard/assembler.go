// Package dashboard はページ描画に必要なデータの集約を提供する。
// 天気・ニュース・格言・カレンダーの各取得を並行に実行し、
// どの枝の失敗も他の枝やページ全体の描画を妨げないようにする。
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/mirrordash/internal/calendar"
	"github.com/hitoshi/mirrordash/internal/metrics"
	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/repository"
)

// WeatherFetcher は天気データの取得インターフェース。
type WeatherFetcher interface {
	GetWeather(ctx context.Context, location string) *model.Weather
}

// NewsFetcher はニュース記事の取得インターフェース。
type NewsFetcher interface {
	GetNews(ctx context.Context, location string) *model.News
}

// QuotePicker は格言の選択インターフェース。
type QuotePicker interface {
	RandomQuote(ctx context.Context) *model.Quote
}

// PreferenceResolver はユーザー設定の解決インターフェース。
type PreferenceResolver interface {
	Resolve(ctx context.Context) *model.Preference
}

// Assembler はダッシュボードの描画コンテキストを組み立てる。
type Assembler struct {
	weather   WeatherFetcher
	news      NewsFetcher
	quotes    QuotePicker
	prefs     PreferenceResolver
	events    repository.EventRepository
	formatter *calendar.Formatter
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       func() time.Time // テスト用に現在時刻を差し替え可能
}

// NewAssembler はAssemblerの新しいインスタンスを生成する。
func NewAssembler(
	weather WeatherFetcher,
	news NewsFetcher,
	quotes QuotePicker,
	prefs PreferenceResolver,
	events repository.EventRepository,
	formatter *calendar.Formatter,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *Assembler {
	return &Assembler{
		weather:   weather,
		news:      news,
		quotes:    quotes,
		prefs:     prefs,
		events:    events,
		formatter: formatter,
		logger:    logger,
		metrics:   recorder,
		now:       time.Now,
	}
}

// Assemble はページ描画用の集約コンテキストを組み立てる。
// まずユーザー設定を解決して地点を決め、天気・ニュース・格言・
// イベント一覧を並行に取得する。各枝は内部でデグレードするため、
// この関数がエラーを返すことはない。
func (a *Assembler) Assemble(ctx context.Context) *model.DashboardContext {
	pref := a.prefs.Resolve(ctx)

	dc := &model.DashboardContext{
		DateTime: a.dateTime(),
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		dc.Weather = a.weather.GetWeather(ctx, pref.Location)
	}()

	go func() {
		defer wg.Done()
		dc.News = a.news.GetNews(ctx, pref.Location)
	}()

	go func() {
		defer wg.Done()
		dc.Quote = a.quotes.RandomQuote(ctx)
	}()

	go func() {
		defer wg.Done()
		dc.Events = a.listEvents(ctx)
	}()

	wg.Wait()

	a.metrics.RecordDashboardRender()
	return dc
}

// listEvents はイベント一覧を取得して表示用に整形する。
// ストアの失敗時は空の一覧を返す（ページ全体は描画を続ける）。
func (a *Assembler) listEvents(ctx context.Context) []model.DisplayEvent {
	events, err := a.events.ListAll(ctx)
	if err != nil {
		a.logger.Error("イベント一覧の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return []model.DisplayEvent{}
	}
	return a.formatter.FormatUpcoming(events)
}

// dateTime は表示用の現在日時を返す。
func (a *Assembler) dateTime() model.DateTimeInfo {
	now := a.now()
	return model.DateTimeInfo{
		Date: now.Format("Monday, January 2, 2006"),
		Time: now.Format("15:04"),
	}
}
