package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/mirrordash/internal/metrics"
	"github.com/hitoshi/mirrordash/internal/middleware"
	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/news"
	"github.com/hitoshi/mirrordash/internal/weather"
	"github.com/hitoshi/mirrordash/internal/web"
)

// fakeAssembler は固定のダッシュボードコンテキストを返す。
type fakeAssembler struct{}

func (fakeAssembler) Assemble(ctx context.Context) *model.DashboardContext {
	return &model.DashboardContext{
		Weather: weather.DefaultWeather("Tokyo", "missing_api_key"),
		News:    news.DefaultNews("missing_api_key"),
		DateTime: model.DateTimeInfo{
			Date: "Tuesday, September 1, 2026",
			Time: "07:30",
		},
		Quote: &model.Quote{Text: "t", Author: "a"},
		Events: []model.DisplayEvent{
			{ID: "e1", Title: "Meeting", DateLabel: "Today"},
		},
	}
}

type fakePinger struct{ err error }

func (f *fakePinger) PingContext(ctx context.Context) error { return f.err }

func newTestRouter(t *testing.T, db *fakePinger) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("レンダラーの生成に失敗: %v", err)
	}

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	registry := prometheus.NewRegistry()

	return NewRouter(&RouterDeps{
		Logger:          logger,
		RateLimiter:     rl,
		PageHandler:     NewPageHandler(fakeAssembler{}, renderer, logger),
		EventHandler:    NewEventHandler(&fakeEventRepo{events: map[string]*model.CalendarEvent{}}, logger),
		LocationHandler: NewLocationHandler(&fakeChecker{}, &fakeGeo{location: "X"}, &fakePrefStore{}, logger),
		DB:              db,
		MetricsHandler:  metrics.Handler(registry),
	})
}

// 主要ページが描画され、セキュリティヘッダーが付与されることを検証
func TestRouter_PagesRender(t *testing.T) {
	router := newTestRouter(t, &fakePinger{})

	for _, path := range []string{"/", "/calendar-events"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Tokyo") && path == "/" {
			t.Errorf("%s: ページに地点名が含まれるべき", path)
		}
		if rec.Header().Get("X-Frame-Options") != "DENY" {
			t.Errorf("%s: セキュリティヘッダーが付与されるべき", path)
		}
	}
}

// ダッシュボードに主要な要素（天気・イベント・格言）が描画されることを検証
func TestRouter_IndexContent(t *testing.T) {
	router := newTestRouter(t, &fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	for _, want := range []string{"Tokyo", "Meeting", "Clouds", "07:30"} {
		if !strings.Contains(body, want) {
			t.Errorf("ページに %q が含まれるべき", want)
		}
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_HealthUnavailable(t *testing.T) {
	router := newTestRouter(t, &fakePinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, &fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, &fakePinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
