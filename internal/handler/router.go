package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mirrordash/internal/middleware"
)

// Pinger はデータストアの疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter

	// ハンドラー
	PageHandler     *PageHandler
	EventHandler    *EventHandler
	LocationHandler *LocationHandler

	// 運用エンドポイント
	DB             Pinger
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → RateLimit
//
// ヘルスチェックとメトリクスはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	// --- 運用エンドポイント ---

	r.Get("/health", newHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// --- ダッシュボードのルート ---

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		// ページ
		r.Get("/", deps.PageHandler.Index)
		r.Get("/calendar-events", deps.PageHandler.Calendar)

		// カレンダーイベント
		r.Route("/event", func(r chi.Router) {
			r.Post("/save", deps.EventHandler.SaveEvent)
			r.Get("/{id}", deps.EventHandler.GetEvent)
			r.Post("/{id}/delete", deps.EventHandler.DeleteEvent)
		})

		// 地点設定
		r.Post("/update-location", deps.LocationHandler.UpdateLocation)
		r.Get("/get-location-by-coords", deps.LocationHandler.GetLocationByCoords)
	})

	return r
}

// newHealthHandler はデータストアの疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
