package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/web"
)

// DashboardAssembler はページハンドラーが必要とする集約インターフェース。
type DashboardAssembler interface {
	// Assemble はページ描画用の集約コンテキストを組み立てる。
	Assemble(ctx context.Context) *model.DashboardContext
}

// PageHandler はダッシュボードページのHTTPハンドラー。
type PageHandler struct {
	assembler DashboardAssembler
	renderer  *web.Renderer
	logger    *slog.Logger
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(assembler DashboardAssembler, renderer *web.Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		assembler: assembler,
		renderer:  renderer,
		logger:    logger,
	}
}

// Index はメインのダッシュボードページを描画する。
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "index.html")
}

// Calendar はカレンダー管理ページを描画する。
// GET /calendar-events
func (h *PageHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "calendar.html")
}

// renderPage は集約コンテキストを組み立ててテンプレートを描画する。
// 各データ取得は内部でデグレードするため、描画自体の失敗以外で5xxにはならない。
func (h *PageHandler) renderPage(w http.ResponseWriter, r *http.Request, template string) {
	flash := popFlash(w, r)
	dc := h.assembler.Assemble(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, template, &web.PageData{Dashboard: dc, Flash: flash}); err != nil {
		h.logger.Error("ページの描画に失敗しました",
			slog.String("template", template),
			slog.String("error", err.Error()),
		)
	}
}
