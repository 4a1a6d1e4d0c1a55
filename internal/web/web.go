// Package web は埋め込みHTMLテンプレートの描画を提供する。
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/hitoshi/mirrordash/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Flash はページ上部に一度だけ表示する通知バナーを表す。
type Flash struct {
	Level   string // success または error
	Message string
}

// PageData はテンプレートに渡すデータ一式。
type PageData struct {
	Dashboard *model.DashboardContext
	Flash     *Flash
}

// Renderer は埋め込みテンプレートの描画を行う。
type Renderer struct {
	templates *template.Template
}

// NewRenderer は全テンプレートをパースしたRendererを生成する。
// テンプレートの不備は起動時に検出する。
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートのパースに失敗しました: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render は指定テンプレートを描画する。
func (r *Renderer) Render(w io.Writer, name string, data *PageData) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("テンプレート %s の描画に失敗しました: %w", name, err)
	}
	return nil
}
