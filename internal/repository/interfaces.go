// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/mirrordash/internal/model"
)

// EventRepository はカレンダーイベントドキュメントの永続化インターフェース。
// 日付・時刻のISO-8601文字列化は書き込み時、解釈は読み取り時にリポジトリが行う。
type EventRepository interface {
	// Create はイベントを作成し、ストアが割り当てた識別子を返す。
	// TitleとStartDateの存在のみ検証する。
	Create(ctx context.Context, event *model.CalendarEvent) (string, error)

	// FindByID は指定IDのイベントを取得する。
	// IDの形式が不正な場合およびドキュメントが存在しない場合はnilを返す
	// （不正なIDはストアへの問い合わせを行わずに弾く）。
	FindByID(ctx context.Context, id string) (*model.CalendarEvent, error)

	// Update は指定IDのイベントを上書き更新する。
	// IDの形式が不正な場合、または更新対象が存在しない場合はfalseを返す。
	Update(ctx context.Context, id string, event *model.CalendarEvent) (bool, error)

	// Delete は指定IDのイベントを削除する。対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// ListAll は全イベントを無条件に取得する。
	// 表示ウィンドウの絞り込みはフォーマッタ側で行う。
	// 1件の不正なドキュメントは読み飛ばし、一覧全体を失敗させない。
	ListAll(ctx context.Context) ([]*model.CalendarEvent, error)
}

// QuoteRepository は格言ドキュメントの永続化インターフェース。
// 格言は一度シードされた後は読み取り専用となる。
type QuoteRepository interface {
	// ListAll は全格言を取得する。
	ListAll(ctx context.Context) ([]*model.Quote, error)

	// CreateMany は複数の格言を一括作成する（初期シード用）。
	CreateMany(ctx context.Context, quotes []*model.Quote) error
}

// PreferenceRepository はユーザー設定の永続化インターフェース。
// 設定は単一行として保持され、Upsertで明示的に更新する。
type PreferenceRepository interface {
	// Get はユーザー設定を取得する。未保存の場合はnilを返す。
	Get(ctx context.Context) (*model.Preference, error)

	// Upsert はユーザー設定を保存する。既存行があれば上書きする。
	Upsert(ctx context.Context, pref *model.Preference) error
}
