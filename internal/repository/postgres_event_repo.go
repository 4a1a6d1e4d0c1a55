package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/mirrordash/internal/model"
)

// PostgresEventRepo はPostgreSQLのJSONBコレクションを使用したイベントリポジトリ。
// ストア自体は型を持たず、ドキュメントの直列化と解釈はこのリポジトリが担う。
type PostgresEventRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB, logger *slog.Logger) *PostgresEventRepo {
	return &PostgresEventRepo{db: db, logger: logger}
}

// Create はイベントを作成し、ストアが割り当てた識別子を返す。
// TitleとStartDateの存在のみ検証する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.CalendarEvent) (string, error) {
	if strings.TrimSpace(event.Title) == "" {
		return "", model.NewInvalidEventDataError("タイトルが空です")
	}
	if strings.TrimSpace(event.StartDate) == "" {
		return "", model.NewInvalidEventDataError("開始日が空です")
	}

	doc, err := marshalEventDoc(event)
	if err != nil {
		return "", fmt.Errorf("イベントドキュメントの直列化に失敗しました: %w", err)
	}

	id := uuid.New().String()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO events (id, doc) VALUES ($1, $2)`,
		id, doc,
	)
	if err != nil {
		return "", fmt.Errorf("イベントの作成に失敗しました: %w", err)
	}

	return id, nil
}

// FindByID は指定IDのイベントを取得する。
// IDの形式が不正な場合はストアへ問い合わせずにnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	if !isValidEventID(id) {
		return nil, nil
	}

	var doc []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT doc FROM events WHERE id = $1`,
		id,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}

	event, err := unmarshalEventDoc(id, doc)
	if err != nil {
		return nil, fmt.Errorf("イベントドキュメントの解釈に失敗しました: %w", err)
	}

	return event, nil
}

// Update は指定IDのイベントを上書き更新する。
// IDの形式が不正な場合、または更新対象が存在しない場合はfalseを返す。
func (r *PostgresEventRepo) Update(ctx context.Context, id string, event *model.CalendarEvent) (bool, error) {
	if !isValidEventID(id) {
		return false, nil
	}

	doc, err := marshalEventDoc(event)
	if err != nil {
		return false, fmt.Errorf("イベントドキュメントの直列化に失敗しました: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET doc = $2, updated_at = now() WHERE id = $1`,
		id, doc,
	)
	if err != nil {
		return false, fmt.Errorf("イベントの更新に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新行数の取得に失敗しました: %w", err)
	}

	return rows > 0, nil
}

// Delete は指定IDのイベントを削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresEventRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !isValidEventID(id) {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("イベントの削除に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}

	return rows > 0, nil
}

// ListAll は全イベントを無条件に取得する。
// 解釈できないドキュメントは警告ログを出して読み飛ばし、一覧全体は失敗させない。
func (r *PostgresEventRepo) ListAll(ctx context.Context) ([]*model.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, doc FROM events ORDER BY doc->>'start_date' ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var events []*model.CalendarEvent
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("イベント行の読み取りに失敗しました: %w", err)
		}

		event, err := unmarshalEventDoc(id, doc)
		if err != nil {
			r.logger.Warn("解釈できないイベントドキュメントを読み飛ばします",
				slog.String("event_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベント一覧の走査に失敗しました: %w", err)
	}

	return events, nil
}

// marshalEventDoc はイベントをJSONBドキュメントに直列化する。
// 日付・時刻フィールドはモデル上すでにISO-8601文字列として保持されている。
func marshalEventDoc(event *model.CalendarEvent) ([]byte, error) {
	// 終日イベントに時刻が紛れ込まないよう書き込み時に落とす
	normalized := *event
	if normalized.AllDay {
		normalized.StartTime = ""
		normalized.EndTime = ""
	}
	normalized.Priority = normalized.EffectivePriority()
	return json.Marshal(&normalized)
}

// unmarshalEventDoc はJSONBドキュメントをイベントに解釈する。
func unmarshalEventDoc(id string, doc []byte) (*model.CalendarEvent, error) {
	event := &model.CalendarEvent{}
	if err := json.Unmarshal(doc, event); err != nil {
		return nil, err
	}
	event.ID = id
	if !event.Priority.IsValid() {
		event.Priority = model.PriorityMedium
	}
	return event, nil
}

// isValidEventID はイベント識別子が正しいUUID形式かを検証する。
func isValidEventID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
