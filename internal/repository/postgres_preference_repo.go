package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/mirrordash/internal/model"
)

// PostgresPreferenceRepo はPostgreSQLを使用したユーザー設定リポジトリ。
// 設定はid=1に固定された単一行として保持され、ON CONFLICTで明示的にupsertする。
type PostgresPreferenceRepo struct {
	db *sql.DB
}

// NewPostgresPreferenceRepo はPostgresPreferenceRepoを生成する。
func NewPostgresPreferenceRepo(db *sql.DB) *PostgresPreferenceRepo {
	return &PostgresPreferenceRepo{db: db}
}

// Get はユーザー設定を取得する。未保存の場合はnilを返す。
func (r *PostgresPreferenceRepo) Get(ctx context.Context) (*model.Preference, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT doc FROM preferences WHERE id = 1`,
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザー設定の取得に失敗しました: %w", err)
	}

	pref := &model.Preference{}
	if err := json.Unmarshal(doc, pref); err != nil {
		return nil, fmt.Errorf("ユーザー設定ドキュメントの解釈に失敗しました: %w", err)
	}

	return pref, nil
}

// Upsert はユーザー設定を保存する。既存行があれば上書きする。
func (r *PostgresPreferenceRepo) Upsert(ctx context.Context, pref *model.Preference) error {
	doc, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("ユーザー設定ドキュメントの直列化に失敗しました: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO preferences (id, doc) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		doc,
	)
	if err != nil {
		return fmt.Errorf("ユーザー設定の保存に失敗しました: %w", err)
	}

	return nil
}

// compile-time interface check
var _ PreferenceRepository = (*PostgresPreferenceRepo)(nil)
