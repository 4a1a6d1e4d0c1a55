package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/mirrordash/internal/model"
)

// PostgresQuoteRepo はPostgreSQLのJSONBコレクションを使用した格言リポジトリ。
type PostgresQuoteRepo struct {
	db *sql.DB
}

// NewPostgresQuoteRepo はPostgresQuoteRepoを生成する。
func NewPostgresQuoteRepo(db *sql.DB) *PostgresQuoteRepo {
	return &PostgresQuoteRepo{db: db}
}

// ListAll は全格言を取得する。
func (r *PostgresQuoteRepo) ListAll(ctx context.Context) ([]*model.Quote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, doc FROM quotes`,
	)
	if err != nil {
		return nil, fmt.Errorf("格言一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var quotes []*model.Quote
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("格言行の読み取りに失敗しました: %w", err)
		}

		quote := &model.Quote{}
		if err := json.Unmarshal(doc, quote); err != nil {
			return nil, fmt.Errorf("格言ドキュメントの解釈に失敗しました: %w", err)
		}
		quote.ID = id
		quotes = append(quotes, quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("格言一覧の走査に失敗しました: %w", err)
	}

	return quotes, nil
}

// CreateMany は複数の格言を一括作成する（初期シード用）。
func (r *PostgresQuoteRepo) CreateMany(ctx context.Context, quotes []*model.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	for _, quote := range quotes {
		doc, err := json.Marshal(quote)
		if err != nil {
			return fmt.Errorf("格言ドキュメントの直列化に失敗しました: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quotes (id, doc) VALUES ($1, $2)`,
			uuid.New().String(), doc,
		); err != nil {
			return fmt.Errorf("格言の作成に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}

// compile-time interface check
var _ QuoteRepository = (*PostgresQuoteRepo)(nil)
