// Package quote はダッシュボードに表示する格言の選択を提供する。
package quote

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/repository"
)

// DefaultQuotes はコレクションが空の場合に自動シードされる格言。
func DefaultQuotes() []*model.Quote {
	return []*model.Quote{
		{Text: "Be yourself; everyone else is already taken.", Author: "Oscar Wilde"},
		{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
		{Text: "Life is what happens when you're busy making other plans.", Author: "John Lennon"},
		{Text: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt"},
		{Text: "Stay hungry, stay foolish.", Author: "Stewart Brand"},
	}
}

// fallbackQuote はストア自体が利用できない場合の固定の格言を返す。
func fallbackQuote() *model.Quote {
	return &model.Quote{
		Text:   "The best way to predict the future is to invent it.",
		Author: "Alan Kay",
	}
}

// Service は格言のランダム選択と初期シードを行う。
// ストアの失敗は呼び出し元には伝播させず、固定の格言を返す。
type Service struct {
	repo   repository.QuoteRepository
	logger *slog.Logger
	pick   func(n int) int // テスト用に乱数選択を差し替え可能
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.QuoteRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		pick:   rand.Intn,
	}
}

// RandomQuote は格言コレクションからランダムに1件選んで返す。
// コレクションが空の場合はデフォルトの格言をシードしてから選択し、
// ストアの読み書きに失敗した場合は固定の格言を返す（エラーは返さない）。
func (s *Service) RandomQuote(ctx context.Context) *model.Quote {
	quotes, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("格言の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fallbackQuote()
	}

	if len(quotes) == 0 {
		quotes = DefaultQuotes()
		if err := s.repo.CreateMany(ctx, quotes); err != nil {
			s.logger.Error("デフォルト格言のシードに失敗しました",
				slog.String("error", err.Error()),
			)
			return fallbackQuote()
		}
		s.logger.Info("デフォルト格言をシードしました",
			slog.Int("quote_count", len(quotes)),
		)
	}

	return quotes[s.pick(len(quotes))]
}
