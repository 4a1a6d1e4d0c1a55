// Package preference はユーザー設定の解決と保存を提供する。
package preference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/mirrordash/internal/model"
	"github.com/hitoshi/mirrordash/internal/repository"
)

// Service はユーザー設定の解決を行う。
// 設定が未保存の場合はデフォルト値を永続化したうえで返し、
// ストアの失敗時はデフォルト値を返す（エラーは返さない）。
type Service struct {
	repo   repository.PreferenceRepository
	logger *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.PreferenceRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Resolve は現在のユーザー設定を返す。
// 未保存の場合はデフォルト値を保存してから返す。
// ストアの読み書きに失敗した場合もデフォルト値を返す。
func (s *Service) Resolve(ctx context.Context) *model.Preference {
	pref, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Error("ユーザー設定の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return model.DefaultPreference()
	}

	if pref == nil {
		pref = model.DefaultPreference()
		if err := s.repo.Upsert(ctx, pref); err != nil {
			s.logger.Error("デフォルト設定の保存に失敗しました",
				slog.String("error", err.Error()),
			)
		}
		return pref
	}

	return pref
}

// Save はユーザー設定を保存する。
func (s *Service) Save(ctx context.Context, pref *model.Preference) error {
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return fmt.Errorf("ユーザー設定の保存に失敗しました: %w", err)
	}
	return nil
}
