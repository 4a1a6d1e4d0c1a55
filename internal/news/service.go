package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/mirrordash/internal/metrics"
	"github.com/hitoshi/mirrordash/internal/model"
)

// metricSource はメトリクスのソースラベル。
const metricSource = "news"

// maxArticles は表示する記事の最大数。
const maxArticles = 5

// maxDescriptionLen は記事説明の最大文字数。超過分は切り詰めて「...」を付ける。
const maxDescriptionLen = 150

// Service はニュース記事の取得とデグレード処理を行う。
// 地域限定検索から全国ヘッドラインまで3段階で絞り込み、
// いかなる失敗も呼び出し元には伝播させず、固定の案内記事を返す。
type Service struct {
	client    *Client
	logger    *slog.Logger
	metrics   metrics.Recorder
	sanitizer *bluemonday.Policy
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(client *Client, logger *slog.Logger, recorder metrics.Recorder) *Service {
	return &Service{
		client:    client,
		logger:    logger,
		metrics:   recorder,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// GetNews は指定地点のニュース記事を取得する。
// 3段階のフォールバック（完全一致フレーズ検索 → 通常検索 → 全国ヘッドライン）で、
// 最初に1件以上の有効な記事が得られた段階の記事を最大5件返す。
// APIキー未設定・HTTPエラー・全段階で記事なしの場合は、
// Degradedを立てた固定の案内記事を返す（エラーは返さない）。
func (s *Service) GetNews(ctx context.Context, location string) *model.News {
	start := time.Now()
	defer func() {
		s.metrics.RecordFetchLatency(metricSource, time.Since(start))
	}()

	if !s.client.HasAPIKey() {
		s.logger.Warn("ニュースAPIキーが未設定のためデフォルト記事を返します")
		return s.degraded("missing_api_key")
	}

	tiers := []struct {
		name  string
		fetch func() (*searchResponse, error)
	}{
		{"exact_phrase", func() (*searchResponse, error) {
			return s.client.SearchEverything(ctx, fmt.Sprintf("%q", location))
		}},
		{"broad_search", func() (*searchResponse, error) {
			return s.client.SearchEverything(ctx, location)
		}},
		{"top_headlines", func() (*searchResponse, error) {
			return s.client.TopHeadlines(ctx)
		}},
	}

	for _, tier := range tiers {
		resp, err := tier.fetch()
		if err != nil {
			s.logger.Error("ニュース記事の取得に失敗しました",
				slog.String("tier", tier.name),
				slog.String("location", location),
				slog.String("error", err.Error()),
			)
			return s.degraded("fetch_failed")
		}

		articles := s.usableArticles(resp.Articles)
		if len(articles) > 0 {
			s.logger.Info("ニュース記事を取得しました",
				slog.String("tier", tier.name),
				slog.Int("article_count", len(articles)),
			)
			s.metrics.RecordFetchSuccess(metricSource)
			return &model.News{Articles: articles}
		}
	}

	s.logger.Warn("どの検索段階でも有効な記事が見つかりませんでした",
		slog.String("location", location),
	)
	return s.degraded("no_articles")
}

// usableArticles はタイトル・ソース名・URLがすべて揃った記事のみを抽出し、
// 説明をサニタイズしたうえで最大5件に絞る。
func (s *Service) usableArticles(raw []apiArticle) []model.Article {
	articles := make([]model.Article, 0, maxArticles)
	for _, a := range raw {
		if a.Title == "" || a.Source.Name == "" || a.URL == "" {
			continue
		}

		articles = append(articles, model.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Description: s.cleanDescription(a.Description),
		})
		if len(articles) == maxArticles {
			break
		}
	}
	return articles
}

// cleanDescription はHTMLタグを除去し、150文字に切り詰める。
func (s *Service) cleanDescription(desc string) string {
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(desc))
	runes := []rune(cleaned)
	if len(runes) > maxDescriptionLen {
		return string(runes[:maxDescriptionLen]) + "..."
	}
	return cleaned
}

// degraded はデグレードモードの固定案内記事を返す。
func (s *Service) degraded(reason string) *model.News {
	s.metrics.RecordFetchDegraded(metricSource, reason)
	return DefaultNews(reason)
}

// DefaultNews はニュースAPIが利用できない場合の固定案内記事を返す。
func DefaultNews(reason string) *model.News {
	today := time.Now().Format("2006-01-02")
	return &model.News{
		Articles: []model.Article{
			{
				Title:       "Unable to fetch news for your location",
				Source:      "System Message",
				URL:         "https://newsapi.org",
				PublishedAt: today,
				Description: "News service is temporarily unavailable. Please check back later.",
			},
			{
				Title:       "How to get the most from your smart mirror",
				Source:      "User Guide",
				URL:         "https://newsapi.org",
				PublishedAt: today,
				Description: "Customize your location and news preferences from the settings panel.",
			},
		},
		Degraded:       true,
		DegradedReason: reason,
	}
}
