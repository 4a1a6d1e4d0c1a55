// Package news はNewsAPIからのニュース記事取得を提供する。
// 地域限定検索から全国ヘッドラインへの3段階フォールバックと、
// 失敗時の固定デフォルトへのフォールバックを含む。
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

const (
	// defaultEverythingEndpoint は全記事検索APIのエンドポイント。
	defaultEverythingEndpoint = "https://newsapi.org/v2/everything"
	// defaultHeadlinesEndpoint はトップヘッドラインAPIのエンドポイント。
	defaultHeadlinesEndpoint = "https://newsapi.org/v2/top-headlines"
)

// searchResponse はNewsAPIのレスポンス。
type searchResponse struct {
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

// apiArticle はNewsAPIの記事データ。
type apiArticle struct {
	Title  string `json:"title"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
}

// Client はNewsAPIのクライアント。
type Client struct {
	httpClient         *http.Client
	logger             *slog.Logger
	apiKey             string
	everythingEndpoint string // テスト用にエンドポイントを差し替え可能
	headlinesEndpoint  string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey string) *Client {
	return &Client{
		httpClient:         httpClient,
		logger:             logger,
		apiKey:             apiKey,
		everythingEndpoint: defaultEverythingEndpoint,
		headlinesEndpoint:  defaultHeadlinesEndpoint,
	}
}

// HasAPIKey はAPIキーが設定されているかを返す。
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// SearchEverything は全記事検索を実行する。
// qには引用符付きの完全一致フレーズも指定できる。
func (c *Client) SearchEverything(ctx context.Context, q string) (*searchResponse, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("sortBy", "publishedAt")
	query.Set("language", "en")
	query.Set("apiKey", c.apiKey)

	return c.getJSON(ctx, c.everythingEndpoint, query)
}

// TopHeadlines は全国のトップヘッドラインを取得する。
func (c *Client) TopHeadlines(ctx context.Context) (*searchResponse, error) {
	query := url.Values{}
	query.Set("country", "us")
	query.Set("apiKey", c.apiKey)

	return c.getJSON(ctx, c.headlinesEndpoint, query)
}

// getJSON はGETリクエストを実行してJSONレスポンスをデコードする。
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values) (*searchResponse, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Mirrordash/1.0 Smart Mirror")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ニュースAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("ニュースAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("ニュースAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("ニュースAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return &result, nil
}
