// Package geo はOpenWeatherMapの逆ジオコーディングAPIを提供する。
// 座標から地名を解決し、ダッシュボードの地点設定に使う。
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// defaultReverseEndpoint は逆ジオコーディングAPIのエンドポイント。
const defaultReverseEndpoint = "http://api.openweathermap.org/geo/1.0/reverse"

// UnknownLocation は地名を解決できなかった場合の表示名。
const UnknownLocation = "Unknown location"

// place は逆ジオコーディングAPIの1件分のレスポンス。
type place struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Client は逆ジオコーディングAPIのクライアント。
type Client struct {
	httpClient      *http.Client
	logger          *slog.Logger
	apiKey          string
	reverseEndpoint string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey string) *Client {
	return &Client{
		httpClient:      httpClient,
		logger:          logger,
		apiKey:          apiKey,
		reverseEndpoint: defaultReverseEndpoint,
	}
}

// HasAPIKey はAPIキーが設定されているかを返す。
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// ReverseGeocode は座標から地名を解決する。
// 都市名 → 州名 → 国名の順に最初の非空値を採用し、
// 1件も解決できない場合はUnknownLocationを返す。
// APIの失敗はエラーとして返す（表示名の決定は呼び出し側の責務）。
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("limit", "1")
	query.Set("appid", c.apiKey)

	reqURL, err := url.Parse(c.reverseEndpoint)
	if err != nil {
		return "", fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Mirrordash/1.0 Smart Mirror")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("逆ジオコーディングAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("逆ジオコーディングAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return "", fmt.Errorf("逆ジオコーディングAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(places) == 0 {
		return UnknownLocation, nil
	}

	p := places[0]
	switch {
	case p.Name != "":
		return p.Name, nil
	case p.State != "":
		return p.State, nil
	case p.Country != "":
		return p.Country, nil
	default:
		return UnknownLocation, nil
	}
}
