// Package weather はOpenWeatherMap APIからの天気データ取得を提供する。
// 現在の天気・予報の取得と、失敗時の固定デフォルトへのフォールバックを含む。
package weather

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

const (
	// defaultCurrentEndpoint は現在天気APIのエンドポイント。
	defaultCurrentEndpoint = "https://api.openweathermap.org/data/2.5/weather"
	// defaultForecastEndpoint は日次予報（OneCall）APIのエンドポイント。
	defaultForecastEndpoint = "https://api.openweathermap.org/data/2.5/onecall"
)

// currentResponse は現在天気APIのレスポンス。
type currentResponse struct {
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Visibility int `json:"visibility"`
	Rain       struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// forecastResponse は日次予報APIのレスポンス。
type forecastResponse struct {
	Daily []forecastDay `json:"daily"`
}

// forecastDay は1日分の予報データ。
type forecastDay struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temp"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Humidity  int     `json:"humidity"`
	WindSpeed float64 `json:"wind_speed"`
	WindDeg   float64 `json:"wind_deg"`
	Rain      float64 `json:"rain"`
	Clouds    int     `json:"clouds"`
	Pop       float64 `json:"pop"`
}

// Client はOpenWeatherMap APIのクライアント。
type Client struct {
	httpClient       *http.Client
	logger           *slog.Logger
	apiKey           string
	currentEndpoint  string // テスト用にエンドポイントを差し替え可能
	forecastEndpoint string
}

// NewClient はClientの新しいインスタンスを生成する。
// apiKeyが空の場合、呼び出し側はAPIを呼ばずにデグレードモードへ落とすこと。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey string) *Client {
	return &Client{
		httpClient:       httpClient,
		logger:           logger,
		apiKey:           apiKey,
		currentEndpoint:  defaultCurrentEndpoint,
		forecastEndpoint: defaultForecastEndpoint,
	}
}

// HasAPIKey はAPIキーが設定されているかを返す。
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Current は地名を指定して現在の天気を取得する（メートル法）。
func (c *Client) Current(ctx context.Context, location string) (*currentResponse, int, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var result currentResponse
	status, err := c.getJSON(ctx, c.currentEndpoint, query, &result)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

// Forecast は座標を指定して日次予報を取得する（メートル法）。
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*forecastResponse, int, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("exclude", "minutely,hourly")
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var result forecastResponse
	status, err := c.getJSON(ctx, c.forecastEndpoint, query, &result)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

// CheckLocation は地名が天気APIで解決できるかを確認する。
// 地点設定の保存前バリデーションに使う。
func (c *Client) CheckLocation(ctx context.Context, location string) error {
	if !c.HasAPIKey() {
		return fmt.Errorf("天気APIキーが未設定のため地点を検証できません")
	}

	resp, _, err := c.Current(ctx, location)
	if err != nil {
		return err
	}
	if resp.Coord == nil {
		return fmt.Errorf("天気APIレスポンスに座標が含まれていません: %s", location)
	}
	return nil
}

// getJSON はGETリクエストを実行してJSONレスポンスをデコードする。
// 戻り値のintはHTTPステータスコード（リクエスト自体が失敗した場合は0）。
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) (int, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Mirrordash/1.0 Smart Mirror")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("天気APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("天気APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return resp.StatusCode, fmt.Errorf("天気APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("天気APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return resp.StatusCode, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return resp.StatusCode, nil
}
