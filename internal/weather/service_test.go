package weather

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/mirrordash/internal/metrics"
)

func newTestService(client *Client) *Service {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	return NewService(client, logger, metrics.NewCollector(prometheus.NewRegistry()))
}

func newTestClient(apiKey string) *Client {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	return NewClient(http.DefaultClient, logger, apiKey)
}

const currentBody = `{
	"coord": {"lat": 35.69, "lon": 139.69},
	"main": {"temp": 23.4, "feels_like": 24.6, "humidity": 60, "pressure": 1008},
	"wind": {"speed": 3.6, "deg": 90},
	"weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}],
	"visibility": 10000,
	"clouds": {"all": 5},
	"sys": {"country": "JP", "sunrise": 1767222000, "sunset": 1767258000},
	"name": "Tokyo"
}`

const forecastBody = `{
	"daily": [
		{"dt": 1767222000, "temp": {"min": 18.2, "max": 25.8},
		 "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
		 "humidity": 70, "wind_speed": 4.4, "wind_deg": 180, "rain": 2.5, "clouds": 80, "pop": 0.45}
	]
}`

// APIキー未設定時は固定デフォルト（temp=20, Clouds）が返ることを検証
func TestGetWeather_MissingAPIKey_ReturnsDefault(t *testing.T) {
	svc := newTestService(newTestClient(""))

	w := svc.GetWeather(context.Background(), "Tokyo")

	if !w.Degraded {
		t.Error("APIキー未設定時はDegradedが立つべき")
	}
	if w.DegradedReason == "" {
		t.Error("Degraded時は理由が設定されるべき")
	}
	if w.Current.Temp != 20 {
		t.Errorf("Temp = %d, want 20", w.Current.Temp)
	}
	if w.Current.Condition != "Clouds" {
		t.Errorf("Condition = %q, want %q", w.Current.Condition, "Clouds")
	}
	if w.Location != "Tokyo" {
		t.Errorf("Location = %q, want %q", w.Location, "Tokyo")
	}
}

func TestGetWeather_Success(t *testing.T) {
	currentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Tokyo" {
			t.Errorf("q = %q, want Tokyo", r.URL.Query().Get("q"))
		}
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("units = %q, want metric", r.URL.Query().Get("units"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(currentBody))
	}))
	defer currentSrv.Close()

	forecastSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Error("予報リクエストにlat/lonが含まれるべき")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastBody))
	}))
	defer forecastSrv.Close()

	client := newTestClient("test-key")
	client.currentEndpoint = currentSrv.URL
	client.forecastEndpoint = forecastSrv.URL
	svc := newTestService(client)

	w := svc.GetWeather(context.Background(), "Tokyo")

	if w.Degraded {
		t.Fatalf("成功時はDegradedが立つべきではない: %s", w.DegradedReason)
	}
	if w.Current.Temp != 23 {
		t.Errorf("Temp = %d, want 23", w.Current.Temp)
	}
	if w.Current.FeelsLike != 25 {
		t.Errorf("FeelsLike = %d, want 25", w.Current.FeelsLike)
	}
	if w.Current.WindDirection != "E" {
		t.Errorf("WindDirection = %q, want %q", w.Current.WindDirection, "E")
	}
	if w.Current.VisibilityKm != 10 {
		t.Errorf("VisibilityKm = %v, want 10", w.Current.VisibilityKm)
	}
	if w.Location != "Tokyo" || w.Country != "JP" {
		t.Errorf("Location/Country = %q/%q, want Tokyo/JP", w.Location, w.Country)
	}

	if len(w.Forecast) != 1 {
		t.Fatalf("予報日数 = %d, want 1", len(w.Forecast))
	}
	day := w.Forecast[0]
	if day.TempMax != 26 || day.TempMin != 18 {
		t.Errorf("TempMax/TempMin = %d/%d, want 26/18", day.TempMax, day.TempMin)
	}
	if day.Condition != "Rain" {
		t.Errorf("Condition = %q, want Rain", day.Condition)
	}
	if day.WindDirection != "S" {
		t.Errorf("WindDirection = %q, want S", day.WindDirection)
	}
	if day.PopPercent != 45 {
		t.Errorf("PopPercent = %d, want 45", day.PopPercent)
	}
}

func TestGetWeather_CurrentAPIError_ReturnsDefault(t *testing.T) {
	currentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer currentSrv.Close()

	client := newTestClient("test-key")
	client.currentEndpoint = currentSrv.URL
	svc := newTestService(client)

	w := svc.GetWeather(context.Background(), "Nowhere")

	if !w.Degraded {
		t.Error("APIエラー時はDegradedが立つべき")
	}
	if w.Current.Temp != 20 {
		t.Errorf("Temp = %d, want 20", w.Current.Temp)
	}
}

// coordフィールド欠落はデフォルトへのフォールバックになることを検証
func TestGetWeather_MissingCoord_ReturnsDefault(t *testing.T) {
	currentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"main": {"temp": 10}, "weather": [{"main": "Clear"}], "name": "X"}`))
	}))
	defer currentSrv.Close()

	client := newTestClient("test-key")
	client.currentEndpoint = currentSrv.URL
	svc := newTestService(client)

	w := svc.GetWeather(context.Background(), "X")

	if !w.Degraded {
		t.Error("coord欠落時はDegradedが立つべき")
	}
}

// 予報のみの失敗は現在天気を殺さないことを検証（部分デグレード）
func TestGetWeather_ForecastFailure_KeepsCurrent(t *testing.T) {
	currentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(currentBody))
	}))
	defer currentSrv.Close()

	forecastSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer forecastSrv.Close()

	client := newTestClient("test-key")
	client.currentEndpoint = currentSrv.URL
	client.forecastEndpoint = forecastSrv.URL
	svc := newTestService(client)

	w := svc.GetWeather(context.Background(), "Tokyo")

	if w.Degraded {
		t.Error("予報のみの失敗でDegradedを立てるべきではない")
	}
	if len(w.Forecast) != 0 {
		t.Errorf("予報は空になるべき: %d", len(w.Forecast))
	}
	if w.Current.Temp != 23 {
		t.Errorf("現在天気は保持されるべき: Temp = %d", w.Current.Temp)
	}
}

func TestGetWeather_InvalidJSON_ReturnsDefault(t *testing.T) {
	currentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer currentSrv.Close()

	client := newTestClient("test-key")
	client.currentEndpoint = currentSrv.URL
	svc := newTestService(client)

	w := svc.GetWeather(context.Background(), "Tokyo")

	if !w.Degraded {
		t.Error("不正JSON時はDegradedが立つべき")
	}
}
