package weather

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/hitoshi/mirrordash/internal/metrics"
	"github.com/hitoshi/mirrordash/internal/model"
)

// metricSource はメトリクスのソースラベル。
const metricSource = "weather"

// forecastMaxDays は予報として採用する最大日数。
const forecastMaxDays = 10

// Service は天気データの取得とデグレード処理を行う。
// いかなる失敗も呼び出し元には伝播させず、固定のデフォルトデータを返す。
type Service struct {
	client  *Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(client *Client, logger *slog.Logger, recorder metrics.Recorder) *Service {
	return &Service{
		client:  client,
		logger:  logger,
		metrics: recorder,
	}
}

// GetWeather は指定地点の現在天気と日次予報を取得する。
// APIキー未設定・HTTPエラー・レスポンス不備のいずれでも、
// Degradedを立てた固定デフォルトを返す（エラーは返さない）。
// 予報の取得のみが失敗した場合は現在天気を活かし、予報を空にする。
func (s *Service) GetWeather(ctx context.Context, location string) *model.Weather {
	start := time.Now()
	defer func() {
		s.metrics.RecordFetchLatency(metricSource, time.Since(start))
	}()

	if !s.client.HasAPIKey() {
		s.logger.Warn("天気APIキーが未設定のためデフォルトデータを返します")
		return s.degraded(location, "missing_api_key")
	}

	current, status, err := s.client.Current(ctx, location)
	if status != 0 {
		s.metrics.RecordHTTPStatus(metricSource, status)
	}
	if err != nil {
		s.logger.Error("現在天気の取得に失敗しました",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return s.degraded(location, "current_fetch_failed")
	}

	if current.Coord == nil || len(current.Weather) == 0 {
		s.logger.Error("天気APIレスポンスに必須フィールドがありません",
			slog.String("location", location),
		)
		return s.degraded(location, "missing_fields")
	}

	forecast := s.fetchForecast(ctx, current.Coord.Lat, current.Coord.Lon)

	s.metrics.RecordFetchSuccess(metricSource)
	return &model.Weather{
		Current: model.CurrentConditions{
			Temp:          roundToInt(current.Main.Temp),
			FeelsLike:     roundToInt(current.Main.FeelsLike),
			Humidity:      current.Main.Humidity,
			WindSpeed:     roundToInt(current.Wind.Speed),
			WindDirection: WindDirection(current.Wind.Deg),
			Condition:     current.Weather[0].Main,
			Description:   current.Weather[0].Description,
			Icon:          current.Weather[0].Icon,
			Pressure:      current.Main.Pressure,
			VisibilityKm:  float64(current.Visibility) / 1000,
			RainMM:        current.Rain.OneHour,
			CloudsPercent: current.Clouds.All,
			Sunrise:       formatUnixClock(current.Sys.Sunrise),
			Sunset:        formatUnixClock(current.Sys.Sunset),
		},
		Forecast: forecast,
		Location: current.Name,
		Country:  current.Sys.Country,
	}
}

// fetchForecast は日次予報を取得する。失敗時は空の予報を返す（部分デグレード）。
func (s *Service) fetchForecast(ctx context.Context, lat, lon float64) []model.ForecastDay {
	forecast, status, err := s.client.Forecast(ctx, lat, lon)
	if status != 0 {
		s.metrics.RecordHTTPStatus(metricSource, status)
	}
	if err != nil {
		s.logger.Error("日次予報の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return []model.ForecastDay{}
	}

	days := make([]model.ForecastDay, 0, forecastMaxDays)
	for i, day := range forecast.Daily {
		if i >= forecastMaxDays {
			break
		}

		condition := "Unknown"
		description := "No description available"
		icon := "01d"
		if len(day.Weather) > 0 {
			condition = day.Weather[0].Main
			description = day.Weather[0].Description
			icon = day.Weather[0].Icon
		}

		days = append(days, model.ForecastDay{
			Date:          time.Unix(day.Dt, 0).Format("Mon, Jan 02"),
			TempMax:       roundToInt(day.Temp.Max),
			TempMin:       roundToInt(day.Temp.Min),
			Condition:     condition,
			Description:   description,
			Icon:          icon,
			Humidity:      day.Humidity,
			WindSpeed:     roundToInt(day.WindSpeed),
			WindDirection: WindDirection(day.WindDeg),
			RainMM:        day.Rain,
			CloudsPercent: day.Clouds,
			PopPercent:    int(day.Pop * 100),
		})
	}

	return days
}

// degraded はデグレードモードの固定デフォルトデータを返す。
func (s *Service) degraded(location, reason string) *model.Weather {
	s.metrics.RecordFetchDegraded(metricSource, reason)
	return DefaultWeather(location, reason)
}

// DefaultWeather は天気APIが利用できない場合の固定デフォルトデータを返す。
func DefaultWeather(location, reason string) *model.Weather {
	return &model.Weather{
		Current: model.CurrentConditions{
			Temp:          20,
			FeelsLike:     20,
			Humidity:      50,
			WindSpeed:     5,
			WindDirection: "N/A",
			Condition:     "Clouds",
			Description:   "Weather data unavailable",
			Icon:          "01d",
			Pressure:      1013,
			VisibilityKm:  10,
			RainMM:        0,
			CloudsPercent: 0,
			Sunrise:       "06:00",
			Sunset:        "18:00",
		},
		Forecast: []model.ForecastDay{
			{
				Date:          "Today",
				TempMax:       22,
				TempMin:       18,
				Condition:     "Clouds",
				Description:   "Weather data unavailable",
				Icon:          "01d",
				Humidity:      50,
				WindSpeed:     5,
				WindDirection: "N",
			},
		},
		Location:       location,
		Country:        "N/A",
		Degraded:       true,
		DegradedReason: reason,
	}
}

// roundToInt は四捨五入して整数にする。
func roundToInt(v float64) int {
	return int(math.Round(v))
}

// formatUnixClock はUNIX秒をHH:MM表記にする。
func formatUnixClock(sec int64) string {
	return time.Unix(sec, 0).Format("15:04")
}
